package stream

import (
	"context"
	"fmt"
	"sort"
	"time"

	chat "github.com/GetStream/stream-chat-go/v5"
)

// Direct message channels use Stream's built-in messaging channel type.
const channelTypeMessaging = "messaging"

// Client wraps the Stream Chat client with the messaging provisioning
// this service needs: chat users, client tokens and 1:1 channels. The
// message transport itself is handled by Stream.
type Client struct {
	chat *chat.Client
}

// NewClient creates a Stream Chat client from the given credentials
func NewClient(apiKey, apiSecret string) (*Client, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("stream API key and secret must be set")
	}

	chatClient, err := chat.NewClient(apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create Stream Chat client: %w", err)
	}

	return &Client{chat: chatClient}, nil
}

// EnsureUser upserts the chat-side user record for an application user
func (c *Client) EnsureUser(ctx context.Context, userID, name string) error {
	user := &chat.User{
		ID:   userID,
		Name: name,
	}
	if _, err := c.chat.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("failed to upsert chat user: %w", err)
	}
	return nil
}

// CreateToken mints a non-expiring client token for the given user
func (c *Client) CreateToken(userID string) (string, error) {
	token, err := c.chat.CreateToken(userID, time.Time{})
	if err != nil {
		return "", fmt.Errorf("failed to create chat token: %w", err)
	}
	return token, nil
}

// CreateDirectChannel creates (or returns the existing) 1:1 messaging
// channel between two users. The channel ID is derived from the sorted
// member IDs so both sides resolve to the same channel.
func (c *Client) CreateDirectChannel(ctx context.Context, creatorID, recipientID string) (string, error) {
	members := []string{creatorID, recipientID}
	sort.Strings(members)
	channelID := fmt.Sprintf("dm-%s-%s", members[0], members[1])

	channelReq := &chat.ChannelRequest{
		Members: members,
	}

	resp, err := c.chat.CreateChannel(ctx, channelTypeMessaging, channelID, creatorID, channelReq)
	if err != nil {
		return "", fmt.Errorf("failed to create direct channel: %w", err)
	}
	if resp == nil || resp.Channel == nil {
		return "", fmt.Errorf("stream returned an empty channel response")
	}
	return resp.Channel.ID, nil
}
