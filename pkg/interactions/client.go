// Package interactions provides a reusable client for the like/save
// toggle endpoints: an HTTP client speaking the toggle and status
// contract, and a Controller that keeps per-item state responsive with
// optimistic updates reconciled against server truth.
package interactions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Session is the read-only credential context for a client instance.
// A zero Session is an anonymous viewer: status reads work, toggles
// will be rejected by the server.
type Session struct {
	Token string
}

// Authenticated reports whether the session carries a credential
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// ToggleResult carries the server's answer for a toggle or status call
type ToggleResult struct {
	State bool
	Count int
}

// Client calls the per-item like/save endpoints
type Client struct {
	baseURL string
	session Session
	http    *http.Client
}

// NewClient creates a Client for the given API base URL (e.g.
// "https://api.example.com/api/v1") and session
func NewClient(baseURL string, session Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		session: session,
		http:    httpClient,
	}
}

// toggleEnvelope is the JSON body of both endpoints. Only one of the
// liked/saved pairs is present depending on the action.
type toggleEnvelope struct {
	Success   bool   `json:"success"`
	Liked     *bool  `json:"liked"`
	Saved     *bool  `json:"saved"`
	LikeCount *int   `json:"likeCount"`
	SaveCount *int   `json:"saveCount"`
	Message   string `json:"message"`
}

// ToggleLike flips the acting user's like on the given item
func (c *Client) ToggleLike(ctx context.Context, itemID string) (*ToggleResult, bool, error) {
	return c.toggle(ctx, itemID, "like")
}

// ToggleSave flips the acting user's save on the given item
func (c *Client) ToggleSave(ctx context.Context, itemID string) (*ToggleResult, bool, error) {
	return c.toggle(ctx, itemID, "save")
}

// LikeStatus reads the current like state and count without mutating
func (c *Client) LikeStatus(ctx context.Context, itemID string) (*ToggleResult, error) {
	result, _, err := c.do(ctx, http.MethodGet, itemID, "like")
	return result, err
}

// SaveStatus reads the current save state and count without mutating
func (c *Client) SaveStatus(ctx context.Context, itemID string) (*ToggleResult, error) {
	result, _, err := c.do(ctx, http.MethodGet, itemID, "save")
	return result, err
}

func (c *Client) toggle(ctx context.Context, itemID, action string) (*ToggleResult, bool, error) {
	return c.do(ctx, http.MethodPut, itemID, action)
}

// do issues one request against the per-item action path. The bool
// return is the server's success flag, reported separately so callers
// can distinguish a 2xx-but-not-success body from a transport failure.
func (c *Client) do(ctx context.Context, method, itemID, action string) (*ToggleResult, bool, error) {
	url := fmt.Sprintf("%s/posts/%s/%s", c.baseURL, itemID, action)

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(nil))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, false, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("%s %s: server returned %d", method, url, resp.StatusCode)
	}

	var envelope toggleEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false, fmt.Errorf("%s %s: decoding response: %w", method, url, err)
	}

	result := &ToggleResult{}
	switch action {
	case "like":
		if envelope.Liked == nil || envelope.LikeCount == nil {
			return nil, envelope.Success, fmt.Errorf("%s %s: response missing liked fields", method, url)
		}
		result.State = *envelope.Liked
		result.Count = *envelope.LikeCount
	case "save":
		if envelope.Saved == nil || envelope.SaveCount == nil {
			return nil, envelope.Success, fmt.Errorf("%s %s: response missing saved fields", method, url)
		}
		result.State = *envelope.Saved
		result.Count = *envelope.SaveCount
	default:
		return nil, false, fmt.Errorf("unknown action %q", action)
	}

	return result, envelope.Success, nil
}
