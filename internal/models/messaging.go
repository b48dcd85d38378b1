package models

// CreateChannelRequest defines the request body for opening a direct
// message channel with another user.
type CreateChannelRequest struct {
	RecipientID uint `json:"recipient_id" validate:"required"`
}
