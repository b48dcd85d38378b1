package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/peermentor/backend/internal/models"
	"github.com/peermentor/backend/internal/repositories"
	"github.com/peermentor/backend/pkg/stream"
	"gorm.io/gorm"
)

// MessageHandler provisions direct messaging through Stream Chat: chat
// users, client tokens and 1:1 channels. Message delivery itself happens
// over Stream's own transport.
type MessageHandler struct {
	streamClient   *stream.Client
	userRepository repositories.UserRepository
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(streamClient *stream.Client, userRepo repositories.UserRepository) *MessageHandler {
	return &MessageHandler{
		streamClient:   streamClient,
		userRepository: userRepo,
	}
}

// RegisterMessageRoutes registers messaging provisioning routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.POST("/messaging/token", h.CreateToken)
	g.POST("/messaging/channels", h.CreateChannel)
}

// CreateToken upserts the chat-side user and mints a client token for
// the acting user.
func (h *MessageHandler) CreateToken(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	chatUserID := chatUserID(user)
	if err := h.streamClient.EnsureUser(c.Request().Context(), chatUserID, user.Name); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.streamClient.CreateToken(chatUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"token":   token,
			"user_id": chatUserID,
		},
	})
}

// CreateChannel opens (or returns) the 1:1 DM channel between the acting
// user and the requested recipient.
func (h *MessageHandler) CreateChannel(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var req models.CreateChannelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.RecipientID == user.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot open a channel with yourself")
	}

	recipient, err := h.userRepository.GetUserByID(req.RecipientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Recipient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Both sides must exist in the chat system before channel creation
	if err := h.streamClient.EnsureUser(c.Request().Context(), chatUserID(user), user.Name); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.streamClient.EnsureUser(c.Request().Context(), chatUserID(recipient), recipient.Name); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	channelID, err := h.streamClient.CreateDirectChannel(c.Request().Context(), chatUserID(user), chatUserID(recipient))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"channel_id": channelID,
		},
	})
}

// chatUserID maps an application user to its stable chat-side identity
func chatUserID(u *models.User) string {
	if u.FirebaseUID != "" {
		return u.FirebaseUID
	}
	return "local-" + strconv.FormatUint(uint64(u.ID), 10)
}
