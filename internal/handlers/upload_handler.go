package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/peermentor/backend/internal/repositories"
	"github.com/peermentor/backend/pkg/storage"
)

// Image uploads are capped at 10 MB.
const maxImageUploadBytes = 10 << 20

// UploadHandler handles media uploads (avatars, post images) to S3
type UploadHandler struct {
	uploader       *storage.S3Uploader
	userRepository repositories.UserRepository
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploader *storage.S3Uploader, userRepo repositories.UserRepository) *UploadHandler {
	return &UploadHandler{
		uploader:       uploader,
		userRepository: userRepo,
	}
}

// RegisterUploadRoutes registers upload routes
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/uploads/images", h.UploadImage)
}

// UploadImage accepts a multipart image and stores it in S3, returning
// the public URL for use in posts or as an avatar.
func (h *UploadHandler) UploadImage(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing image file")
	}
	if fileHeader.Size > maxImageUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Image exceeds 10MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read image file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not read image file")
	}
	if len(data) > maxImageUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Image exceeds 10MB limit")
	}

	result, err := h.uploader.UploadImage(c.Request().Context(), data, strconv.FormatUint(uint64(user.ID), 10), fileHeader.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    result,
	})
}
