package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/peermentor/backend/internal/middleware"
	"github.com/peermentor/backend/internal/models"
	"github.com/peermentor/backend/internal/repositories"
	"gorm.io/gorm"
)

// firebaseUIDFromContext returns the verified Firebase UID of the acting
// user, or "" for anonymous requests (optional-auth routes).
func firebaseUIDFromContext(c echo.Context) string {
	uid, _ := c.Get(middleware.ContextKeyFirebaseUID).(string)
	return uid
}

// currentUser resolves the acting user's application record. The identity
// provider has already authenticated the request, so a missing record here
// means the two systems of record disagree; that is a hard 404 and the
// caller must register first.
func currentUser(c echo.Context, users repositories.UserRepository) (*models.User, error) {
	uid := firebaseUIDFromContext(c)
	if uid == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := users.GetUserByFirebaseUID(uid)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "No account found for authenticated user")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return user, nil
}
