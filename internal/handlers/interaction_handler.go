package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/peermentor/backend/internal/models"
	"github.com/peermentor/backend/internal/repositories"
	"gorm.io/gorm"
)

// InteractionHandler handles like/save toggles and status reads on posts.
//
// A toggle flips the acting user's membership in the post's liked-by or
// saved-by set; the denormalized count is recomputed from the set in the
// same document update, so count == |set| holds after every call. Calling
// toggle twice always flips twice; callers track current state to know
// which way a call will move.
type InteractionHandler struct {
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository) *InteractionHandler {
	return &InteractionHandler{
		postRepository:         postRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
	}
}

// RegisterInteractionRoutes registers toggle routes on the authenticated
// group and status routes on the optional-auth group.
func (h *InteractionHandler) RegisterInteractionRoutes(protected, public *echo.Group) {
	protected.PUT("/posts/:id/like", h.ToggleLike)
	protected.PUT("/posts/:id/save", h.ToggleSave)
	public.GET("/posts/:id/like", h.GetLikeStatus)
	public.GET("/posts/:id/save", h.GetSaveStatus)
}

// ToggleLike flips the acting user's like on a post
func (h *InteractionHandler) ToggleLike(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	postID := c.Param("id")
	result, err := h.postRepository.ToggleLike(c.Request().Context(), postID, user.FirebaseUID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if result.State {
		h.notifyPostAuthor(c, user, postID, "like", " liked your post")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"liked":     result.State,
		"likeCount": result.Count,
	})
}

// ToggleSave flips the acting user's save on a post
func (h *InteractionHandler) ToggleSave(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	postID := c.Param("id")
	result, err := h.postRepository.ToggleSave(c.Request().Context(), postID, user.FirebaseUID)
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"saved":     result.State,
		"saveCount": result.Count,
	})
}

// GetLikeStatus returns the acting user's like state and the post's like
// count without mutating anything. Anonymous viewers always get state
// false with the actual count.
func (h *InteractionHandler) GetLikeStatus(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	uid := firebaseUIDFromContext(c)

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"liked":     post.IsLikedBy(uid),
		"likeCount": post.EffectiveLikesCount(),
	})
}

// GetSaveStatus is the save-side equivalent of GetLikeStatus
func (h *InteractionHandler) GetSaveStatus(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrPostNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	uid := firebaseUIDFromContext(c)

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"saved":     post.IsSavedBy(uid),
		"saveCount": post.EffectiveSavesCount(),
	})
}

// notifyPostAuthor creates a notification for the post's author, skipping
// self-interactions. Best-effort: a failed notification never fails the toggle.
func (h *InteractionHandler) notifyPostAuthor(c echo.Context, actor *models.User, postID, notifType, suffix string) {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil || post.UserID == actor.FirebaseUID {
		return
	}

	author, err := h.userRepository.GetUserByFirebaseUID(post.UserID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			c.Logger().Warnf("could not resolve post author for notification: %v", err)
		}
		return
	}

	notif := &models.Notification{
		Type:        notifType,
		ActorID:     actor.ID,
		RecipientID: author.ID,
		TargetID:    postID,
		TargetType:  "post",
		Message:     actor.Name + suffix,
	}
	if err := h.notificationRepository.CreateNotification(notif); err != nil {
		c.Logger().Warnf("could not create %s notification: %v", notifType, err)
	}
}
