package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/peermentor/backend/internal/models"
	"github.com/peermentor/backend/internal/repositories"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository   repositories.PostRepository
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		userRepository:   userRepo,
		followRepository: followRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with author info and user-specific flags
type EnrichedPost struct {
	models.Post
	Author     models.UserCompact `json:"author"`
	IsLiked    bool               `json:"is_liked"`
	IsSaved    bool               `json:"is_saved"`
	LikesCount int                `json:"likes_count"`
	SavesCount int                `json:"saves_count"`
}

// GetFeed returns enriched feed posts for the current user. Like/save
// flags come straight from the membership sets on the fetched documents,
// so no extra queries per post are needed.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetAllPosts(c.Request().Context(), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalItems, err := h.postRepository.CountPosts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Build author map by Firebase UID, avoiding duplicate lookups
	userMap := make(map[string]models.UserCompact)
	for _, p := range posts {
		if _, ok := userMap[p.UserID]; ok {
			continue
		}
		if author, err := h.userRepository.GetUserByFirebaseUID(p.UserID); err == nil {
			userMap[p.UserID] = author.ToCompact()
		}
	}

	enrichedPosts := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		enrichedPosts[i] = EnrichedPost{
			Post:       p,
			Author:     userMap[p.UserID],
			IsLiked:    p.IsLikedBy(user.FirebaseUID),
			IsSaved:    p.IsSavedBy(user.FirebaseUID),
			LikesCount: p.EffectiveLikesCount(),
			SavesCount: p.EffectiveSavesCount(),
		}
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": enrichedPosts,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      totalItems,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}
