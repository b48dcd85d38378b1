package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/peermentor/backend/internal/middleware"
	"github.com/peermentor/backend/internal/models"
	"github.com/peermentor/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errNotImplemented = errors.New("not implemented")

// fakePostRepo keeps posts in memory and mirrors the toggle contract:
// membership flips and the count is recomputed from the set.
type fakePostRepo struct {
	posts map[string]*models.Post
}

func (r *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return post, nil
}

func (r *fakePostRepo) ToggleLike(ctx context.Context, postID, uid string) (*models.ToggleResult, error) {
	post, ok := r.posts[postID]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	post.LikedBy = flipMembership(post.LikedBy, uid)
	post.LikesCount = len(post.LikedBy)
	return &models.ToggleResult{State: post.IsLikedBy(uid), Count: post.LikesCount}, nil
}

func (r *fakePostRepo) ToggleSave(ctx context.Context, postID, uid string) (*models.ToggleResult, error) {
	post, ok := r.posts[postID]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	post.SavedBy = flipMembership(post.SavedBy, uid)
	post.SavesCount = len(post.SavedBy)
	return &models.ToggleResult{State: post.IsSavedBy(uid), Count: post.SavesCount}, nil
}

func flipMembership(set []string, uid string) []string {
	for i, id := range set {
		if id == uid {
			return append(set[:i], set[i+1:]...)
		}
	}
	return append(set, uid)
}

func (r *fakePostRepo) CreatePost(ctx context.Context, post *models.Post) error { return errNotImplemented }
func (r *fakePostRepo) GetPostsByUserID(ctx context.Context, userID string, skip, limit int64) ([]models.Post, error) {
	return nil, errNotImplemented
}
func (r *fakePostRepo) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return nil, errNotImplemented
}
func (r *fakePostRepo) CountPosts(ctx context.Context) (int64, error) { return 0, errNotImplemented }
func (r *fakePostRepo) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	return errNotImplemented
}
func (r *fakePostRepo) DeletePost(ctx context.Context, id string) error { return errNotImplemented }
func (r *fakePostRepo) GetLikedPosts(ctx context.Context, uid string, skip, limit int64) ([]models.Post, error) {
	return nil, errNotImplemented
}
func (r *fakePostRepo) GetSavedPosts(ctx context.Context, uid string, skip, limit int64) ([]models.Post, error) {
	return nil, errNotImplemented
}
func (r *fakePostRepo) IncrementCommentsCount(ctx context.Context, postID string) error {
	return errNotImplemented
}
func (r *fakePostRepo) DecrementCommentsCount(ctx context.Context, postID string) error {
	return errNotImplemented
}

// fakeUserRepo resolves users by Firebase UID only
type fakeUserRepo struct {
	byUID map[string]*models.User
}

func (r *fakeUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	user, ok := r.byUID[firebaseUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) CreateUser(user *models.User) error { return errNotImplemented }
func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeUserRepo) UpdateUser(user *models.User) error {
	r.byUID[user.FirebaseUID] = user
	return nil
}
func (r *fakeUserRepo) DeleteUser(id uint) error           { return errNotImplemented }
func (r *fakeUserRepo) SearchUsers(query string) ([]models.User, error) {
	return nil, errNotImplemented
}
func (r *fakeUserRepo) ListMentors(filter repositories.MentorFilter, page, limit int) ([]models.User, int64, error) {
	return nil, 0, errNotImplemented
}

// fakeNotificationRepo records created notifications
type fakeNotificationRepo struct {
	created []*models.Notification
}

func (r *fakeNotificationRepo) CreateNotification(notification *models.Notification) error {
	r.created = append(r.created, notification)
	return nil
}

func (r *fakeNotificationRepo) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	return nil, 0, errNotImplemented
}
func (r *fakeNotificationRepo) GetGrouped(recipientID uint) ([]models.Notification, []models.Notification, []models.Notification, []models.Notification, error) {
	return nil, nil, nil, nil, errNotImplemented
}
func (r *fakeNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	return 0, errNotImplemented
}
func (r *fakeNotificationRepo) MarkAsRead(notificationID, recipientID uint) error {
	return errNotImplemented
}
func (r *fakeNotificationRepo) MarkAllAsRead(recipientID uint) error { return errNotImplemented }

func newInteractionTest() (*InteractionHandler, *fakePostRepo, *fakeNotificationRepo) {
	postRepo := &fakePostRepo{posts: map[string]*models.Post{}}
	userRepo := &fakeUserRepo{byUID: map[string]*models.User{
		"u1": {Name: "User One", FirebaseUID: "u1"},
		"u2": {Name: "User Two", FirebaseUID: "u2"},
	}}
	notifRepo := &fakeNotificationRepo{}
	return NewInteractionHandler(postRepo, userRepo, notifRepo), postRepo, notifRepo
}

func newToggleContext(method, postID, uid string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(postID)
	if uid != "" {
		c.Set(middleware.ContextKeyFirebaseUID, uid)
	}
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetLikeStatusAnonymous(t *testing.T) {
	handler, postRepo, _ := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2", LikedBy: []string{"u2", "u3"}, LikesCount: 2}

	c, rec := newToggleContext(http.MethodGet, "post-1", "")
	require.NoError(t, handler.GetLikeStatus(c))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["liked"])
	assert.Equal(t, float64(2), body["likeCount"])
}

func TestGetLikeStatusAuthenticatedMember(t *testing.T) {
	handler, postRepo, _ := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2", LikedBy: []string{"u1", "u3"}}

	c, rec := newToggleContext(http.MethodGet, "post-1", "u1")
	require.NoError(t, handler.GetLikeStatus(c))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(2), body["likeCount"])
}

func TestGetLikeStatusLegacyDocumentFallsBackToCounter(t *testing.T) {
	// Documents created before the set existed carry only the counter.
	handler, postRepo, _ := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2", LikedBy: nil, LikesCount: 7}

	c, rec := newToggleContext(http.MethodGet, "post-1", "u1")
	require.NoError(t, handler.GetLikeStatus(c))

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["liked"])
	assert.Equal(t, float64(7), body["likeCount"])
}

func TestGetLikeStatusPostNotFound(t *testing.T) {
	handler, _, _ := newInteractionTest()

	c, _ := newToggleContext(http.MethodGet, "missing", "")
	err := handler.GetLikeStatus(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestToggleLikeUnauthenticated(t *testing.T) {
	handler, postRepo, _ := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2"}

	c, _ := newToggleContext(http.MethodPut, "post-1", "")
	err := handler.ToggleLike(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestToggleLikeMissingAccountRecord(t *testing.T) {
	// The identity provider authenticated the caller but no application
	// record exists. The toggle hard-fails until registration.
	handler, postRepo, _ := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2"}

	c, _ := newToggleContext(http.MethodPut, "post-1", "unregistered-uid")
	err := handler.ToggleLike(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Equal(t, "No account found for authenticated user", httpErr.Message)

	post := postRepo.posts["post-1"]
	assert.Empty(t, post.LikedBy)
}

func TestToggleLikeAddsMembership(t *testing.T) {
	handler, postRepo, _ := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2", LikedBy: []string{"u2"}, LikesCount: 1}

	c, rec := newToggleContext(http.MethodPut, "post-1", "u1")
	require.NoError(t, handler.ToggleLike(c))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(2), body["likeCount"])

	post := postRepo.posts["post-1"]
	assert.ElementsMatch(t, []string{"u2", "u1"}, post.LikedBy)
	assert.Equal(t, len(post.LikedBy), post.LikesCount)
}

func TestToggleLikeRemovesMembership(t *testing.T) {
	handler, postRepo, _ := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2", LikedBy: []string{"u2", "u1"}, LikesCount: 2}

	c, rec := newToggleContext(http.MethodPut, "post-1", "u1")
	require.NoError(t, handler.ToggleLike(c))

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["liked"])
	assert.Equal(t, float64(1), body["likeCount"])

	post := postRepo.posts["post-1"]
	assert.ElementsMatch(t, []string{"u2"}, post.LikedBy)
	assert.Equal(t, len(post.LikedBy), post.LikesCount)
}

func TestToggleLikePostNotFound(t *testing.T) {
	handler, _, _ := newInteractionTest()

	c, _ := newToggleContext(http.MethodPut, "missing", "u1")
	err := handler.ToggleLike(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestToggleLikeMalformedPostID(t *testing.T) {
	// The Mongo repository rejects a non-hex ID before touching the
	// collection, and the handler reports it as a missing post.
	userRepo := &fakeUserRepo{byUID: map[string]*models.User{
		"u1": {Name: "User One", FirebaseUID: "u1"},
	}}
	handler := NewInteractionHandler(&repositories.MongoPostRepository{}, userRepo, &fakeNotificationRepo{})

	c, _ := newToggleContext(http.MethodPut, "not-a-hex-id", "u1")
	err := handler.ToggleLike(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestGetLikeStatusMalformedPostID(t *testing.T) {
	handler := NewInteractionHandler(&repositories.MongoPostRepository{}, &fakeUserRepo{byUID: map[string]*models.User{}}, &fakeNotificationRepo{})

	c, _ := newToggleContext(http.MethodGet, "not-a-hex-id", "")
	err := handler.GetLikeStatus(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestToggleLikeNotifiesAuthor(t *testing.T) {
	handler, postRepo, notifRepo := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2"}

	c, _ := newToggleContext(http.MethodPut, "post-1", "u1")
	require.NoError(t, handler.ToggleLike(c))

	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, "like", notifRepo.created[0].Type)
	assert.Equal(t, "User One liked your post", notifRepo.created[0].Message)
}

func TestToggleLikeSkipsSelfNotification(t *testing.T) {
	handler, postRepo, notifRepo := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u1"}

	c, _ := newToggleContext(http.MethodPut, "post-1", "u1")
	require.NoError(t, handler.ToggleLike(c))

	assert.Empty(t, notifRepo.created)
}

func TestToggleLikeUnlikeDoesNotNotify(t *testing.T) {
	handler, postRepo, notifRepo := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2", LikedBy: []string{"u1"}, LikesCount: 1}

	c, _ := newToggleContext(http.MethodPut, "post-1", "u1")
	require.NoError(t, handler.ToggleLike(c))

	assert.Empty(t, notifRepo.created)
}

func TestToggleSaveRoundTrip(t *testing.T) {
	handler, postRepo, _ := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2"}

	c, rec := newToggleContext(http.MethodPut, "post-1", "u1")
	require.NoError(t, handler.ToggleSave(c))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["saved"])
	assert.Equal(t, float64(1), body["saveCount"])

	c, rec = newToggleContext(http.MethodPut, "post-1", "u1")
	require.NoError(t, handler.ToggleSave(c))

	body = decodeBody(t, rec)
	assert.Equal(t, false, body["saved"])
	assert.Equal(t, float64(0), body["saveCount"])
}

func TestCountTracksSetAcrossToggleSequence(t *testing.T) {
	handler, postRepo, _ := newInteractionTest()
	postRepo.posts["post-1"] = &models.Post{UserID: "u2"}

	for _, uid := range []string{"u1", "u2", "u1", "u2", "u1"} {
		c, _ := newToggleContext(http.MethodPut, "post-1", uid)
		require.NoError(t, handler.ToggleLike(c))

		post := postRepo.posts["post-1"]
		assert.Equal(t, len(post.LikedBy), post.LikesCount)
	}

	post := postRepo.posts["post-1"]
	assert.ElementsMatch(t, []string{"u1"}, post.LikedBy)
	assert.Equal(t, 1, post.LikesCount)
}
