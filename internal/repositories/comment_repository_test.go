package repositories

import (
	"testing"

	"github.com/peermentor/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommentLifecycle(t *testing.T) {
	repo := NewPostgresCommentRepository(newTestDB(t))

	first := &models.Comment{PostID: "post-1", UserID: 1, Content: "first"}
	second := &models.Comment{PostID: "post-1", UserID: 2, Content: "second"}
	require.NoError(t, repo.CreateComment(first))
	require.NoError(t, repo.CreateComment(second))
	require.NoError(t, repo.CreateComment(&models.Comment{PostID: "post-2", UserID: 1, Content: "elsewhere"}))

	comments, err := repo.GetCommentsByPostID("post-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	// Oldest first, conversation order.
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)

	first.Content = "first, edited"
	require.NoError(t, repo.UpdateComment(first))

	fetched, err := repo.GetCommentByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first, edited", fetched.Content)

	require.NoError(t, repo.DeleteComment(first.ID))
	_, err = repo.GetCommentByID(first.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommentLikeToggleHelpers(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresCommentLikeRepository(db)

	liked, err := repo.HasUserLikedComment(1, 1)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, repo.CreateCommentLike(&models.CommentLike{CommentID: 1, UserID: 1}))
	require.NoError(t, repo.CreateCommentLike(&models.CommentLike{CommentID: 1, UserID: 2}))

	liked, err = repo.HasUserLikedComment(1, 1)
	require.NoError(t, err)
	assert.True(t, liked)

	count, err := repo.GetLikesCount(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.DeleteCommentLike(1, 1))
	count, err = repo.GetLikesCount(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
