package repositories

import (
	"testing"

	"github.com/peermentor/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsers(t *testing.T, repo *PostgresUserRepository, names ...string) []*models.User {
	t.Helper()
	users := make([]*models.User, 0, len(names))
	for _, name := range names {
		user := &models.User{Name: name, Email: name + "@example.com", FirebaseUID: "fb-" + name}
		require.NoError(t, repo.CreateUser(user))
		users = append(users, user)
	}
	return users
}

func TestFollowLifecycle(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewPostgresUserRepository(db)
	repo := NewPostgresFollowRepository(db)

	users := seedUsers(t, userRepo, "student", "mentor")
	student, mentor := users[0], users[1]

	following, err := repo.IsFollowing(student.ID, mentor.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: student.ID, FollowingID: mentor.ID}))

	following, err = repo.IsFollowing(student.ID, mentor.ID)
	require.NoError(t, err)
	assert.True(t, following)

	require.NoError(t, repo.DeleteFollow(student.ID, mentor.ID))

	following, err = repo.IsFollowing(student.ID, mentor.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestDeleteFollowMissingRelationship(t *testing.T) {
	repo := NewPostgresFollowRepository(newTestDB(t))
	assert.Error(t, repo.DeleteFollow(1, 2))
}

func TestFollowersAndFollowing(t *testing.T) {
	db := newTestDB(t)
	userRepo := NewPostgresUserRepository(db)
	repo := NewPostgresFollowRepository(db)

	users := seedUsers(t, userRepo, "a", "b", "c")
	a, b, c := users[0], users[1], users[2]

	// a and b both follow c; a also follows b.
	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: a.ID, FollowingID: c.ID}))
	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: b.ID, FollowingID: c.ID}))
	require.NoError(t, repo.CreateFollow(&models.Follow{FollowerID: a.ID, FollowingID: b.ID}))

	followers, err := repo.GetFollowers(c.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	followingOfA, err := repo.GetFollowing(a.ID)
	require.NoError(t, err)
	assert.Len(t, followingOfA, 2)

	count, err := repo.GetFollowersCount(c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.GetFollowingCount(a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	ids, err := repo.GetFollowingIDs(a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, ids)
}
