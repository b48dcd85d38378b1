package interactions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, handler http.HandlerFunc, notify func(string)) (*Controller, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, Session{Token: "test-token"}, server.Client())
	return NewController(client, "post-1", notify), server
}

func writeToggleJSON(w http.ResponseWriter, liked bool, likeCount int) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"liked":     liked,
		"likeCount": likeCount,
	})
}

func TestTogglePairRestoresState(t *testing.T) {
	// The fake endpoint keeps a real membership set so two toggles in a
	// row land back on the starting state.
	members := map[string]bool{"u2": true, "u3": true}

	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		if members["u1"] {
			delete(members, "u1")
		} else {
			members["u1"] = true
		}
		writeToggleJSON(w, members["u1"], len(members))
	}, nil)

	controller.Initialize(false, 2, false, 0)

	controller.ToggleLike(context.Background())
	liked, count, ok := controller.LikeState()
	require.True(t, ok)
	assert.True(t, liked)
	assert.Equal(t, 3, count)

	controller.ToggleLike(context.Background())
	liked, count, ok = controller.LikeState()
	require.True(t, ok)
	assert.False(t, liked)
	assert.Equal(t, 2, count)
}

func TestToggleLikeOptimisticBeforeResolve(t *testing.T) {
	release := make(chan struct{})

	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeToggleJSON(w, true, 6)
	}, nil)

	controller.Initialize(false, 5, false, 0)

	done := make(chan struct{})
	go func() {
		controller.ToggleLike(context.Background())
		close(done)
	}()

	// The optimistic flip lands before the request resolves.
	require.Eventually(t, func() bool {
		liked, count, ok := controller.LikeState()
		return ok && liked && count == 6
	}, time.Second, time.Millisecond)
	assert.True(t, controller.LikeBusy())

	close(release)
	<-done

	liked, count, _ := controller.LikeState()
	assert.True(t, liked)
	assert.Equal(t, 6, count)
	assert.False(t, controller.LikeBusy())
}

func TestToggleLikeRollbackOnFailure(t *testing.T) {
	var notified string
	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Post not found"}`, http.StatusNotFound)
	}, func(message string) {
		notified = message
	})

	controller.Initialize(true, 7, false, 0)

	controller.ToggleLike(context.Background())

	liked, count, ok := controller.LikeState()
	require.True(t, ok)
	assert.True(t, liked)
	assert.Equal(t, 7, count)
	assert.Equal(t, "Failed to like, please try again", notified)
	assert.False(t, controller.LikeBusy())
}

func TestToggleLikeRevertsSilentlyOnSuccessFalse(t *testing.T) {
	notifyCalls := 0
	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   false,
			"liked":     true,
			"likeCount": 3,
		})
	}, func(string) {
		notifyCalls++
	})

	controller.Initialize(false, 2, false, 0)

	controller.ToggleLike(context.Background())

	liked, count, ok := controller.LikeState()
	require.True(t, ok)
	assert.False(t, liked)
	assert.Equal(t, 2, count)
	assert.Zero(t, notifyCalls)
}

func TestToggleLikeServerTruthWins(t *testing.T) {
	// Simulates concurrent external toggles: the server's count is well
	// past the local optimistic guess.
	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		writeToggleJSON(w, true, 10)
	}, nil)

	controller.Initialize(false, 5, false, 0)

	controller.ToggleLike(context.Background())

	liked, count, ok := controller.LikeState()
	require.True(t, ok)
	assert.True(t, liked)
	assert.Equal(t, 10, count)
}

func TestToggleBeforeInitializeIsNoOp(t *testing.T) {
	requests := 0
	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeToggleJSON(w, true, 1)
	}, nil)

	controller.ToggleLike(context.Background())

	_, _, ok := controller.LikeState()
	assert.False(t, ok)
	assert.Zero(t, requests)
}

func TestToggleWhileInFlightIsNoOp(t *testing.T) {
	release := make(chan struct{})
	requests := make(chan struct{}, 8)

	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		requests <- struct{}{}
		<-release
		writeToggleJSON(w, true, 1)
	}, nil)

	controller.Initialize(false, 0, false, 0)

	done := make(chan struct{})
	go func() {
		controller.ToggleLike(context.Background())
		close(done)
	}()

	// Wait until the first toggle is in flight, then fire another.
	<-requests
	controller.ToggleLike(context.Background())

	close(release)
	<-done

	assert.Empty(t, requests)
	liked, count, _ := controller.LikeState()
	assert.True(t, liked)
	assert.Equal(t, 1, count)
}

func TestToggleSave(t *testing.T) {
	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts/post-1/save", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"saved":     true,
			"saveCount": 4,
		})
	}, nil)

	controller.Initialize(false, 0, false, 3)

	controller.ToggleSave(context.Background())

	saved, count, ok := controller.SaveState()
	require.True(t, ok)
	assert.True(t, saved)
	assert.Equal(t, 4, count)
}

func TestVerifyStatusOverwritesInitializedState(t *testing.T) {
	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/posts/post-1/like":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":   true,
				"liked":     true,
				"likeCount": 12,
			})
		case "/posts/post-1/save":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":   true,
				"saved":     false,
				"saveCount": 3,
			})
		default:
			http.NotFound(w, r)
		}
	}, nil)

	// Stale initial props: the server has moved on.
	controller.Initialize(false, 5, true, 9)

	controller.VerifyStatus(context.Background())

	liked, likeCount, _ := controller.LikeState()
	assert.True(t, liked)
	assert.Equal(t, 12, likeCount)

	saved, saveCount, _ := controller.SaveState()
	assert.False(t, saved)
	assert.Equal(t, 3, saveCount)
}

func TestVerifyStatusSkipsUninitializedState(t *testing.T) {
	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		writeToggleJSON(w, true, 12)
	}, nil)

	controller.VerifyStatus(context.Background())

	_, _, ok := controller.LikeState()
	assert.False(t, ok)
}

func TestVerifyStatusIgnoresFailures(t *testing.T) {
	controller, _ := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, nil)

	controller.Initialize(true, 4, false, 1)

	controller.VerifyStatus(context.Background())

	liked, count, ok := controller.LikeState()
	require.True(t, ok)
	assert.True(t, liked)
	assert.Equal(t, 4, count)
}
