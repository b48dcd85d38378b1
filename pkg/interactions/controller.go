package interactions

import (
	"context"
	"log"
	"sync"
)

// Controller manages the like/save state of one content item. State
// starts uninitialized (nil fields) until Initialize is called with the
// item's known values; callers should render a placeholder until then
// rather than assuming false/0.
//
// Toggles update local state synchronously before the network call so
// the caller never waits on I/O, then reconcile against the server's
// answer. A toggle that fails reverts to the pre-toggle values. At most
// one like toggle and one save toggle may be in flight at a time; a
// toggle requested while one is pending is a no-op.
type Controller struct {
	client *Client
	itemID string

	// notify surfaces transient user-visible failures. Optional.
	notify func(message string)

	mu        sync.Mutex
	liked     *bool
	likeCount *int
	saved     *bool
	saveCount *int
	likeBusy  bool
	saveBusy  bool
}

// NewController creates a Controller for one item. The notify callback
// receives transient failure messages and may be nil.
func NewController(client *Client, itemID string, notify func(message string)) *Controller {
	return &Controller{
		client: client,
		itemID: itemID,
		notify: notify,
	}
}

// Initialize seeds the controller with the item's known state, as
// rendered from an initial fetch or server-side props
func (c *Controller) Initialize(liked bool, likeCount int, saved bool, saveCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.liked = &liked
	c.likeCount = &likeCount
	c.saved = &saved
	c.saveCount = &saveCount
}

// LikeState returns the current like state and count. ok is false until
// the controller has been initialized.
func (c *Controller) LikeState() (liked bool, count int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.liked == nil || c.likeCount == nil {
		return false, 0, false
	}
	return *c.liked, *c.likeCount, true
}

// SaveState returns the current save state and count. ok is false until
// the controller has been initialized.
func (c *Controller) SaveState() (saved bool, count int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saved == nil || c.saveCount == nil {
		return false, 0, false
	}
	return *c.saved, *c.saveCount, true
}

// LikeBusy reports whether a like toggle is in flight
func (c *Controller) LikeBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.likeBusy
}

// SaveBusy reports whether a save toggle is in flight
func (c *Controller) SaveBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveBusy
}

// ToggleLike flips the like state optimistically and reconciles with
// the server. No-op when uninitialized or while a like toggle is
// already in flight.
func (c *Controller) ToggleLike(ctx context.Context) {
	c.toggle(ctx, &c.liked, &c.likeCount, &c.likeBusy, c.client.ToggleLike, "like")
}

// ToggleSave flips the save state optimistically and reconciles with
// the server. No-op when uninitialized or while a save toggle is
// already in flight.
func (c *Controller) ToggleSave(ctx context.Context) {
	c.toggle(ctx, &c.saved, &c.saveCount, &c.saveBusy, c.client.ToggleSave, "save")
}

func (c *Controller) toggle(
	ctx context.Context,
	state **bool,
	count **int,
	busy *bool,
	call func(ctx context.Context, itemID string) (*ToggleResult, bool, error),
	action string,
) {
	c.mu.Lock()
	if *state == nil || *count == nil {
		c.mu.Unlock()
		log.Printf("interactions: %s toggle on item %s before initialization, ignoring", action, c.itemID)
		return
	}
	if *busy {
		c.mu.Unlock()
		return
	}
	*busy = true

	prevState := **state
	prevCount := **count

	// Optimistic flip, applied before the request is issued
	newState := !prevState
	newCount := prevCount + 1
	if !newState {
		newCount = prevCount - 1
	}
	**state = newState
	**count = newCount
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		*busy = false
		c.mu.Unlock()
	}()

	result, success, err := call(ctx, c.itemID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		**state = prevState
		**count = prevCount
		if c.notify != nil {
			c.notify("Failed to " + action + ", please try again")
		}
		return
	}

	// 2xx with success=false means the server declined without an error
	// status; revert silently.
	if !success {
		**state = prevState
		**count = prevCount
		return
	}

	// Server truth wins over the optimistic guess, which may be stale
	// under a concurrent toggle elsewhere.
	**state = result.State
	**count = result.Count
}

// VerifyStatus reconciles local state against the server, catching
// drift from stale initial props. Read-only and best-effort: failures
// are logged and never revert anything, and uninitialized state stays
// uninitialized.
func (c *Controller) VerifyStatus(ctx context.Context) {
	likeResult, err := c.client.LikeStatus(ctx, c.itemID)
	if err != nil {
		log.Printf("interactions: like status check for item %s failed: %v", c.itemID, err)
	}

	saveResult, err := c.client.SaveStatus(ctx, c.itemID)
	if err != nil {
		log.Printf("interactions: save status check for item %s failed: %v", c.itemID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if likeResult != nil && c.liked != nil && c.likeCount != nil {
		*c.liked = likeResult.State
		*c.likeCount = likeResult.Count
	}
	if saveResult != nil && c.saved != nil && c.saveCount != nil {
		*c.saved = saveResult.State
		*c.saveCount = saveResult.Count
	}
}
