package followgraph

import (
	"context"
	"sync"
)

// FollowButton is the per-view controller for a single follow/unfollow
// toggle. It owns no follow state of its own: the displayed state is
// always derived from the store, which is the single source of truth.
// A button whose target is the current user is invisible and inert, so
// self-follow is structurally unrepresentable.
type FollowButton struct {
	store    *Store
	targetID string

	mu      sync.Mutex
	loading bool
}

func NewFollowButton(store *Store, targetID string) *FollowButton {
	return &FollowButton{store: store, targetID: targetID}
}

// Visible reports whether the button renders at all.
func (b *FollowButton) Visible() bool {
	return b.targetID != "" && b.targetID != b.store.UserID()
}

// Following is the displayed toggle state, read from the store.
func (b *FollowButton) Following() bool {
	if !b.Visible() {
		return false
	}
	return b.store.IsFollowingLocal(b.targetID)
}

// Loading reports whether a tap is in flight; the button is disabled
// for the duration.
func (b *FollowButton) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Mount resolves the initial state. An invisible button never touches
// the backend.
func (b *FollowButton) Mount(ctx context.Context) {
	if !b.Visible() {
		return
	}
	if b.store.CheckFollowStatus(ctx, b.targetID) {
		b.store.UpdateListsOptimistically(b.targetID, true, nil)
	}
}

// Tap toggles the follow state through the store. Duplicate taps while
// loading are dropped. The button always returns to the enabled state
// afterwards; success and failure collapse to the same terminal state
// because the store does not revert optimistic changes.
func (b *FollowButton) Tap(ctx context.Context) bool {
	if !b.Visible() {
		return false
	}

	b.mu.Lock()
	if b.loading {
		b.mu.Unlock()
		return false
	}
	b.loading = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.loading = false
		b.mu.Unlock()
	}()

	if b.store.IsFollowingLocal(b.targetID) {
		return b.store.Unfollow(ctx, b.targetID)
	}
	return b.store.Follow(ctx, b.targetID)
}
