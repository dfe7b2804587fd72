package followgraph

import (
	"context"
	"testing"

	"yumigo/emitter"
)

func TestButtonForSelfRendersNothingAndSkipsBackend(t *testing.T) {
	ctx := context.Background()

	gw := newFakeGateway(testUser("me", "me", 0, 0))
	store := newTestStore(gw, nil, nil)

	button := NewFollowButton(store, "me")

	if button.Visible() {
		t.Error("a button targeting the current user must not render")
	}

	button.Mount(ctx)
	if button.Tap(ctx) {
		t.Error("tapping an invisible button must be a no-op")
	}
	if button.Following() {
		t.Error("invisible button reports no follow state")
	}

	if gw.profileCalls != 0 {
		t.Errorf("self-targeted button must never call the gateway, got %d calls", gw.profileCalls)
	}
	if gw.appendCalls != 0 {
		t.Errorf("self-targeted button must never write, got %d calls", gw.appendCalls)
	}
}

func TestButtonDerivesStateFromStore(t *testing.T) {
	ctx := context.Background()

	me := testUser("me", "me", 0, 0)
	me.FollowingIDs = []string{"target"}
	gw := newFakeGateway(me, testUser("target", "t", 0, 1))
	store := newTestStore(gw, nil, nil)

	button := NewFollowButton(store, "target")
	if button.Following() {
		t.Error("before mount the store has no cached state")
	}

	button.Mount(ctx)
	if !button.Following() {
		t.Error("mount must prime the store with the backend follow status")
	}

	// A change applied directly to the store is immediately visible to
	// the button: the store is the single source of truth.
	store.UpdateListsOptimistically("target", false, nil)
	if button.Following() {
		t.Error("button must track the store, not a private flag")
	}
}

func TestButtonTapTogglesFollowState(t *testing.T) {
	ctx := context.Background()

	gw := newFakeGateway(testUser("me", "me", 0, 0), testUser("target", "t", 0, 0))
	store := newTestStore(gw, nil, nil)
	button := NewFollowButton(store, "target")

	if !button.Tap(ctx) {
		t.Fatal("expected follow tap to succeed")
	}
	if !button.Following() {
		t.Error("expected following state after first tap")
	}

	if !button.Tap(ctx) {
		t.Fatal("expected unfollow tap to succeed")
	}
	if button.Following() {
		t.Error("expected not-following state after second tap")
	}

	if button.Loading() {
		t.Error("button must return to the enabled state after a tap settles")
	}
}

func TestButtonDropsDuplicateTapsWhileLoading(t *testing.T) {
	ctx := context.Background()

	gw := newFakeGateway(testUser("me", "me", 0, 0), testUser("target", "t", 0, 0))
	store := newTestStore(gw, nil, nil)
	button := NewFollowButton(store, "target")

	reentrant := true
	gw.onAppend = func() {
		// While the write is in flight the button is disabled.
		if !button.Loading() {
			t.Error("expected loading state during the backend call")
		}
		reentrant = button.Tap(ctx)
	}

	if !button.Tap(ctx) {
		t.Fatal("expected outer tap to succeed")
	}
	if reentrant {
		t.Error("a tap while loading must be dropped")
	}
	if gw.appendCalls != 1 {
		t.Errorf("expected one backend write, got %d", gw.appendCalls)
	}
}

func TestButtonReturnsToIdleAfterFailure(t *testing.T) {
	ctx := context.Background()

	gw := newFakeGateway(testUser("me", "me", 0, 0), testUser("target", "t", 0, 0))
	gw.appendErr = errTest
	store := NewStore("me", gw, nil, emitter.New(), nil)
	button := NewFollowButton(store, "target")

	if button.Tap(ctx) {
		t.Fatal("expected tap to report backend failure")
	}
	if button.Loading() {
		t.Error("success and failure collapse to the same enabled terminal state")
	}
	// Displayed state keeps the optimistic value.
	if !button.Following() {
		t.Error("failed follow still displays as following")
	}
}
