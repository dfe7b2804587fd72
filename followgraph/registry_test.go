package followgraph

import (
	"context"
	"testing"
)

func TestRegistryReturnsSameStorePerUser(t *testing.T) {
	gw := newFakeGateway(testUser("u1", "u1", 0, 0), testUser("u2", "u2", 0, 0))
	reg := NewRegistry(gw, nil)

	a := reg.For("u1")
	b := reg.For("u1")
	c := reg.For("u2")

	if a != b {
		t.Error("expected the same store instance for repeated lookups")
	}
	if a == c {
		t.Error("expected distinct stores for distinct users")
	}
}

func TestRegistryBridgesFollowChangesAndToasts(t *testing.T) {
	ctx := context.Background()

	gw := newFakeGateway(testUser("u1", "u1", 0, 0), testUser("target", "t", 0, 0))
	reg := NewRegistry(gw, nil)

	type change struct {
		owner, target string
		following     bool
	}
	var changes []change
	var toasts []string

	reg.OnFollowChange = func(ownerID, targetID string, isFollowing bool) {
		changes = append(changes, change{ownerID, targetID, isFollowing})
	}
	reg.Toast = func(ownerID, message string) {
		toasts = append(toasts, ownerID+": "+message)
	}

	store := reg.For("u1")
	store.Follow(ctx, "target")

	if len(changes) != 1 {
		t.Fatalf("expected one bridged change, got %d", len(changes))
	}
	if changes[0].owner != "u1" || changes[0].target != "target" || !changes[0].following {
		t.Errorf("unexpected bridged change %+v", changes[0])
	}
	if len(toasts) != 0 {
		t.Errorf("successful follow must not toast, got %v", toasts)
	}

	gw.removeErr = errTest
	store.Unfollow(ctx, "target")
	if len(toasts) != 1 {
		t.Fatalf("expected one toast after a failed unfollow, got %d", len(toasts))
	}
}
