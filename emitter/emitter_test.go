package emitter

import "testing"

func TestEmitInvokesListenersInSubscriptionOrder(t *testing.T) {
	e := New()

	var order []int
	e.Subscribe(func() { order = append(order, 1) })
	e.Subscribe(func() { order = append(order, 2) })
	e.Subscribe(func() { order = append(order, 3) })

	e.Emit()

	if len(order) != 3 {
		t.Fatalf("expected 3 invocations, got %d", len(order))
	}
	for i, got := range order {
		if got != i+1 {
			t.Errorf("position %d: expected listener %d, got %d", i, i+1, got)
		}
	}
}

func TestFollowChangeFanOut(t *testing.T) {
	e := New()

	calls := 0
	for i := 0; i < 5; i++ {
		e.SubscribeToFollowChanges(func(userID string, isFollowing bool) {
			if userID != "user-x" {
				t.Errorf("expected user-x, got %q", userID)
			}
			if !isFollowing {
				t.Error("expected isFollowing=true")
			}
			calls++
		})
	}

	e.EmitFollowChange("user-x", true)

	if calls != 5 {
		t.Errorf("expected each of 5 listeners invoked exactly once, got %d calls", calls)
	}
}

func TestFollowChangeAlsoFiresGenericSignal(t *testing.T) {
	e := New()

	var order []string
	e.Subscribe(func() { order = append(order, "generic") })
	e.SubscribeToFollowChanges(func(string, bool) { order = append(order, "follow") })

	e.EmitFollowChange("user-y", false)

	if len(order) != 2 || order[0] != "follow" || order[1] != "generic" {
		t.Fatalf("expected follow listeners before generic, got %v", order)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	e := New()

	first := 0
	second := 0
	unsub := e.Subscribe(func() { first++ })
	e.Subscribe(func() { second++ })

	e.Emit()
	unsub()
	e.Emit()
	e.Emit()

	if first != 1 {
		t.Errorf("unsubscribed listener invoked %d times, expected 1", first)
	}
	if second != 3 {
		t.Errorf("remaining listener invoked %d times, expected 3", second)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	e := New()

	count := 0
	unsub := e.SubscribeToFollowChanges(func(string, bool) { count++ })
	remaining := 0
	e.SubscribeToFollowChanges(func(string, bool) { remaining++ })

	unsub()
	unsub()
	e.EmitFollowChange("u", true)

	if count != 0 {
		t.Errorf("unsubscribed follow listener invoked %d times", count)
	}
	if remaining != 1 {
		t.Errorf("remaining follow listener invoked %d times, expected 1", remaining)
	}
}

func TestListenerMaySubscribeDuringEmit(t *testing.T) {
	e := New()

	lateCalls := 0
	e.Subscribe(func() {
		e.Subscribe(func() { lateCalls++ })
	})

	e.Emit()
	if lateCalls != 0 {
		t.Error("listener subscribed during emit must not run in the same emit")
	}

	e.Emit()
	if lateCalls != 1 {
		t.Errorf("late listener invoked %d times after second emit, expected 1", lateCalls)
	}
}
