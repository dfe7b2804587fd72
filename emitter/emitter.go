// Package emitter provides the in-process change bus that keeps
// independent sessions of the same user in sync without a shared
// store. It carries two event kinds: a generic "something changed,
// re-fetch" signal and a follow-status change with payload.
package emitter

import "sync"

type genericListener struct {
	id int
	fn func()
}

type followListener struct {
	id int
	fn func(userID string, isFollowing bool)
}

// Emitter is constructor-created and injected, never a package-level
// singleton, so tests can run isolated buses. Listener sets are
// ephemeral; nothing survives a restart.
type Emitter struct {
	mu      sync.Mutex
	nextID  int
	generic []genericListener
	follow  []followListener
}

func New() *Emitter {
	return &Emitter{}
}

// Subscribe registers a generic change listener and returns its
// unsubscribe function. Repeated subscriptions of the same callback
// are not deduplicated; callers re-subscribing must unsubscribe first.
func (e *Emitter) Subscribe(fn func()) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.generic = append(e.generic, genericListener{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.generic {
			if l.id == id {
				e.generic = append(e.generic[:i:i], e.generic[i+1:]...)
				return
			}
		}
	}
}

// SubscribeToFollowChanges registers a follow-status listener and
// returns its unsubscribe function.
func (e *Emitter) SubscribeToFollowChanges(fn func(userID string, isFollowing bool)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.follow = append(e.follow, followListener{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.follow {
			if l.id == id {
				e.follow = append(e.follow[:i:i], e.follow[i+1:]...)
				return
			}
		}
	}
}

// Emit synchronously invokes every generic listener on the calling
// goroutine, in subscription order. No batching, no deduplication.
func (e *Emitter) Emit() {
	e.mu.Lock()
	listeners := make([]genericListener, len(e.generic))
	copy(listeners, e.generic)
	e.mu.Unlock()

	for _, l := range listeners {
		l.fn()
	}
}

// EmitFollowChange invokes every follow-status listener with the
// payload, then additionally fires the generic signal. Follow changes
// always imply a generic refresh.
func (e *Emitter) EmitFollowChange(userID string, isFollowing bool) {
	e.mu.Lock()
	listeners := make([]followListener, len(e.follow))
	copy(listeners, e.follow)
	e.mu.Unlock()

	for _, l := range listeners {
		l.fn(userID, isFollowing)
	}

	e.Emit()
}
