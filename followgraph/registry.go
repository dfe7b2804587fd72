package followgraph

import (
	"sync"

	"yumigo/emitter"
	"yumigo/gateway"
)

// Registry hands out one Store per authenticated user, created on
// demand. Each user gets their own change bus; OnFollowChange and
// Toast bridge that bus outward (to the websocket hub) so every device
// of the user observes changes made on any of them.
type Registry struct {
	Gateway gateway.PersistenceGateway
	Sink    gateway.NotificationSink

	// OnFollowChange is invoked after any follow-status broadcast on
	// ownerID's bus. Optional.
	OnFollowChange func(ownerID, targetID string, isFollowing bool)

	// Toast delivers non-blocking error messages to ownerID. Optional.
	Toast func(ownerID, message string)

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(gw gateway.PersistenceGateway, sink gateway.NotificationSink) *Registry {
	return &Registry{
		Gateway: gw,
		Sink:    sink,
		stores:  make(map[string]*Store),
	}
}

func (r *Registry) For(userID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[userID]; ok {
		return store
	}

	bus := emitter.New()
	var toast Toaster
	if r.Toast != nil {
		owner := userID
		toast = ToastFunc(func(message string) { r.Toast(owner, message) })
	}

	store := NewStore(userID, r.Gateway, r.Sink, bus, toast)
	if r.OnFollowChange != nil {
		owner := userID
		bus.SubscribeToFollowChanges(func(targetID string, isFollowing bool) {
			r.OnFollowChange(owner, targetID, isFollowing)
		})
	}

	r.stores[userID] = store
	return store
}
