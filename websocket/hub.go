package websocket

import (
	"encoding/json"
	"sync"
)

// Hub tracks every live connection per user so server-side events
// reach all of a user's devices. It is the outward bridge for the
// in-process change buses: follow changes, favorite changes,
// notifications and toasts all fan out through here.
type Hub struct {
	clients    map[string]*Client
	userConns  map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

const (
	EventFollowChanged   = "follow_status_changed"
	EventFavoriteChanged = "favorite_changed"
	EventNotification    = "notification"
	EventToast           = "toast"
)

var HubInstance *Hub

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		userConns:  make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*Client]bool)
			}
			h.userConns[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				if h.userConns[client.UserID] != nil {
					delete(h.userConns[client.UserID], client)
					if len(h.userConns[client.UserID]) == 0 {
						delete(h.userConns, client.UserID)
					}
				}
				close(client.Send)
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) SendToUser(userID string, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	// Run mutates userConns and closes Send channels under the write
	// lock, so both the iteration and the sends stay under the read
	// lock. Stale clients are unregistered after unlocking because Run
	// needs the write lock to process them.
	var stale []*Client
	h.mu.RLock()
	for client := range h.userConns[userID] {
		select {
		case client.Send <- data:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.unregister <- client
	}
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}

func InitHub() {
	HubInstance = NewHub()
	go HubInstance.Run()
}
