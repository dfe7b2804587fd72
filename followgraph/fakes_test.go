package followgraph

import (
	"context"
	"errors"
	"strings"
	"sync"

	"yumigo/gateway"
	"yumigo/models"
)

var errTest = errors.New("backend unavailable")

// fakeGateway is an in-memory PersistenceGateway mirroring the
// production membership semantics: appends are idempotent and the
// follower counter only moves on actual membership changes.
type fakeGateway struct {
	mu    sync.Mutex
	users map[string]*models.User
	order []string

	appendErr error
	removeErr error
	searchErr error

	profileCalls int
	appendCalls  int

	onUsersFollowing func()
	onAppend         func()
}

func newFakeGateway(users ...models.User) *fakeGateway {
	g := &fakeGateway{users: make(map[string]*models.User)}
	for i := range users {
		u := users[i]
		if u.FollowingIDs == nil {
			u.FollowingIDs = []string{}
		}
		g.users[u.ID] = &u
		g.order = append(g.order, u.ID)
	}
	return g
}

func (g *fakeGateway) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.profileCalls++
	u, ok := g.users[userID]
	if !ok {
		return nil, nil
	}
	copied := *u
	copied.FollowingIDs = append([]string{}, u.FollowingIDs...)
	return &copied, nil
}

func (g *fakeGateway) GetProfiles(ctx context.Context, userIDs []string) ([]models.User, error) {
	out := []models.User{}
	for _, id := range userIDs {
		u, err := g.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (g *fakeGateway) UpdateProfile(ctx context.Context, userID string, patch gateway.ProfilePatch) error {
	return nil
}

func (g *fakeGateway) AppendFollowing(ctx context.Context, userID, targetID string) error {
	if g.onAppend != nil {
		g.onAppend()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.appendCalls++
	if g.appendErr != nil {
		return g.appendErr
	}

	u, ok := g.users[userID]
	target, okTarget := g.users[targetID]
	if !ok || !okTarget {
		return errors.New("user not found")
	}
	for _, id := range u.FollowingIDs {
		if id == targetID {
			return nil
		}
	}
	u.FollowingIDs = append(u.FollowingIDs, targetID)
	target.FollowerCount++
	return nil
}

func (g *fakeGateway) RemoveFollowing(ctx context.Context, userID, targetID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.removeErr != nil {
		return g.removeErr
	}

	u, ok := g.users[userID]
	target, okTarget := g.users[targetID]
	if !ok || !okTarget {
		return errors.New("user not found")
	}
	kept := u.FollowingIDs[:0]
	found := false
	for _, id := range u.FollowingIDs {
		if id == targetID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	u.FollowingIDs = kept
	if found && target.FollowerCount > 0 {
		target.FollowerCount--
	}
	return nil
}

func (g *fakeGateway) UsersFollowing(ctx context.Context, targetID string) ([]models.User, error) {
	if g.onUsersFollowing != nil {
		g.onUsersFollowing()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	out := []models.User{}
	for _, id := range g.order {
		u := g.users[id]
		for _, followed := range u.FollowingIDs {
			if followed == targetID {
				out = append(out, *u)
				break
			}
		}
	}
	return out, nil
}

func (g *fakeGateway) AllProfiles(ctx context.Context) ([]models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []models.User{}
	for _, id := range g.order {
		out = append(out, *g.users[id])
	}
	return out, nil
}

func (g *fakeGateway) SearchProfiles(ctx context.Context, term string) ([]models.User, error) {
	if g.searchErr != nil {
		return nil, g.searchErr
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	term = strings.ToLower(term)
	out := []models.User{}
	for _, id := range g.order {
		u := g.users[id]
		if strings.Contains(strings.ToLower(u.Username), term) ||
			strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeSink struct {
	mu      sync.Mutex
	created []models.Notification
	err     error
}

func (s *fakeSink) CreateNotification(ctx context.Context, n *models.Notification) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.created = append(s.created, *n)
	return "notification-id", nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

type fakeToast struct {
	mu       sync.Mutex
	messages []string
}

func (t *fakeToast) Show(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, message)
}

func (t *fakeToast) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}
