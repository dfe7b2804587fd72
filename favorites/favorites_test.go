package favorites

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"yumigo/gateway"
	"yumigo/models"
	"yumigo/utils"
)

type fakeFavoriteGateway struct {
	mu      sync.Mutex
	records map[string]map[string]models.Favorite // userID -> recipeID
	saveErr error

	feed chan gateway.FavoriteEvent
}

func newFakeFavoriteGateway() *fakeFavoriteGateway {
	return &fakeFavoriteGateway{
		records: make(map[string]map[string]models.Favorite),
		feed:    make(chan gateway.FavoriteEvent, 16),
	}
}

func (g *fakeFavoriteGateway) SaveFavorite(ctx context.Context, userID, recipeID string) (*models.Favorite, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return nil, g.saveErr
	}
	if g.records[userID] == nil {
		g.records[userID] = make(map[string]models.Favorite)
	}
	if existing, ok := g.records[userID][recipeID]; ok {
		return &existing, nil
	}
	fav := models.Favorite{ID: utils.GenerateUUID(), UserID: userID, RecipeID: recipeID, CreatedAt: time.Now()}
	g.records[userID][recipeID] = fav
	return &fav, nil
}

func (g *fakeFavoriteGateway) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.records[userID], recipeID)
	return nil
}

func (g *fakeFavoriteGateway) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []models.Favorite{}
	for _, fav := range g.records[userID] {
		out = append(out, fav)
	}
	return out, nil
}

func (g *fakeFavoriteGateway) WatchFavorites(ctx context.Context, userID string) (<-chan gateway.FavoriteEvent, func(), error) {
	return g.feed, func() {}, nil
}

type recordingToast struct {
	mu       sync.Mutex
	messages []string
}

func (t *recordingToast) Show(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, message)
}

func (t *recordingToast) last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.messages) == 0 {
		return ""
	}
	return t.messages[len(t.messages)-1]
}

func TestSaveAndUnsaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	gw := newFakeFavoriteGateway()
	store := NewStore("u1", gw, nil)

	if !store.Save(ctx, "r1") {
		t.Fatal("expected save to succeed")
	}
	if !store.IsSaved("r1") {
		t.Error("expected r1 saved locally")
	}

	if !store.Unsave(ctx, "r1") {
		t.Fatal("expected unsave to succeed")
	}
	if store.IsSaved("r1") {
		t.Error("expected r1 removed locally")
	}
}

func TestSaveFailureKeepsOptimisticStateAndToasts(t *testing.T) {
	ctx := context.Background()
	gw := newFakeFavoriteGateway()
	gw.saveErr = errors.New("backend down")
	toast := &recordingToast{}
	store := NewStore("u1", gw, toast)

	if store.Save(ctx, "r1") {
		t.Fatal("expected save to report failure")
	}
	if !store.IsSaved("r1") {
		t.Error("optimistic state must not revert on failure")
	}
	if toast.last() != "Failed to save recipe. Please try again." {
		t.Errorf("unexpected toast %q", toast.last())
	}
}

func TestPermissionDeniedGetsDistinctMessage(t *testing.T) {
	ctx := context.Background()
	gw := newFakeFavoriteGateway()
	gw.saveErr = gateway.ErrPermissionDenied
	toast := &recordingToast{}
	store := NewStore("u1", gw, toast)

	store.Save(ctx, "r1")
	if toast.last() != "You don't have permission to save recipes." {
		t.Errorf("expected the permission-specific message, got %q", toast.last())
	}
}

func TestLoadReplacesCacheWithGroundTruth(t *testing.T) {
	ctx := context.Background()
	gw := newFakeFavoriteGateway()
	store := NewStore("u1", gw, nil)

	gw.SaveFavorite(ctx, "u1", "r1")
	gw.SaveFavorite(ctx, "u1", "r2")
	gw.SaveFavorite(ctx, "someone-else", "r9")

	store.Load(ctx)

	if store.Count() != 2 {
		t.Fatalf("expected 2 favorites, got %d", store.Count())
	}
	if store.IsSaved("r9") {
		t.Error("another user's favorite must not leak in")
	}
}

func TestWatchAppliesPushedChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw := newFakeFavoriteGateway()
	store := NewStore("u1", gw, nil)
	if err := store.Watch(ctx); err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer store.Close()

	gw.feed <- gateway.FavoriteEvent{UserID: "u1", RecipeID: "r1", Saved: true}
	gw.feed <- gateway.FavoriteEvent{UserID: "other", RecipeID: "r2", Saved: true}

	waitFor(t, func() bool { return store.IsSaved("r1") }, "pushed save applied")
	if store.IsSaved("r2") {
		t.Error("events for other users must be ignored")
	}

	gw.feed <- gateway.FavoriteEvent{UserID: "u1", RecipeID: "r1", Saved: false}
	waitFor(t, func() bool { return !store.IsSaved("r1") }, "pushed unsave applied")
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
