// Package favorites tracks one user's saved recipes with the same
// optimistic-mutation contract as the follow graph, but with a
// push-based live feed instead of manual reloads: every backend change
// streams back through the gateway's watch channel, so two devices of
// the same user converge without polling.
package favorites

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"yumigo/gateway"
	"yumigo/logger"
	"yumigo/models"
)

// Toaster mirrors followgraph.Toaster; failures surface as
// non-blocking messages, never as errors to the view.
type Toaster interface {
	Show(message string)
}

type ToastFunc func(message string)

func (f ToastFunc) Show(message string) { f(message) }

type Store struct {
	userID string
	gw     gateway.FavoriteGateway
	toast  Toaster

	mu    sync.Mutex
	saved map[string]models.Favorite
	stop  func()
}

func NewStore(userID string, gw gateway.FavoriteGateway, toast Toaster) *Store {
	if toast == nil {
		toast = ToastFunc(func(string) {})
	}
	return &Store{
		userID: userID,
		gw:     gw,
		toast:  toast,
		saved:  make(map[string]models.Favorite),
	}
}

// Load replaces the cached set with ground truth. Errors degrade to
// keeping the current cache; the read path never fails the caller.
func (s *Store) Load(ctx context.Context) {
	records, err := s.gw.ListFavorites(ctx, s.userID)
	if err != nil {
		logger.L().Warn("favorites load failed", zap.Error(err))
		return
	}

	fresh := make(map[string]models.Favorite, len(records))
	for _, r := range records {
		fresh[r.RecipeID] = r
	}

	s.mu.Lock()
	s.saved = fresh
	s.mu.Unlock()
}

func (s *Store) IsSaved(recipeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.saved[recipeID]
	return ok
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// SavedRecipeIDs returns the cached set; order is unspecified.
func (s *Store) SavedRecipeIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.saved))
	for id := range s.saved {
		ids = append(ids, id)
	}
	return ids
}

// Save optimistically marks the recipe as saved, then persists. Like
// the follow path, a failed write toasts but does not revert.
func (s *Store) Save(ctx context.Context, recipeID string) bool {
	if s.userID == "" || recipeID == "" {
		return false
	}

	s.mu.Lock()
	s.saved[recipeID] = models.Favorite{UserID: s.userID, RecipeID: recipeID}
	s.mu.Unlock()

	fav, err := s.gw.SaveFavorite(ctx, s.userID, recipeID)
	if err != nil {
		logger.L().Warn("save favorite failed",
			zap.String("user", s.userID), zap.String("recipe", recipeID), zap.Error(err))
		if errors.Is(err, gateway.ErrPermissionDenied) {
			s.toast.Show("You don't have permission to save recipes.")
		} else {
			s.toast.Show("Failed to save recipe. Please try again.")
		}
		return false
	}

	s.mu.Lock()
	s.saved[recipeID] = *fav
	s.mu.Unlock()
	return true
}

func (s *Store) Unsave(ctx context.Context, recipeID string) bool {
	if s.userID == "" || recipeID == "" {
		return false
	}

	s.mu.Lock()
	delete(s.saved, recipeID)
	s.mu.Unlock()

	if err := s.gw.RemoveFavorite(ctx, s.userID, recipeID); err != nil {
		logger.L().Warn("unsave favorite failed",
			zap.String("user", s.userID), zap.String("recipe", recipeID), zap.Error(err))
		if errors.Is(err, gateway.ErrPermissionDenied) {
			s.toast.Show("You don't have permission to update saved recipes.")
		} else {
			s.toast.Show("Failed to remove saved recipe. Please try again.")
		}
		return false
	}
	return true
}

// Watch subscribes to the live feed and applies incoming changes to
// the cached set until the context ends or Close is called.
func (s *Store) Watch(ctx context.Context) error {
	events, stop, err := s.gw.WatchFavorites(ctx, s.userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.stop != nil {
		s.stop()
	}
	s.stop = stop
	s.mu.Unlock()

	go func() {
		for event := range events {
			s.apply(event)
		}
	}()
	return nil
}

func (s *Store) apply(event gateway.FavoriteEvent) {
	if event.UserID != s.userID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Saved {
		if _, ok := s.saved[event.RecipeID]; !ok {
			s.saved[event.RecipeID] = models.Favorite{UserID: s.userID, RecipeID: event.RecipeID}
		}
	} else {
		delete(s.saved, event.RecipeID)
	}
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}
