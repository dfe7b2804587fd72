// Package followgraph owns the follow/unfollow business rules and the
// optimistic-update contract. A Store is the single state owner for
// one user's cached social lists; independent sessions synchronize
// through the change bus, never through shared slices.
package followgraph

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"yumigo/emitter"
	"yumigo/gateway"
	"yumigo/logger"
	"yumigo/models"
)

// DefaultSuggestedLimit bounds the suggestion list when the caller
// does not ask for a specific size.
const DefaultSuggestedLimit = 10

// Toaster receives non-blocking user-facing error messages. Failures
// in the core never bubble up as errors to the UI; they become toasts.
type Toaster interface {
	Show(message string)
}

// ToastFunc adapts a plain function to the Toaster interface.
type ToastFunc func(message string)

func (f ToastFunc) Show(message string) { f(message) }

type Store struct {
	userID string
	gw     gateway.PersistenceGateway
	sink   gateway.NotificationSink
	bus    *emitter.Emitter
	toast  Toaster

	mu        sync.Mutex
	following []models.UserResponse
	followers []models.UserResponse
	suggested []models.UserResponse
	results   []models.UserResponse
	loading   bool
}

func NewStore(userID string, gw gateway.PersistenceGateway, sink gateway.NotificationSink, bus *emitter.Emitter, toast Toaster) *Store {
	if toast == nil {
		toast = ToastFunc(func(string) {})
	}
	return &Store{
		userID: userID,
		gw:     gw,
		sink:   sink,
		bus:    bus,
		toast:  toast,
	}
}

func (s *Store) UserID() string { return s.userID }

// Bus exposes the change bus so views can observe this store's user.
func (s *Store) Bus() *emitter.Emitter { return s.bus }

func (s *Store) Following() []models.UserResponse { return s.snapshot(&s.following) }
func (s *Store) Followers() []models.UserResponse { return s.snapshot(&s.followers) }
func (s *Store) Suggested() []models.UserResponse { return s.snapshot(&s.suggested) }

func (s *Store) SearchResults() []models.UserResponse { return s.snapshot(&s.results) }

func (s *Store) snapshot(list *[]models.UserResponse) []models.UserResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UserResponse, len(*list))
	copy(out, *list)
	return out
}

// Loading reports whether a list load with an empty cache is in
// flight. Background refreshes over a warm cache never raise it.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// FollowingCount is the local, optimistically maintained count.
func (s *Store) FollowingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.following)
}

// IsFollowingLocal answers from the cached lists only; no backend
// call. Views derive their displayed state from this.
func (s *Store) IsFollowingLocal(targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.following {
		if u.ID == targetID {
			return true
		}
	}
	return false
}

// CheckFollowStatus reads ground truth from the backend. It never
// fails: anonymous users, missing profiles and backend errors all
// degrade to false.
func (s *Store) CheckFollowStatus(ctx context.Context, targetID string) bool {
	if s.userID == "" || targetID == "" {
		return false
	}

	me, err := s.gw.GetProfile(ctx, s.userID)
	if err != nil || me == nil {
		return false
	}
	return me.IsFollowing(targetID)
}

// UpdateListsOptimistically applies the shared list-surgery rule to
// this store's cached lists. It is the entry point both for this
// store's own mutations and for changes that originated in another
// session of the same user.
func (s *Store) UpdateListsOptimistically(targetID string, isFollowing bool, known *models.UserResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := ApplyFollowChange(ListState{Following: s.following, Suggested: s.suggested}, targetID, isFollowing, known)
	s.following = next.Following
	s.suggested = next.Suggested
}

// Follow makes the current user follow targetID. Local lists mutate
// before the backend call, the change is broadcast regardless of the
// backend outcome, and a failed write is surfaced as a toast without
// reverting the optimistic state. The return value reports backend
// success only.
func (s *Store) Follow(ctx context.Context, targetID string) bool {
	if s.userID == "" || targetID == "" || targetID == s.userID {
		return false
	}

	s.UpdateListsOptimistically(targetID, true, nil)

	err := s.gw.AppendFollowing(ctx, s.userID, targetID)

	// Broadcast even on failure so every session keeps showing the
	// optimistic state instead of flickering back.
	s.bus.EmitFollowChange(targetID, true)

	if err != nil {
		logger.L().Warn("follow failed",
			zap.String("user", s.userID), zap.String("target", targetID), zap.Error(err))
		s.toast.Show("Failed to follow user. Please try again.")
		return false
	}

	if s.sink != nil {
		_, err := s.sink.CreateNotification(ctx, &models.Notification{
			UserID:  targetID,
			ActorID: s.userID,
			Type:    models.NotificationFollow,
			Message: "started following you",
		})
		if err != nil {
			// Notification delivery must never affect the follow result.
			logger.L().Debug("follow notification dropped", zap.Error(err))
		}
	}

	return true
}

// Unfollow is symmetric to Follow: the target moves back to the front
// of the suggestion list with its cached profile info, the change is
// always broadcast, and backend failure toasts without reverting.
func (s *Store) Unfollow(ctx context.Context, targetID string) bool {
	if s.userID == "" || targetID == "" || targetID == s.userID {
		return false
	}

	s.UpdateListsOptimistically(targetID, false, nil)

	err := s.gw.RemoveFollowing(ctx, s.userID, targetID)

	s.bus.EmitFollowChange(targetID, false)

	if err != nil {
		logger.L().Warn("unfollow failed",
			zap.String("user", s.userID), zap.String("target", targetID), zap.Error(err))
		s.toast.Show("Failed to unfollow user. Please try again.")
		return false
	}

	return true
}

// LoadFollowingUsers re-fetches ground truth for the following list.
// This doubles as the reconciliation pass: any drift left behind by a
// failed optimistic write is corrected here.
func (s *Store) LoadFollowingUsers(ctx context.Context) {
	s.beginLoad(&s.following)
	defer s.endLoad()

	me, err := s.gw.GetProfile(ctx, s.userID)
	if err != nil || me == nil {
		return
	}

	users, err := s.gw.GetProfiles(ctx, me.FollowingIDs)
	if err != nil {
		return
	}

	s.replaceIfChanged(&s.following, toResponses(users))
}

func (s *Store) LoadFollowers(ctx context.Context) {
	s.beginLoad(&s.followers)
	defer s.endLoad()

	users, err := s.gw.UsersFollowing(ctx, s.userID)
	if err != nil {
		return
	}

	s.replaceIfChanged(&s.followers, toResponses(users))
}

// LoadSuggestedUsers rebuilds the suggestion pool: every profile
// except self and current followees, ranked by 2×recipeCount +
// followerCount descending. Ties keep the backend scan order, which
// is stable per backend but unspecified across backends.
func (s *Store) LoadSuggestedUsers(ctx context.Context, limit int) {
	if limit <= 0 {
		limit = DefaultSuggestedLimit
	}

	s.beginLoad(&s.suggested)
	defer s.endLoad()

	me, err := s.gw.GetProfile(ctx, s.userID)
	if err != nil || me == nil {
		return
	}

	all, err := s.gw.AllProfiles(ctx)
	if err != nil {
		return
	}

	candidates := make([]models.User, 0, len(all))
	for _, u := range all {
		if u.ID == s.userID || me.IsFollowing(u.ID) {
			continue
		}
		candidates = append(candidates, u)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return suggestionScore(&candidates[i]) > suggestionScore(&candidates[j])
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	s.replaceIfChanged(&s.suggested, toResponses(candidates))
}

func suggestionScore(u *models.User) int {
	return 2*u.RecipeCount + u.FollowerCount
}

// SearchForUsers matches the term case-insensitively against username
// and email. An empty term yields empty results, never the full user
// set.
func (s *Store) SearchForUsers(ctx context.Context, term string) []models.UserResponse {
	term = strings.TrimSpace(term)
	if term == "" {
		s.mu.Lock()
		s.results = []models.UserResponse{}
		s.mu.Unlock()
		return s.SearchResults()
	}

	users, err := s.gw.SearchProfiles(ctx, term)
	if err != nil {
		logger.L().Warn("user search failed", zap.Error(err))
		return s.SearchResults()
	}

	filtered := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID == s.userID {
			continue
		}
		filtered = append(filtered, u)
	}

	s.mu.Lock()
	s.results = toResponses(filtered)
	s.mu.Unlock()
	return s.SearchResults()
}

// beginLoad raises the loading flag only when the cache is empty, so
// background refreshes do not flash spinners.
func (s *Store) beginLoad(list *[]models.UserResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(*list) == 0 {
		s.loading = true
	}
}

func (s *Store) endLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

// replaceIfChanged skips the swap when the fetched list is
// structurally identical to the cache, avoiding re-render churn for
// observers.
func (s *Store) replaceIfChanged(list *[]models.UserResponse, fetched []models.UserResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if equalLists(*list, fetched) {
		return
	}
	*list = fetched
}

func equalLists(a, b []models.UserResponse) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toResponses(users []models.User) []models.UserResponse {
	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *users[i].ToResponse())
	}
	return out
}
