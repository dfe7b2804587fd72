// Package gateway defines the narrow persistence surface the social
// core depends on. The follow-graph and favorites stores only ever see
// these interfaces; the MySQL/Redis implementation lives alongside so
// handlers can share it.
package gateway

import (
	"context"
	"errors"

	"yumigo/models"
)

// ErrPermissionDenied marks backend rejections caused by access rules
// rather than transient failures. Callers surface it differently.
var ErrPermissionDenied = errors.New("permission denied")

// ProfilePatch is a partial field merge; nil fields are left untouched.
type ProfilePatch struct {
	Username *string
	Bio      *string
	Avatar   *string
}

type PersistenceGateway interface {
	// GetProfile returns nil, nil when the user does not exist.
	GetProfile(ctx context.Context, userID string) (*models.User, error)

	// GetProfiles resolves a batch of ids, preserving input order and
	// skipping ids that no longer resolve.
	GetProfiles(ctx context.Context, userIDs []string) ([]models.User, error)

	UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) error

	// AppendFollowing adds targetID to userID's following set and bumps
	// the target's follower count. Idempotent: appending an existing
	// member changes nothing, including the counter.
	AppendFollowing(ctx context.Context, userID, targetID string) error

	// RemoveFollowing is the inverse of AppendFollowing, equally
	// idempotent. The follower count never goes below zero.
	RemoveFollowing(ctx context.Context, userID, targetID string) error

	// UsersFollowing returns the users whose following set contains
	// targetID, i.e. the followers of targetID.
	UsersFollowing(ctx context.Context, targetID string) ([]models.User, error)

	// AllProfiles is the suggestion-pool scan. Order is whatever the
	// backend yields, but stable across identical calls.
	AllProfiles(ctx context.Context) ([]models.User, error)

	// SearchProfiles does a case-insensitive substring match on
	// username and email.
	SearchProfiles(ctx context.Context, term string) ([]models.User, error)
}

type NotificationSink interface {
	// CreateNotification is fire-and-forget from the caller's point of
	// view: every caller in the core swallows its error.
	CreateNotification(ctx context.Context, n *models.Notification) (string, error)
}

// FavoriteEvent is one change on a user's saved-recipe set, delivered
// over the push channel.
type FavoriteEvent struct {
	UserID   string `json:"user_id"`
	RecipeID string `json:"recipe_id"`
	Saved    bool   `json:"saved"`
}

type FavoriteGateway interface {
	SaveFavorite(ctx context.Context, userID, recipeID string) (*models.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, recipeID string) error
	ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error)

	// WatchFavorites streams favorite changes for one user until the
	// returned stop function is called or the context ends.
	WatchFavorites(ctx context.Context, userID string) (<-chan FavoriteEvent, func(), error)
}
