package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"yumigo/logger"
	"yumigo/models"
	"yumigo/utils"
)

const (
	profileScanCacheKey = "yumigo:profiles:scan"
	profileScanCacheTTL = 30 * time.Second
)

// Store implements PersistenceGateway, NotificationSink and
// FavoriteGateway over MySQL, using Redis for the favorite push
// channel and the suggestion-pool scan cache. Redis may be nil, in
// which case push and caching are disabled.
type Store struct {
	db  *sql.DB
	rdb *redis.Client
}

func NewStore(db *sql.DB, rdb *redis.Client) *Store {
	return &Store{db: db, rdb: rdb}
}

const profileColumns = "id, username, email, bio, avatar, following_ids, follower_count, recipe_count, created_at, updated_at"

func scanProfile(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	var bio, avatar sql.NullString
	var rawFollowing []byte

	err := row.Scan(&u.ID, &u.Username, &u.Email, &bio, &avatar,
		&rawFollowing, &u.FollowerCount, &u.RecipeCount, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	u.Bio = bio.String
	u.Avatar = avatar.String
	if len(rawFollowing) > 0 {
		if err := json.Unmarshal(rawFollowing, &u.FollowingIDs); err != nil {
			return nil, err
		}
	}
	if u.FollowingIDs == nil {
		u.FollowingIDs = []string{}
	}
	return &u, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM users WHERE id = ?", userID)

	u, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, translateErr(err)
	}
	return u, nil
}

func (s *Store) GetProfiles(ctx context.Context, userIDs []string) ([]models.User, error) {
	users := make([]models.User, 0, len(userIDs))
	for _, id := range userIDs {
		u, err := s.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) error {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	if patch.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *patch.Username)
	}
	if patch.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *patch.Bio)
	}
	if patch.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *patch.Avatar)
	}

	args = append(args, userID)
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return translateErr(err)
}

func (s *Store) AppendFollowing(ctx context.Context, userID, targetID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translateErr(err)
	}

	var rawFollowing []byte
	err = tx.QueryRowContext(ctx,
		"SELECT following_ids FROM users WHERE id = ? FOR UPDATE", userID,
	).Scan(&rawFollowing)
	if err != nil {
		tx.Rollback()
		return translateErr(err)
	}

	var following []string
	if len(rawFollowing) > 0 {
		if err := json.Unmarshal(rawFollowing, &following); err != nil {
			tx.Rollback()
			return err
		}
	}

	// Membership check before append keeps the operation idempotent:
	// no duplicate entry, no double-counted follower.
	for _, id := range following {
		if id == targetID {
			tx.Rollback()
			return nil
		}
	}

	following = append(following, targetID)
	encoded, err := json.Marshal(following)
	if err != nil {
		tx.Rollback()
		return err
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET following_ids = ?, updated_at = ? WHERE id = ?",
		encoded, now, userID); err != nil {
		tx.Rollback()
		return translateErr(err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET follower_count = follower_count + 1, updated_at = ? WHERE id = ?",
		now, targetID); err != nil {
		tx.Rollback()
		return translateErr(err)
	}

	return translateErr(tx.Commit())
}

func (s *Store) RemoveFollowing(ctx context.Context, userID, targetID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translateErr(err)
	}

	var rawFollowing []byte
	err = tx.QueryRowContext(ctx,
		"SELECT following_ids FROM users WHERE id = ? FOR UPDATE", userID,
	).Scan(&rawFollowing)
	if err != nil {
		tx.Rollback()
		return translateErr(err)
	}

	var following []string
	if len(rawFollowing) > 0 {
		if err := json.Unmarshal(rawFollowing, &following); err != nil {
			tx.Rollback()
			return err
		}
	}

	kept := following[:0]
	found := false
	for _, id := range following {
		if id == targetID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		tx.Rollback()
		return nil
	}

	encoded, err := json.Marshal(kept)
	if err != nil {
		tx.Rollback()
		return err
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET following_ids = ?, updated_at = ? WHERE id = ?",
		encoded, now, userID); err != nil {
		tx.Rollback()
		return translateErr(err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET follower_count = GREATEST(follower_count - 1, 0), updated_at = ? WHERE id = ?",
		now, targetID); err != nil {
		tx.Rollback()
		return translateErr(err)
	}

	return translateErr(tx.Commit())
}

func (s *Store) UsersFollowing(ctx context.Context, targetID string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM users WHERE JSON_CONTAINS(following_ids, JSON_QUOTE(?))",
		targetID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func (s *Store) AllProfiles(ctx context.Context) ([]models.User, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, profileScanCacheKey).Bytes()
		if err == nil {
			var users []models.User
			if json.Unmarshal(cached, &users) == nil {
				return users, nil
			}
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	users, err := collectProfiles(rows)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if encoded, err := json.Marshal(users); err == nil {
			s.rdb.Set(ctx, profileScanCacheKey, encoded, profileScanCacheTTL)
		}
	}
	return users, nil
}

func (s *Store) SearchProfiles(ctx context.Context, term string) ([]models.User, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM users WHERE LOWER(username) LIKE ? OR LOWER(email) LIKE ? LIMIT 20",
		pattern, pattern)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func collectProfiles(rows *sql.Rows) ([]models.User, error) {
	users := []models.User{}
	for rows.Next() {
		u, err := scanProfile(rows)
		if err != nil {
			continue
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) (string, error) {
	if n.ID == "" {
		n.ID = utils.GenerateUUID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	var recipeID interface{}
	if n.RecipeID != "" {
		recipeID = n.RecipeID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, actor_id, type, recipe_id, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, n.ID, n.UserID, n.ActorID, n.Type, recipeID, n.Message, n.CreatedAt)
	if err != nil {
		return "", translateErr(err)
	}
	return n.ID, nil
}

func favoriteChannel(userID string) string {
	return "yumigo:favorites:" + userID
}

func (s *Store) publishFavorite(ctx context.Context, event FavoriteEvent) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, favoriteChannel(event.UserID), payload).Err(); err != nil {
		logger.L().Warn("favorite publish failed", zap.Error(err))
	}
}

func (s *Store) SaveFavorite(ctx context.Context, userID, recipeID string) (*models.Favorite, error) {
	fav := &models.Favorite{
		ID:        utils.GenerateUUID(),
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now(),
	}

	// Duplicate saves keep the original row.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (id, user_id, recipe_id, created_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id
	`, fav.ID, fav.UserID, fav.RecipeID, fav.CreatedAt)
	if err != nil {
		return nil, translateErr(err)
	}

	s.publishFavorite(ctx, FavoriteEvent{UserID: userID, RecipeID: recipeID, Saved: true})
	return fav, nil
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, recipeID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user_id = ? AND recipe_id = ?", userID, recipeID)
	if err != nil {
		return translateErr(err)
	}

	s.publishFavorite(ctx, FavoriteEvent{UserID: userID, RecipeID: recipeID, Saved: false})
	return nil
}

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, recipe_id, created_at FROM favorites WHERE user_id = ? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.RecipeID, &f.CreatedAt); err != nil {
			continue
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (s *Store) WatchFavorites(ctx context.Context, userID string) (<-chan FavoriteEvent, func(), error) {
	if s.rdb == nil {
		return nil, nil, redis.ErrClosed
	}

	pubsub := s.rdb.Subscribe(ctx, favoriteChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	events := make(chan FavoriteEvent, 16)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event FavoriteEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { pubsub.Close() }
	return events, stop, nil
}

// translateErr maps driver-level access errors onto the gateway's
// permission sentinel so callers can tell rule rejections apart from
// transient failures.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if mysqlErr, ok := err.(*mysql.MySQLError); ok {
		switch mysqlErr.Number {
		case 1044, 1045, 1142, 1143:
			return ErrPermissionDenied
		}
	}
	return err
}
