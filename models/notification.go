package models

import "time"

const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationRating  = "rating"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ActorID   string    `json:"actor_id"`
	Type      string    `json:"type"` // follow, like, comment, rating
	RecipeID  string    `json:"recipe_id,omitempty"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationWithActor struct {
	Notification
	Actor UserResponse `json:"actor"`
}
