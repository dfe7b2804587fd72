package models

import "time"

type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Bio           string    `json:"bio"`
	Avatar        string    `json:"avatar"`
	Password      string    `json:"-"`
	FollowingIDs  []string  `json:"following_ids"`
	FollowerCount int       `json:"follower_count"`
	RecipeCount   int       `json:"recipe_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type UserResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio"`
	Avatar         string    `json:"avatar"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	RecipeCount    int       `json:"recipe_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Bio:            u.Bio,
		Avatar:         u.Avatar,
		FollowerCount:  u.FollowerCount,
		FollowingCount: len(u.FollowingIDs),
		RecipeCount:    u.RecipeCount,
		CreatedAt:      u.CreatedAt,
	}
}

// IsFollowing reports membership of targetID in the user's following
// set. FollowingIDs is the source of truth for the follow direction
// user -> target.
func (u *User) IsFollowing(targetID string) bool {
	for _, id := range u.FollowingIDs {
		if id == targetID {
			return true
		}
	}
	return false
}
