package models

import "time"

// Favorite is one saved recipe for one user. Records are created on
// save and deleted on unsave, never updated.
type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RecipeID  string    `json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}

type FavoriteWithRecipe struct {
	Favorite
	Recipe RecipeResponse `json:"recipe"`
}
