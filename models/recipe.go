package models

import "time"

type Recipe struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
	LikeCount   int       `json:"like_count"`
	RatingSum   int       `json:"rating_sum"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RecipeResponse struct {
	Recipe
	AverageRating float64       `json:"average_rating"`
	Author        *UserResponse `json:"author,omitempty"`
	Liked         bool          `json:"liked"`
	Saved         bool          `json:"saved"`
}

func (r *Recipe) ToResponse() *RecipeResponse {
	resp := &RecipeResponse{Recipe: *r}
	if r.RatingCount > 0 {
		resp.AverageRating = float64(r.RatingSum) / float64(r.RatingCount)
	}
	return resp
}
