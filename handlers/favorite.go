package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"yumigo/database"
	"yumigo/favorites"
	"yumigo/logger"
	"yumigo/middleware"
	"yumigo/models"
	"yumigo/utils"
	"yumigo/websocket"
)

var (
	favMu       sync.Mutex
	favSessions = map[string]*favorites.Store{}
)

// favoriteSession lazily creates the per-user favorites store and
// hooks it onto the live push feed, so saves made through any server
// instance converge here.
func favoriteSession(userID string) *favorites.Store {
	favMu.Lock()
	defer favMu.Unlock()

	if store, ok := favSessions[userID]; ok {
		return store
	}

	toast := favorites.ToastFunc(func(message string) {
		websocket.HubInstance.SendToUser(userID, &websocket.Message{
			Event: websocket.EventToast,
			Data:  gin.H{"message": message},
		})
	})

	store := favorites.NewStore(userID, Gateway, toast)
	store.Load(context.Background())
	if err := store.Watch(context.Background()); err != nil {
		logger.L().Warn("favorites live feed unavailable",
			zap.String("user", userID), zap.Error(err))
	}

	favSessions[userID] = store
	return store
}

func SaveFavorite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	recipeID := c.Param("id")

	var exists bool
	err := database.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM recipes WHERE id = ?)", recipeID,
	).Scan(&exists)
	if err != nil || !exists {
		utils.NotFound(c, "recipe not found")
		return
	}

	store := favoriteSession(userID)
	if !store.Save(c.Request.Context(), recipeID) {
		utils.InternalError(c, "failed to save recipe")
		return
	}

	websocket.HubInstance.SendToUser(userID, &websocket.Message{
		Event: websocket.EventFavoriteChanged,
		Data:  gin.H{"recipe_id": recipeID, "saved": true},
	})

	utils.Success(c, gin.H{"saved": true})
}

func UnsaveFavorite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	recipeID := c.Param("id")

	store := favoriteSession(userID)
	if !store.Unsave(c.Request.Context(), recipeID) {
		utils.InternalError(c, "failed to remove saved recipe")
		return
	}

	websocket.HubInstance.SendToUser(userID, &websocket.Message{
		Event: websocket.EventFavoriteChanged,
		Data:  gin.H{"recipe_id": recipeID, "saved": false},
	})

	utils.Success(c, gin.H{"saved": false})
}

func ListFavorites(c *gin.Context) {
	userID := middleware.GetUserID(c)

	rows, err := database.DB.Query(`
		SELECT f.id, f.user_id, f.recipe_id, f.created_at,
			   `+recipeColumnsPrefixed+`
		FROM favorites f
		JOIN recipes r ON r.id = f.recipe_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	defer rows.Close()

	saved := []models.FavoriteWithRecipe{}
	for rows.Next() {
		var fav models.FavoriteWithRecipe
		var recipe models.Recipe
		var description, category, image sql.NullString
		var rawIngredients, rawSteps []byte
		if err := rows.Scan(
			&fav.ID, &fav.UserID, &fav.RecipeID, &fav.CreatedAt,
			&recipe.ID, &recipe.AuthorID, &recipe.Title, &description, &category, &image,
			&rawIngredients, &rawSteps, &recipe.LikeCount, &recipe.RatingSum, &recipe.RatingCount,
			&recipe.CreatedAt, &recipe.UpdatedAt,
		); err != nil {
			continue
		}
		recipe.Description = description.String
		recipe.Category = category.String
		recipe.Image = image.String
		json.Unmarshal(rawIngredients, &recipe.Ingredients)
		json.Unmarshal(rawSteps, &recipe.Steps)
		fav.Recipe = *recipe.ToResponse()
		saved = append(saved, fav)
	}

	utils.Success(c, saved)
}

const recipeColumnsPrefixed = "r.id, r.author_id, r.title, r.description, r.category, r.image, r.ingredients, r.steps, r.like_count, r.rating_sum, r.rating_count, r.created_at, r.updated_at"
