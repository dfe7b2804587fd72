package handlers

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"yumigo/database"
	"yumigo/logger"
	"yumigo/middleware"
	"yumigo/models"
	"yumigo/utils"
)

type CreateRecipeRequest struct {
	Title       string   `json:"title" binding:"required,max=100"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Ingredients []string `json:"ingredients" binding:"required,min=1"`
	Steps       []string `json:"steps" binding:"required,min=1"`
}

type UpdateRecipeRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

type RateRecipeRequest struct {
	Score int `json:"score" binding:"required,min=1,max=5"`
}

type CommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

const recipeColumns = "id, author_id, title, description, category, image, ingredients, steps, like_count, rating_sum, rating_count, created_at, updated_at"

func scanRecipe(row interface{ Scan(...interface{}) error }) (*models.Recipe, error) {
	var r models.Recipe
	var description, category, image sql.NullString
	var rawIngredients, rawSteps []byte

	err := row.Scan(&r.ID, &r.AuthorID, &r.Title, &description, &category, &image,
		&rawIngredients, &rawSteps, &r.LikeCount, &r.RatingSum, &r.RatingCount,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	r.Description = description.String
	r.Category = category.String
	r.Image = image.String
	if err := json.Unmarshal(rawIngredients, &r.Ingredients); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawSteps, &r.Steps); err != nil {
		return nil, err
	}
	return &r, nil
}

func CreateRecipe(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	ingredients, err := json.Marshal(req.Ingredients)
	if err != nil {
		utils.BadRequest(c, "invalid ingredients")
		return
	}
	steps, err := json.Marshal(req.Steps)
	if err != nil {
		utils.BadRequest(c, "invalid steps")
		return
	}

	id := utils.GenerateUUID()
	now := time.Now()

	tx, err := database.DB.Begin()
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	_, err = tx.Exec(`
		INSERT INTO recipes (id, author_id, title, description, category, image, ingredients, steps, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, userID, req.Title, req.Description, req.Category, req.Image, ingredients, steps, now, now)
	if err != nil {
		tx.Rollback()
		utils.InternalError(c, "failed to create recipe")
		return
	}

	_, err = tx.Exec(
		"UPDATE users SET recipe_count = recipe_count + 1, updated_at = ? WHERE id = ?",
		now, userID,
	)
	if err != nil {
		tx.Rollback()
		utils.InternalError(c, "failed to update recipe count")
		return
	}

	if err := tx.Commit(); err != nil {
		utils.InternalError(c, "failed to commit transaction")
		return
	}

	// recipe_count changed; open sessions re-fetch their data.
	Registry.For(userID).Bus().Emit()

	GetRecipeByID(c, id)
}

func GetRecipe(c *gin.Context) {
	GetRecipeByID(c, c.Param("id"))
}

func GetRecipeByID(c *gin.Context, recipeID string) {
	userID := middleware.GetUserID(c)

	row := database.DB.QueryRow(
		"SELECT "+recipeColumns+" FROM recipes WHERE id = ?", recipeID)

	recipe, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		utils.NotFound(c, "recipe not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	resp := recipe.ToResponse()

	if author, err := Gateway.GetProfile(c.Request.Context(), recipe.AuthorID); err == nil && author != nil {
		resp.Author = author.ToResponse()
	}

	database.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM recipe_likes WHERE user_id = ? AND recipe_id = ?)",
		userID, recipeID,
	).Scan(&resp.Liked)
	database.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND recipe_id = ?)",
		userID, recipeID,
	).Scan(&resp.Saved)

	utils.Success(c, resp)
}

func ListRecipes(c *gin.Context) {
	query := "SELECT " + recipeColumns + " FROM recipes"
	var conditions []string
	var args []interface{}

	if authorID := c.Query("author_id"); authorID != "" {
		conditions = append(conditions, "author_id = ?")
		args = append(args, authorID)
	}
	if category := c.Query("category"); category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, category)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	limit := 20
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 && parsed <= 100 {
		limit = parsed
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	defer rows.Close()

	recipes := []models.RecipeResponse{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			continue
		}
		recipes = append(recipes, *recipe.ToResponse())
	}

	utils.Success(c, recipes)
}

func UpdateRecipe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	recipeID := c.Param("id")

	if !isRecipeOwner(c, recipeID, userID) {
		return
	}

	var req UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	if req.Title != "" {
		sets = append(sets, "title = ?")
		args = append(args, req.Title)
	}
	if req.Description != "" {
		sets = append(sets, "description = ?")
		args = append(args, req.Description)
	}
	if req.Category != "" {
		sets = append(sets, "category = ?")
		args = append(args, req.Category)
	}
	if req.Image != "" {
		sets = append(sets, "image = ?")
		args = append(args, req.Image)
	}
	if req.Ingredients != nil {
		encoded, err := json.Marshal(req.Ingredients)
		if err != nil {
			utils.BadRequest(c, "invalid ingredients")
			return
		}
		sets = append(sets, "ingredients = ?")
		args = append(args, encoded)
	}
	if req.Steps != nil {
		encoded, err := json.Marshal(req.Steps)
		if err != nil {
			utils.BadRequest(c, "invalid steps")
			return
		}
		sets = append(sets, "steps = ?")
		args = append(args, encoded)
	}

	setClause := sets[0]
	for _, s := range sets[1:] {
		setClause += ", " + s
	}
	args = append(args, recipeID)

	if _, err := database.DB.Exec("UPDATE recipes SET "+setClause+" WHERE id = ?", args...); err != nil {
		utils.InternalError(c, "failed to update recipe")
		return
	}

	GetRecipeByID(c, recipeID)
}

func DeleteRecipe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	recipeID := c.Param("id")

	if !isRecipeOwner(c, recipeID, userID) {
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	if _, err := tx.Exec("DELETE FROM recipes WHERE id = ?", recipeID); err != nil {
		tx.Rollback()
		utils.InternalError(c, "failed to delete recipe")
		return
	}
	if _, err := tx.Exec(
		"UPDATE users SET recipe_count = GREATEST(recipe_count - 1, 0), updated_at = ? WHERE id = ?",
		time.Now(), userID,
	); err != nil {
		tx.Rollback()
		utils.InternalError(c, "failed to update recipe count")
		return
	}

	if err := tx.Commit(); err != nil {
		utils.InternalError(c, "failed to commit transaction")
		return
	}

	Registry.For(userID).Bus().Emit()

	utils.Success(c, nil)
}

func isRecipeOwner(c *gin.Context, recipeID, userID string) bool {
	var authorID string
	err := database.DB.QueryRow("SELECT author_id FROM recipes WHERE id = ?", recipeID).Scan(&authorID)
	if err == sql.ErrNoRows {
		utils.NotFound(c, "recipe not found")
		return false
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return false
	}
	if authorID != userID {
		utils.Forbidden(c, "not the recipe owner")
		return false
	}
	return true
}

func LikeRecipe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	recipeID := c.Param("id")

	var authorID string
	err := database.DB.QueryRow("SELECT author_id FROM recipes WHERE id = ?", recipeID).Scan(&authorID)
	if err == sql.ErrNoRows {
		utils.NotFound(c, "recipe not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	result, err := database.DB.Exec(`
		INSERT IGNORE INTO recipe_likes (id, user_id, recipe_id, created_at)
		VALUES (?, ?, ?, ?)
	`, utils.GenerateUUID(), userID, recipeID, time.Now())
	if err != nil {
		utils.InternalError(c, "failed to like recipe")
		return
	}

	inserted, _ := result.RowsAffected()
	if inserted > 0 {
		database.DB.Exec("UPDATE recipes SET like_count = like_count + 1 WHERE id = ?", recipeID)

		if authorID != userID {
			notifyQuietly(c, &models.Notification{
				UserID:   authorID,
				ActorID:  userID,
				Type:     models.NotificationLike,
				RecipeID: recipeID,
				Message:  "liked your recipe",
			})
		}
	}

	utils.Success(c, gin.H{"liked": true})
}

func UnlikeRecipe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	recipeID := c.Param("id")

	result, err := database.DB.Exec(
		"DELETE FROM recipe_likes WHERE user_id = ? AND recipe_id = ?", userID, recipeID)
	if err != nil {
		utils.InternalError(c, "failed to unlike recipe")
		return
	}

	if deleted, _ := result.RowsAffected(); deleted > 0 {
		database.DB.Exec(
			"UPDATE recipes SET like_count = GREATEST(like_count - 1, 0) WHERE id = ?", recipeID)
	}

	utils.Success(c, gin.H{"liked": false})
}

// RateRecipe upserts the caller's rating: one rating per user per
// recipe, with the denormalized sum and count adjusted by the delta.
func RateRecipe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	recipeID := c.Param("id")

	var req RateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var authorID string
	err := database.DB.QueryRow("SELECT author_id FROM recipes WHERE id = ?", recipeID).Scan(&authorID)
	if err == sql.ErrNoRows {
		utils.NotFound(c, "recipe not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	now := time.Now()
	var previous int
	err = tx.QueryRow(
		"SELECT score FROM ratings WHERE user_id = ? AND recipe_id = ? FOR UPDATE",
		userID, recipeID,
	).Scan(&previous)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`
			INSERT INTO ratings (id, user_id, recipe_id, score, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, utils.GenerateUUID(), userID, recipeID, req.Score, now, now)
		if err == nil {
			_, err = tx.Exec(
				"UPDATE recipes SET rating_sum = rating_sum + ?, rating_count = rating_count + 1 WHERE id = ?",
				req.Score, recipeID)
		}
	case err == nil:
		_, err = tx.Exec(
			"UPDATE ratings SET score = ?, updated_at = ? WHERE user_id = ? AND recipe_id = ?",
			req.Score, now, userID, recipeID)
		if err == nil {
			_, err = tx.Exec(
				"UPDATE recipes SET rating_sum = rating_sum + ? WHERE id = ?",
				req.Score-previous, recipeID)
		}
	default:
		tx.Rollback()
		utils.InternalError(c, "database error")
		return
	}

	if err != nil {
		tx.Rollback()
		utils.InternalError(c, "failed to rate recipe")
		return
	}
	if err := tx.Commit(); err != nil {
		utils.InternalError(c, "failed to commit transaction")
		return
	}

	if authorID != userID {
		notifyQuietly(c, &models.Notification{
			UserID:   authorID,
			ActorID:  userID,
			Type:     models.NotificationRating,
			RecipeID: recipeID,
			Message:  "rated your recipe",
		})
	}

	utils.Success(c, gin.H{"score": req.Score})
}

func AddComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	recipeID := c.Param("id")

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var authorID string
	err := database.DB.QueryRow("SELECT author_id FROM recipes WHERE id = ?", recipeID).Scan(&authorID)
	if err == sql.ErrNoRows {
		utils.NotFound(c, "recipe not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	comment := models.Comment{
		ID:        utils.GenerateUUID(),
		RecipeID:  recipeID,
		UserID:    userID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	_, err = database.DB.Exec(`
		INSERT INTO comments (id, recipe_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, comment.ID, comment.RecipeID, comment.UserID, comment.Content, comment.CreatedAt)
	if err != nil {
		utils.InternalError(c, "failed to add comment")
		return
	}

	if authorID != userID {
		notifyQuietly(c, &models.Notification{
			UserID:   authorID,
			ActorID:  userID,
			Type:     models.NotificationComment,
			RecipeID: recipeID,
			Message:  "commented on your recipe",
		})
	}

	utils.Success(c, comment)
}

func GetComments(c *gin.Context) {
	recipeID := c.Param("id")

	rows, err := database.DB.Query(`
		SELECT cm.id, cm.recipe_id, cm.user_id, cm.content, cm.created_at,
			   u.id, u.username, u.bio, u.avatar, u.follower_count, u.recipe_count, u.created_at
		FROM comments cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.recipe_id = ?
		ORDER BY cm.created_at DESC
	`, recipeID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	defer rows.Close()

	comments := []models.CommentWithUser{}
	for rows.Next() {
		var cm models.CommentWithUser
		var bio, avatar sql.NullString
		if err := rows.Scan(
			&cm.ID, &cm.RecipeID, &cm.UserID, &cm.Content, &cm.CreatedAt,
			&cm.User.ID, &cm.User.Username, &bio, &avatar,
			&cm.User.FollowerCount, &cm.User.RecipeCount, &cm.User.CreatedAt,
		); err != nil {
			continue
		}
		cm.User.Bio = bio.String
		cm.User.Avatar = avatar.String
		comments = append(comments, cm)
	}

	utils.Success(c, comments)
}

func DeleteComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	commentID := c.Param("comment_id")

	result, err := database.DB.Exec(
		"DELETE FROM comments WHERE id = ? AND user_id = ?", commentID, userID)
	if err != nil {
		utils.InternalError(c, "failed to delete comment")
		return
	}
	if deleted, _ := result.RowsAffected(); deleted == 0 {
		utils.NotFound(c, "comment not found")
		return
	}

	utils.Success(c, nil)
}

// notifyQuietly creates a notification without letting a failure reach
// the caller; delivery is best effort everywhere.
func notifyQuietly(c *gin.Context, n *models.Notification) {
	if Notifier == nil {
		return
	}
	if _, err := Notifier.CreateNotification(c.Request.Context(), n); err != nil {
		logger.L().Debug("notification dropped", zap.Error(err))
	}
}
