package handlers

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"yumigo/database"
	"yumigo/middleware"
	"yumigo/models"
	"yumigo/utils"
)

func GetNotifications(c *gin.Context) {
	userID := middleware.GetUserID(c)

	rows, err := database.DB.Query(`
		SELECT n.id, n.user_id, n.actor_id, n.type, n.recipe_id, n.message, n.is_read, n.created_at,
			   u.id, u.username, u.bio, u.avatar, u.follower_count, u.recipe_count, u.created_at
		FROM notifications n
		JOIN users u ON u.id = n.actor_id
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC
		LIMIT 50
	`, userID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	defer rows.Close()

	notifications := []models.NotificationWithActor{}
	for rows.Next() {
		var n models.NotificationWithActor
		var recipeID, bio, avatar sql.NullString
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.ActorID, &n.Type, &recipeID, &n.Message, &n.IsRead, &n.CreatedAt,
			&n.Actor.ID, &n.Actor.Username, &bio, &avatar,
			&n.Actor.FollowerCount, &n.Actor.RecipeCount, &n.Actor.CreatedAt,
		); err != nil {
			continue
		}
		n.RecipeID = recipeID.String
		n.Actor.Bio = bio.String
		n.Actor.Avatar = avatar.String
		notifications = append(notifications, n)
	}

	utils.Success(c, notifications)
}

func GetUnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var count int
	err := database.DB.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0", userID,
	).Scan(&count)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	utils.Success(c, gin.H{"unread": count})
}

func MarkNotificationRead(c *gin.Context) {
	userID := middleware.GetUserID(c)
	notificationID := c.Param("id")

	result, err := database.DB.Exec(
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?",
		notificationID, userID)
	if err != nil {
		utils.InternalError(c, "failed to mark notification read")
		return
	}
	if updated, _ := result.RowsAffected(); updated == 0 {
		utils.NotFound(c, "notification not found")
		return
	}

	utils.Success(c, nil)
}

func MarkAllNotificationsRead(c *gin.Context) {
	userID := middleware.GetUserID(c)

	_, err := database.DB.Exec(
		"UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0", userID)
	if err != nil {
		utils.InternalError(c, "failed to mark notifications read")
		return
	}

	utils.Success(c, nil)
}
