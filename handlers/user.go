package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"yumigo/gateway"
	"yumigo/middleware"
	"yumigo/utils"
	"yumigo/websocket"
)

type UpdateUserRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

func GetCurrentUser(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := Gateway.GetProfile(c.Request.Context(), userID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	if user == nil {
		utils.NotFound(c, "user not found")
		return
	}

	utils.Success(c, user.ToResponse())
}

func GetUser(c *gin.Context) {
	userID := middleware.GetUserID(c)
	targetID := c.Param("id")

	user, err := Gateway.GetProfile(c.Request.Context(), targetID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	if user == nil {
		utils.NotFound(c, "user not found")
		return
	}

	store := Registry.For(userID)
	utils.Success(c, gin.H{
		"user":         user.ToResponse(),
		"is_following": store.CheckFollowStatus(c.Request.Context(), targetID),
		"is_self":      userID == targetID,
		"is_online":    websocket.HubInstance.IsOnline(targetID),
	})
}

// UpdateCurrentUser merges the provided fields only; display metadata
// is mutable by the owning user alone.
func UpdateCurrentUser(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	patch := gateway.ProfilePatch{
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	}
	if err := Gateway.UpdateProfile(c.Request.Context(), userID, patch); err != nil {
		utils.InternalError(c, "failed to update user")
		return
	}

	// Settings changes ripple to every open session of this user.
	Registry.For(userID).Bus().Emit()

	GetCurrentUser(c)
}

func SearchUsers(c *gin.Context) {
	userID := middleware.GetUserID(c)

	store := Registry.For(userID)
	results := store.SearchForUsers(c.Request.Context(), c.Query("q"))

	utils.Success(c, results)
}

func GetSuggestedUsers(c *gin.Context) {
	userID := middleware.GetUserID(c)

	limit, _ := strconv.Atoi(c.Query("limit"))

	store := Registry.For(userID)
	store.LoadSuggestedUsers(c.Request.Context(), limit)

	utils.Success(c, store.Suggested())
}
