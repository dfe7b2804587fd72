package handlers

import (
	"github.com/gin-gonic/gin"
	"yumigo/middleware"
	"yumigo/utils"
)

func FollowUser(c *gin.Context) {
	userID := middleware.GetUserID(c)
	targetID := c.Param("id")

	if targetID == userID {
		utils.BadRequest(c, "cannot follow yourself")
		return
	}

	target, err := Gateway.GetProfile(c.Request.Context(), targetID)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	if target == nil {
		utils.NotFound(c, "user not found")
		return
	}

	store := Registry.For(userID)
	known := target.ToResponse()
	store.UpdateListsOptimistically(targetID, true, known)

	if !store.Follow(c.Request.Context(), targetID) {
		// The store already toasted and kept the optimistic state; the
		// API reply still reports the backend truth.
		utils.InternalError(c, "failed to follow user")
		return
	}

	utils.Success(c, gin.H{"following": true, "user": known})
}

func UnfollowUser(c *gin.Context) {
	userID := middleware.GetUserID(c)
	targetID := c.Param("id")

	if targetID == userID {
		utils.BadRequest(c, "cannot unfollow yourself")
		return
	}

	store := Registry.For(userID)
	if !store.Unfollow(c.Request.Context(), targetID) {
		utils.InternalError(c, "failed to unfollow user")
		return
	}

	utils.Success(c, gin.H{"following": false})
}

func GetFollowing(c *gin.Context) {
	userID := middleware.GetUserID(c)

	store := Registry.For(userID)
	store.LoadFollowingUsers(c.Request.Context())

	utils.Success(c, store.Following())
}

func GetFollowers(c *gin.Context) {
	userID := middleware.GetUserID(c)

	store := Registry.For(userID)
	store.LoadFollowers(c.Request.Context())

	utils.Success(c, store.Followers())
}

func GetFollowStatus(c *gin.Context) {
	userID := middleware.GetUserID(c)
	targetID := c.Param("id")

	store := Registry.For(userID)
	utils.Success(c, gin.H{
		"following": store.CheckFollowStatus(c.Request.Context(), targetID),
	})
}
