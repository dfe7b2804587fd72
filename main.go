package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"yumigo/config"
	"yumigo/database"
	"yumigo/followgraph"
	"yumigo/gateway"
	"yumigo/handlers"
	"yumigo/logger"
	"yumigo/middleware"
	"yumigo/models"
	"yumigo/websocket"
)

func main() {
	config.Load()
	logger.Init()
	defer logger.Close()

	if err := database.Connect(); err != nil {
		logger.L().Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.CreateTables(); err != nil {
		logger.L().Fatal("failed to create tables", zap.Error(err))
	}

	if err := database.ConnectRedis(); err != nil {
		// Favorites push and the profile scan cache degrade gracefully.
		logger.L().Warn("redis unavailable, live favorites disabled", zap.Error(err))
		database.Redis = nil
	}
	defer database.CloseRedis()

	websocket.InitHub()

	store := gateway.NewStore(database.DB, database.Redis)

	notifier := &gateway.LiveNotifier{
		Sink: store,
		Push: func(userID string, n *models.Notification) {
			websocket.HubInstance.SendToUser(userID, &websocket.Message{
				Event: websocket.EventNotification,
				Data:  n,
			})
		},
	}

	registry := followgraph.NewRegistry(store, notifier)
	registry.OnFollowChange = func(ownerID, targetID string, isFollowing bool) {
		websocket.HubInstance.SendToUser(ownerID, &websocket.Message{
			Event: websocket.EventFollowChanged,
			Data:  gin.H{"user_id": targetID, "is_following": isFollowing},
		})
	}
	registry.Toast = func(ownerID, message string) {
		websocket.HubInstance.SendToUser(ownerID, &websocket.Message{
			Event: websocket.EventToast,
			Data:  gin.H{"message": message},
		})
	}

	handlers.Init(store, registry, notifier)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	auth.Use(middleware.RateLimitMiddleware(rate.Limit(5), 10))
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
		auth.POST("/refresh", middleware.AuthMiddleware(), handlers.RefreshToken)
	}

	users := r.Group("/api/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", handlers.GetCurrentUser)
		users.PUT("/me", handlers.UpdateCurrentUser)
		users.DELETE("/me", handlers.DeleteAccount)
		users.GET("/search", handlers.SearchUsers)
		users.GET("/suggested", handlers.GetSuggestedUsers)
		users.GET("/following", handlers.GetFollowing)
		users.GET("/followers", handlers.GetFollowers)
		users.GET("/:id", handlers.GetUser)
		users.GET("/:id/follow", handlers.GetFollowStatus)
		users.POST("/:id/follow", handlers.FollowUser)
		users.DELETE("/:id/follow", handlers.UnfollowUser)
	}

	recipes := r.Group("/api/recipes")
	recipes.Use(middleware.AuthMiddleware())
	{
		recipes.GET("", handlers.ListRecipes)
		recipes.POST("", handlers.CreateRecipe)
		recipes.GET("/:id", handlers.GetRecipe)
		recipes.PUT("/:id", handlers.UpdateRecipe)
		recipes.DELETE("/:id", handlers.DeleteRecipe)

		recipes.POST("/:id/like", handlers.LikeRecipe)
		recipes.DELETE("/:id/like", handlers.UnlikeRecipe)
		recipes.POST("/:id/rating", handlers.RateRecipe)

		recipes.GET("/:id/comments", handlers.GetComments)
		recipes.POST("/:id/comments", handlers.AddComment)
		recipes.DELETE("/:id/comments/:comment_id", handlers.DeleteComment)

		recipes.POST("/:id/save", handlers.SaveFavorite)
		recipes.DELETE("/:id/save", handlers.UnsaveFavorite)
	}

	favoritesGroup := r.Group("/api/favorites")
	favoritesGroup.Use(middleware.AuthMiddleware())
	{
		favoritesGroup.GET("", handlers.ListFavorites)
	}

	notifications := r.Group("/api/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", handlers.GetNotifications)
		notifications.GET("/unread", handlers.GetUnreadCount)
		notifications.PUT("/read", handlers.MarkAllNotificationsRead)
		notifications.PUT("/:id/read", handlers.MarkNotificationRead)
	}

	r.GET("/ws", websocket.HandleWebSocket)

	logger.L().Info("server starting", zap.String("addr", config.Cfg.ServerAddr))
	if err := r.Run(config.Cfg.ServerAddr); err != nil {
		logger.L().Fatal("failed to start server", zap.Error(err))
	}
}
