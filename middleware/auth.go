package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"yumigo/logger"
	"yumigo/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			utils.Unauthorized(c, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			logger.L().Debug("rejected token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			utils.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
