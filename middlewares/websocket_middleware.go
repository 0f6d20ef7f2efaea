package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/teampayal/cafe-pos/utils"
)

// WebSocketAuthMiddleware -> browser tidak bisa set header Authorization
// di handshake WS, jadi JWT staff dikirim lewat query ?token=
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("role", claims.Role)
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
