package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the session routes under /auth.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, authMiddleware, optionalAuth, loginLimiter gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/login", loginLimiter, h.Login)
		authGroup.POST("/logout", optionalAuth, h.Logout)
		authGroup.GET("/me", authMiddleware, h.Me)
	}
}
