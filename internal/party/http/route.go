package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	RegisterValidators()

	group := g.Group("/parties")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/all", h.All)
		group.GET("/export", h.Export)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PUT("/:id", h.Update)
		group.DELETE("/range", h.DeleteRange)
		group.DELETE("/all", h.DeleteAll)
		group.DELETE("/:id", h.Delete)
	}
}
