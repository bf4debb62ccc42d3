package http

import (
	"github.com/gin-gonic/gin"

	"github.com/skyon-community/skyon-backend/internal/auth/middleware"
)

// Register mounts the identity routes. The group must already run middleware.Authenticate.
func (h *Handler) Register(rg *gin.RouterGroup) {
	me := rg.Group("/me", middleware.RequireUser())
	me.GET("", h.GetMe)
	me.PUT("/profile", h.SaveProfile)
	me.GET("/stream", h.StreamIdentity)

	authGroup := rg.Group("/auth", middleware.RequireUser())
	authGroup.POST("/sync", h.SyncUser)
	authGroup.POST("/signout", h.SignOut)
}
