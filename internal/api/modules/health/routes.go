package health

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRoutes registers the routes for the health module
func RegisterRoutes(g *gin.RouterGroup, db *gorm.DB) {
	ctrl := &controller{db: db}

	g.GET("/health", ctrl.getStatus)
}
