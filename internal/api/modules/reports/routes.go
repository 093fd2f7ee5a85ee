package reports

import (
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/gin-gonic/gin"
)

// Register routes for the reports module
func RegisterRoutes(g *gin.RouterGroup, l *ledger.Ledger) {
	ctrl := &controller{ledger: l}

	group := g.Group("/reports")
	group.GET("/profit", ctrl.profit)                // Accumulated profit per item
	group.GET("/category-value", ctrl.categoryValue) // Inventory value per category
	group.GET("/monthly-profit", ctrl.monthlyProfit) // Realised sale margin per month
}
