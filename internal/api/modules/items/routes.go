package items

import (
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/gin-gonic/gin"
)

// Register routes for the items module. Mutating routes run behind auth.
func RegisterRoutes(g *gin.RouterGroup, l *ledger.Ledger, auth gin.HandlerFunc) {
	ctrl := &controller{ledger: l}

	group := g.Group("/items")

	// Read routes
	group.GET("", ctrl.listItems)                              // List live items, filtered by q/category/brand
	group.GET("/distinct/categories", ctrl.distinctCategories) // Distinct non-blank categories
	group.GET("/distinct/brands", ctrl.distinctBrands)         // Distinct non-blank brands
	group.GET("/:id", ctrl.getItem)                            // Get the read row of an item
	group.GET("/:id/events", ctrl.getHistory)                  // Get the facts of an item
	group.GET("/:id/replay", ctrl.replay)                      // Fold the facts of an item and compare

	// Write routes
	writes := group.Group("", auth)
	writes.POST("", ctrl.createItem)                 // Create an item
	writes.PUT("/:id", ctrl.updateItem)              // Update descriptive fields
	writes.POST("/:id/price", ctrl.changePrice)      // Change selling and/or cost price
	writes.POST("/:id/purchase", ctrl.purchase)      // Record a purchase
	writes.POST("/:id/sale", ctrl.sell)              // Record a sale
	writes.POST("/:id/promotion", ctrl.setPromotion) // Set the promotion
	writes.POST("/:id/note", ctrl.addNote)           // Replace the note
	writes.POST("/:id/image", ctrl.setImage)         // Point the item at an image
	writes.DELETE("/:id", ctrl.deleteItem)           // Delete the item, keeping its history
}
