package items

import (
	"github.com/ethanbaker/smartmarket/internal/api/respond"
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/ethanbaker/smartmarket/pkg/sdk"
	"github.com/gin-gonic/gin"
)

type controller struct {
	ledger *ledger.Ledger
}

// createItem handles POST requests to create an item
func (ctrl *controller) createItem(c *gin.Context) {
	var req sdk.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	fact, err := ctrl.ledger.CreateItem(c.Request.Context(), req.ToNewItem())
	if err != nil {
		respond.Error(c, "Failed to create item", err)
		return
	}

	respond.Created(c, "Item created successfully", fact)
}

// updateItem handles PUT requests to change descriptive fields
func (ctrl *controller) updateItem(c *gin.Context) {
	var req sdk.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	fact, err := ctrl.ledger.UpdateItem(c.Request.Context(), c.Param("id"), req.ToFields())
	if err != nil {
		respond.Error(c, "Failed to update item", err)
		return
	}
	if fact == nil {
		respond.OK[*ledger.Fact](c, "Nothing to update", nil)
		return
	}

	respond.OK(c, "Item updated successfully", fact)
}

// changePrice handles POST requests to change prices
func (ctrl *controller) changePrice(c *gin.Context) {
	var req sdk.PriceChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	change := ledger.PriceChange{CurrentPrice: req.CurrentPrice, CostPrice: req.CostPrice}
	fact, err := ctrl.ledger.ChangePrice(c.Request.Context(), c.Param("id"), change)
	if err != nil {
		respond.Error(c, "Failed to change price", err)
		return
	}

	respond.OK(c, "Price changed successfully", fact)
}

// purchase handles POST requests to record stock bought
func (ctrl *controller) purchase(c *gin.Context) {
	var req sdk.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	fact, err := ctrl.ledger.Purchase(c.Request.Context(), c.Param("id"), req.Quantity, req.PurchaseUnitCost)
	if err != nil {
		respond.Error(c, "Failed to record purchase", err)
		return
	}

	respond.OK(c, "Purchase recorded successfully", fact)
}

// sell handles POST requests to record units sold
func (ctrl *controller) sell(c *gin.Context) {
	var req sdk.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	sale := ledger.Sale{Quantity: req.Quantity, UnitPrice: req.SaleUnitPrice, UnitCost: req.SaleUnitCost}
	fact, err := ctrl.ledger.Sell(c.Request.Context(), c.Param("id"), sale)
	if err != nil {
		respond.Error(c, "Failed to record sale", err)
		return
	}

	respond.OK(c, "Sale recorded successfully", fact)
}

// setPromotion handles POST requests to set the promotion
func (ctrl *controller) setPromotion(c *gin.Context) {
	var req sdk.PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	fact, err := ctrl.ledger.SetPromotion(c.Request.Context(), c.Param("id"), req.IsOnPromotion, req.PromotionDiscountPercent)
	if err != nil {
		respond.Error(c, "Failed to set promotion", err)
		return
	}

	respond.OK(c, "Promotion set successfully", fact)
}

// addNote handles POST requests to replace the note
func (ctrl *controller) addNote(c *gin.Context) {
	var req sdk.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	fact, err := ctrl.ledger.AddNote(c.Request.Context(), c.Param("id"), req.Note)
	if err != nil {
		respond.Error(c, "Failed to add note", err)
		return
	}

	respond.OK(c, "Note added successfully", fact)
}

// setImage handles POST requests to point an item at an image
func (ctrl *controller) setImage(c *gin.Context) {
	var req sdk.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	fact, err := ctrl.ledger.SetImage(c.Request.Context(), c.Param("id"), req.ImageURL)
	if err != nil {
		respond.Error(c, "Failed to set image", err)
		return
	}

	respond.OK(c, "Image set successfully", fact)
}

// deleteItem handles DELETE requests to remove an item
func (ctrl *controller) deleteItem(c *gin.Context) {
	fact, err := ctrl.ledger.DeleteItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, "Failed to delete item", err)
		return
	}

	respond.OK(c, "Item deleted successfully", fact)
}

// getItem handles GET requests for the read row of an item
func (ctrl *controller) getItem(c *gin.Context) {
	item, err := ctrl.ledger.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, "Item not found", err)
		return
	}

	respond.OK(c, "Item retrieved successfully", item)
}

// listItems handles GET requests for live items
func (ctrl *controller) listItems(c *gin.Context) {
	var filter ledger.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respond.BadRequest(c, "Could not parse query", err)
		return
	}

	items, err := ctrl.ledger.ListItems(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, "Failed to list items", err)
		return
	}

	respond.OK(c, "Items retrieved successfully", items)
}

// getHistory handles GET requests for the facts of an item
func (ctrl *controller) getHistory(c *gin.Context) {
	facts, err := ctrl.ledger.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, "Failed to get history", err)
		return
	}

	respond.OK(c, "History retrieved successfully", facts)
}

// replay handles GET requests to fold an item's facts and compare the
// result with its read row
func (ctrl *controller) replay(c *gin.Context) {
	id := c.Param("id")

	replayed, err := ctrl.ledger.Replay(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "Failed to replay item", err)
		return
	}

	divergence, err := ctrl.ledger.Verify(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "Failed to verify item", err)
		return
	}

	respond.OK(c, "Item replayed successfully", sdk.ReplayResponse{
		ItemID:     id,
		Live:       replayed != nil,
		Replayed:   replayed,
		Divergence: divergence,
	})
}

func (ctrl *controller) distinctCategories(c *gin.Context) {
	values, err := ctrl.ledger.DistinctCategories(c.Request.Context())
	if err != nil {
		respond.Error(c, "Failed to list categories", err)
		return
	}
	respond.OK(c, "Categories retrieved successfully", values)
}

func (ctrl *controller) distinctBrands(c *gin.Context) {
	values, err := ctrl.ledger.DistinctBrands(c.Request.Context())
	if err != nil {
		respond.Error(c, "Failed to list brands", err)
		return
	}
	respond.OK(c, "Brands retrieved successfully", values)
}
