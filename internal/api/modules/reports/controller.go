package reports

import (
	"github.com/ethanbaker/smartmarket/internal/api/respond"
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/gin-gonic/gin"
)

type controller struct {
	ledger *ledger.Ledger
}

func (ctrl *controller) profit(c *gin.Context) {
	rows, err := ctrl.ledger.ProfitByItem(c.Request.Context())
	if err != nil {
		respond.Error(c, "Failed to build profit report", err)
		return
	}
	respond.OK(c, "Profit report retrieved successfully", rows)
}

func (ctrl *controller) categoryValue(c *gin.Context) {
	rows, err := ctrl.ledger.CategoryValue(c.Request.Context())
	if err != nil {
		respond.Error(c, "Failed to build category value report", err)
		return
	}
	respond.OK(c, "Category value report retrieved successfully", rows)
}

func (ctrl *controller) monthlyProfit(c *gin.Context) {
	rows, err := ctrl.ledger.MonthlyProfit(c.Request.Context())
	if err != nil {
		respond.Error(c, "Failed to build monthly profit report", err)
		return
	}
	respond.OK(c, "Monthly profit report retrieved successfully", rows)
}
