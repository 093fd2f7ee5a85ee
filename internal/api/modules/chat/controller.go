package chat

import (
	"errors"
	"strconv"

	"github.com/ethanbaker/smartmarket/internal/api/respond"
	"github.com/ethanbaker/smartmarket/pkg/gateway"
	"github.com/ethanbaker/smartmarket/pkg/sdk"
	"github.com/gin-gonic/gin"
)

type controller struct {
	gateway *gateway.Gateway
	asks    *gateway.AskLog
}

// ask handles POST requests to run a conversational question
func (ctrl *controller) ask(c *gin.Context) {
	var req sdk.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	outcome, err := ctrl.gateway.Ask(c.Request.Context(), req.Question, req.Confirm)
	if err != nil {
		respond.Error(c, "Failed to answer question", err)
		return
	}

	result := outcome.Result()
	if _, pending := outcome.(*gateway.PendingConfirmation); pending {
		respond.OK(c, "Write requires confirmation", result)
		return
	}
	respond.OK(c, "Question answered successfully", result)
}

// analyzeNote handles POST requests to score the sentiment of a note
func (ctrl *controller) analyzeNote(c *gin.Context) {
	var req sdk.AnalyzeNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "Could not parse request body", err)
		return
	}

	analysis, err := ctrl.gateway.AnalyzeNote(c.Request.Context(), req.Note)
	if err != nil {
		respond.Error(c, "Failed to analyze note", err)
		return
	}

	respond.OK(c, "Note analyzed successfully", analysis)
}

// history handles GET requests for the latest asks
func (ctrl *controller) history(c *gin.Context) {
	if ctrl.asks == nil {
		respond.OK(c, "Ask history is disabled", []gateway.AskLogEntry{})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.BadRequest(c, "Could not parse query", errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := ctrl.asks.Recent(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, "Failed to get ask history", err)
		return
	}

	respond.OK(c, "Ask history retrieved successfully", entries)
}
