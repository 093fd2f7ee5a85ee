package chat

import (
	"github.com/ethanbaker/smartmarket/pkg/gateway"
	"github.com/gin-gonic/gin"
)

// Register routes for the chat module. Every route runs behind auth.
func RegisterRoutes(g *gin.RouterGroup, gw *gateway.Gateway, asks *gateway.AskLog, auth gin.HandlerFunc) {
	ctrl := &controller{gateway: gw, asks: asks}

	group := g.Group("/chat", auth)
	group.POST("/ask", ctrl.ask)                  // Ask a question, confirming writes on the second call
	group.POST("/analyze-note", ctrl.analyzeNote) // Score and summarize a note
	group.GET("/history", ctrl.history)           // Latest asks, newest first
}
