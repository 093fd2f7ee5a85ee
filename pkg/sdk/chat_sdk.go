package sdk

import (
	"context"
	"net/http"

	"github.com/ethanbaker/smartmarket/pkg/gateway"
)

// Ask a conversational question. A write comes back with Executed false
// until the same question is asked again with Confirm set.
func (c *Client) Ask(ctx context.Context, req *AskRequest) (*AskResponse, error) {
	var out ApiResponse[AskResponse]
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/ask", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Confirm re-asks a pending question with confirmation set
func (c *Client) Confirm(ctx context.Context, pending *AskResponse) (*AskResponse, error) {
	return c.Ask(ctx, &AskRequest{Question: pending.Question, Confirm: true})
}

// Analyze the sentiment of a note
func (c *Client) AnalyzeNote(ctx context.Context, req *AnalyzeNoteRequest) (*gateway.NoteAnalysis, error) {
	var out ApiResponse[gateway.NoteAnalysis]
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat/analyze-note", req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// List the latest asks, newest first
func (c *Client) AskHistory(ctx context.Context) ([]gateway.AskLogEntry, error) {
	var out ApiResponse[[]gateway.AskLogEntry]
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/history", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
