package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

// ZeroShotClient scores labels with a zero-shot classification inference
// endpoint (for example facebook/bart-large-mnli on Hugging Face)
type ZeroShotClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewZeroShotClient creates a classifier posting to url
func NewZeroShotClient(url, apiKey string, timeout time.Duration) *ZeroShotClient {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &ZeroShotClient{
		url:        url,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
	Options    map[string]bool    `json:"options"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// Classify scores every label independently
func (c *ZeroShotClient) Classify(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	body, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: labels, MultiLabel: true},
		Options:    map[string]bool{"wait_for_model": true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode classification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create classification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read classification response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("classification endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	return ParseScores(raw)
}

// ParseScores reads label scores from either of the response shapes served
// by zero-shot endpoints: {"labels": [...], "scores": [...]} or
// [{"label": ..., "score": ...}, ...]
func ParseScores(raw []byte) (map[string]float64, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("classification response is not valid JSON")
	}
	doc := gjson.ParseBytes(raw)

	if msg := doc.Get("error"); msg.Exists() {
		return nil, fmt.Errorf("classification endpoint error: %s", msg.String())
	}

	scores := make(map[string]float64)
	switch {
	case doc.IsArray():
		doc.ForEach(func(_, entry gjson.Result) bool {
			if label := entry.Get("label"); label.Exists() {
				scores[label.String()] = entry.Get("score").Float()
			}
			return true
		})

	case doc.Get("labels").IsArray():
		labels := doc.Get("labels").Array()
		values := doc.Get("scores").Array()
		if len(labels) != len(values) {
			return nil, fmt.Errorf("classification response has %d labels but %d scores", len(labels), len(values))
		}
		for i, label := range labels {
			scores[label.String()] = values[i].Float()
		}
	}

	if len(scores) == 0 {
		return nil, ErrEmptyResponse
	}
	return scores, nil
}
