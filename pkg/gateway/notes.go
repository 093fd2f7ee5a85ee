package gateway

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ethanbaker/smartmarket/pkg/llm"
)

var sentimentLabels = []string{"negative", "neutral", "positive"}

var sentimentTags = map[string]string{
	"negative": "Not good",
	"neutral":  "Needs check",
	"positive": "All good",
}

// NoteAnalysis is the sentiment read of a seller's note about an item
type NoteAnalysis struct {
	SentimentBreakdown map[string]float64 `json:"sentiment_breakdown"`
	Sentiment          string             `json:"sentiment"`
	Tag                string             `json:"tag"`
	Summary            string             `json:"summary"`
}

// AnalyzeNote scores a note's sentiment, tags it and asks the model for a
// short first-person summary with a next step when the note is negative
func (g *Gateway) AnalyzeNote(ctx context.Context, note string) (*NoteAnalysis, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.analyze_note")
	defer span.End()

	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrEmptyNote
	}

	scores, err := g.model.Classify(ctx, note, sentimentLabels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	breakdown, polarity := percentages(scores)
	tag, ok := sentimentTags[polarity]
	if !ok {
		tag = sentimentTags["neutral"]
	}

	prompt := NewPromptBuilder("You analyze what a seller wrote to themselves about a product. "+
		"Write a short summary, in natural-sounding English, that reflects the emotion and meaning, as if you were the seller.").
		AddSection("original note", note).
		AddSection("detected sentiment", polarity).
		AddRule("Be brief (one or two sentences).").
		AddRule("Sound like the seller writing a note to themselves.").
		AddRule("If the sentiment is negative, suggest a practical next step.").
		Build()

	summary, err := g.model.Chat(ctx, []llm.Message{
		llm.System("You are a helpful assistant who writes concise, natural English."),
		llm.User(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	return &NoteAnalysis{
		SentimentBreakdown: breakdown,
		Sentiment:          polarity,
		Tag:                tag,
		Summary:            strings.TrimSpace(summary),
	}, nil
}

// percentages normalizes scores to percentages rounded to two places and
// returns the best label. Ties resolve alphabetically.
func percentages(scores map[string]float64) (map[string]float64, string) {
	total := 0.0
	labels := make([]string, 0, len(scores))
	for label, score := range scores {
		total += score
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make(map[string]float64, len(scores))
	best := "neutral"
	bestScore := -1.0
	for _, label := range labels {
		pct := 0.0
		if total > 0 {
			pct = math.Round(scores[label]/total*10000) / 100
		}
		out[label] = pct
		if scores[label] > bestScore {
			best, bestScore = label, scores[label]
		}
	}
	return out, best
}
