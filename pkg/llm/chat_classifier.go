package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const chatClassifierPrompt = `You score how relevant each candidate label is to a piece of text.
Answer with a single JSON object mapping every candidate label to a number between 0 and 1.
Do not add any other text.

Candidate labels: %s`

// ChatClassifier scores labels by asking a chat model for a JSON object of
// scores. It serves deployments without a dedicated zero-shot endpoint.
type ChatClassifier struct {
	chatter Chatter
}

// NewChatClassifier creates a classifier on top of a chat model
func NewChatClassifier(chatter Chatter) *ChatClassifier {
	return &ChatClassifier{chatter: chatter}
}

// Classify asks the chat model for a score per label. Labels missing from
// the reply score zero.
func (c *ChatClassifier) Classify(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	reply, err := c.chatter.Chat(ctx, []Message{
		System(fmt.Sprintf(chatClassifierPrompt, strings.Join(labels, ", "))),
		User(text),
	})
	if err != nil {
		return nil, err
	}

	doc := extractJSON(reply)
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("classifier reply is not a JSON object: %q", reply)
	}

	parsed := gjson.Parse(doc)
	scores := make(map[string]float64, len(labels))
	for _, label := range labels {
		score := parsed.Get(gjson.Escape(label)).Float()
		scores[label] = min(max(score, 0), 1)
	}
	return scores, nil
}

// extractJSON returns the outermost {...} span of a reply
func extractJSON(reply string) string {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return reply
	}
	return reply[start : end+1]
}
