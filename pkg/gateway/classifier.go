package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethanbaker/smartmarket/pkg/llm"
)

// DefaultThreshold is the score above which a field counts as relevant
const DefaultThreshold = 0.5

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// IntentClassifier turns a question into relevant fields and a query. Both
// calls are single-shot; nothing is retried or validated semantically.
type IntentClassifier struct {
	model     llm.Model
	threshold float64
	dialect   string
}

// NewIntentClassifier creates a classifier. A zero threshold uses
// DefaultThreshold; an empty dialect uses "SQL".
func NewIntentClassifier(model llm.Model, threshold float64, dialect string) *IntentClassifier {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if dialect == "" {
		dialect = "SQL"
	}
	return &IntentClassifier{model: model, threshold: threshold, dialect: dialect}
}

// ClassifyFields reports, for every read-row column, whether the question
// is about it. Columns the collaborator did not score are false.
func (c *IntentClassifier) ClassifyFields(ctx context.Context, question string) (map[string]bool, error) {
	labels := FieldLabels()

	scores, err := c.model.Classify(ctx, question, labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	flags := make(map[string]bool, len(labels))
	for _, label := range labels {
		flags[label] = scores[label] > c.threshold
	}
	return flags, nil
}

// BuildQuery asks the collaborator for one query answering the question
func (c *IntentClassifier) BuildQuery(ctx context.Context, question string, flags map[string]bool, schema string) (string, error) {
	encoded, err := json.MarshalIndent(flags, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode field flags: %w", err)
	}

	prompt := NewPromptBuilder(fmt.Sprintf(
		"You are an expert Text-to-SQL generator. Return only valid %s code with no quotation marks, markdown or explanations.", c.dialect)).
		AddSection("schema", schema).
		AddSection("question", question).
		AddSection("field flags", string(encoded)).
		AddRule("Generate one SQL statement matching the intent of the question, using correct filters, sorting and aggregation.").
		AddRule(fmt.Sprintf("Use %s as the table.", ItemTable)).
		AddRule("Return SQL only.").
		Build()

	reply, err := c.model.Chat(ctx, []llm.Message{llm.User(prompt)})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrClassification, err)
	}

	query := cleanQuery(reply)
	if query == "" {
		return "", fmt.Errorf("%w: model returned an empty query", ErrClassification)
	}
	return query, nil
}

// cleanQuery strips markdown fences, wrapping double quotes or backticks
// and a trailing statement terminator from a generated query
func cleanQuery(reply string) string {
	query := strings.TrimSpace(reply)
	if m := fencePattern.FindStringSubmatch(query); m != nil {
		query = m[1]
	}
	if n := len(query); n >= 2 && query[0] == query[n-1] && (query[0] == '"' || query[0] == '`') {
		query = strings.TrimSpace(query[1 : n-1])
	}
	return strings.TrimSpace(strings.TrimRight(query, "; \n\t"))
}
