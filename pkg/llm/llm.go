// Package llm holds the contracts of the text-understanding collaborator used
// by the gateway (free-form chat and zero-shot label scoring) together with
// clients for OpenAI-compatible chat endpoints and Hugging Face style
// zero-shot inference endpoints.
package llm

import (
	"context"
	"errors"
)

// Role of a chat message author
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System creates a system message
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User creates a user message
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Chatter produces a free-text reply to a conversation
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Classifier scores a text against candidate labels. Each score is in
// [0,1]; labels are scored independently so scores need not sum to one.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (map[string]float64, error)
}

// Model is the full collaborator contract
type Model interface {
	Chatter
	Classifier
}

// ErrEmptyResponse is returned when the collaborator answers with nothing usable
var ErrEmptyResponse = errors.New("empty response from model")

type combined struct {
	Chatter
	Classifier
}

// Combine joins a chatter and a classifier into a Model
func Combine(chatter Chatter, classifier Classifier) Model {
	return combined{Chatter: chatter, Classifier: classifier}
}
