package gateway

import (
	"fmt"
	"strings"
)

// PromptBuilder assembles instruction prompts out of an introduction,
// bracketed sections and closing rules
type PromptBuilder struct {
	intro    string
	sections []section
	rules    []string
}

type section struct {
	title string
	body  string
}

// NewPromptBuilder creates a new prompt builder with an opening instruction
func NewPromptBuilder(intro string) *PromptBuilder {
	return &PromptBuilder{intro: intro}
}

// AddSection appends a titled block, rendered as "[TITLE]\nbody"
func (pb *PromptBuilder) AddSection(title, body string) *PromptBuilder {
	pb.sections = append(pb.sections, section{title: strings.ToUpper(title), body: strings.TrimSpace(body)})
	return pb
}

// AddRule appends a numbered rule rendered after the sections
func (pb *PromptBuilder) AddRule(rule string) *PromptBuilder {
	pb.rules = append(pb.rules, rule)
	return pb
}

// Build constructs the final prompt
func (pb *PromptBuilder) Build() string {
	parts := []string{strings.TrimSpace(pb.intro)}

	for _, s := range pb.sections {
		parts = append(parts, fmt.Sprintf("\n[%s]\n%s", s.title, s.body))
	}

	if len(pb.rules) > 0 {
		parts = append(parts, "\nRules:")
		for i, rule := range pb.rules {
			parts = append(parts, fmt.Sprintf("%d. %s", i+1, rule))
		}
	}

	return strings.Join(parts, "\n")
}
