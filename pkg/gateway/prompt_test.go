package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test cases for the PromptBuilder functionality
func TestPromptBuilder_Build(t *testing.T) {
	tests := []struct {
		name  string
		build func() *PromptBuilder
		want  string
	}{
		{
			name:  "intro only",
			build: func() *PromptBuilder { return NewPromptBuilder("  You answer questions.  ") },
			want:  "You answer questions.",
		},
		{
			name:  "empty intro",
			build: func() *PromptBuilder { return NewPromptBuilder("") },
			want:  "",
		},
		{
			name: "sections are uppercased and trimmed",
			build: func() *PromptBuilder {
				return NewPromptBuilder("Intro").AddSection("question", "  how many?\n")
			},
			want: "Intro\n\n[QUESTION]\nhow many?",
		},
		{
			name: "rules are numbered after sections",
			build: func() *PromptBuilder {
				return NewPromptBuilder("Intro").
					AddRule("first").
					AddSection("schema", "TABLE t(a)").
					AddRule("second")
			},
			want: "Intro\n\n[SCHEMA]\nTABLE t(a)\n\nRules:\n1. first\n2. second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := tt.build()
			require.NotNil(t, pb)
			assert.Equal(t, tt.want, pb.Build())
		})
	}
}
