package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestion is returned when Ask receives a blank question
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrEmptyNote is returned when AnalyzeNote receives a blank note
	ErrEmptyNote = errors.New("note is empty")

	// ErrClassification is returned when the text-understanding collaborator
	// fails while scoring fields, building a query, or summarizing
	ErrClassification = errors.New("classification failed")

	// ErrExecution is returned when the backing store rejects a generated query
	ErrExecution = errors.New("query execution failed")
)

// Stage names a step of the ask pipeline
type Stage string

const (
	StageClassify   Stage = "classify"
	StageBuildQuery Stage = "build_query"
	StageExecute    Stage = "execute"
	StageSummarize  Stage = "summarize"
)

// StageError reports which step of the ask pipeline failed, with the
// question and generated query so the caller can retry explicitly
type StageError struct {
	Stage    Stage
	Question string
	Query    string
	Err      error
}

func (e *StageError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("ask %s stage failed for query %q: %v", e.Stage, e.Query, e.Err)
	}
	return fmt.Sprintf("ask %s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
