package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/ethanbaker/smartmarket/pkg/llm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ethanbaker/smartmarket/pkg/gateway"

// Outcome is the result of Ask: either *Executed or *PendingConfirmation
type Outcome interface {
	// Result flattens the outcome into its wire shape
	Result() Result
	isOutcome()
}

// Executed is a read, or a confirmed write, that ran against the store
type Executed struct {
	Question     string
	FieldFlags   map[string]bool
	Query        string
	IsWrite      bool
	Results      []map[string]any
	RowsAffected *int64
	Message      string
}

// PendingConfirmation is a write withheld by the gate. The caller retries
// by asking the same question with confirm set.
type PendingConfirmation struct {
	Question   string
	FieldFlags map[string]bool
	Query      string
	Message    string
}

func (*Executed) isOutcome()            {}
func (*PendingConfirmation) isOutcome() {}

// Result is the flattened form of an Outcome
type Result struct {
	Question     string           `json:"question"`
	FieldFlags   map[string]bool  `json:"field_flags"`
	Query        string           `json:"query"`
	IsWrite      bool             `json:"is_write"`
	Executed     bool             `json:"executed"`
	RowsAffected *int64           `json:"rows_affected,omitempty"`
	Results      []map[string]any `json:"results,omitempty"`
	Message      string           `json:"message"`
}

func (e *Executed) Result() Result {
	return Result{
		Question:     e.Question,
		FieldFlags:   e.FieldFlags,
		Query:        e.Query,
		IsWrite:      e.IsWrite,
		Executed:     true,
		RowsAffected: e.RowsAffected,
		Results:      e.Results,
		Message:      e.Message,
	}
}

func (p *PendingConfirmation) Result() Result {
	return Result{
		Question:   p.Question,
		FieldFlags: p.FieldFlags,
		Query:      p.Query,
		IsWrite:    true,
		Executed:   false,
		Message:    p.Message,
	}
}

// Options configures a Gateway
type Options struct {
	Threshold float64
	Dialect   string

	// Log receives an entry per Ask when set
	Log *AskLog
}

// Gateway is the conversational command/query entry point over the ledger
type Gateway struct {
	model      llm.Model
	classifier *IntentClassifier
	executor   *Executor
	schema     string
	asks       *AskLog
	tracer     trace.Tracer
}

// New creates a gateway over the ledger's store
func New(model llm.Model, store *ledger.Store, opts Options) *Gateway {
	return &Gateway{
		model:      model,
		classifier: NewIntentClassifier(model, opts.Threshold, opts.Dialect),
		executor:   NewExecutor(store),
		schema:     Schema(),
		asks:       opts.Log,
		tracer:     otel.Tracer(tracerName),
	}
}

// Ask runs a question through classification, the write gate and, when the
// gate allows it, execution. Classification failures abort before anything
// touches the store.
func (g *Gateway) Ask(ctx context.Context, question string, confirm bool) (Outcome, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.ask", trace.WithAttributes(attribute.Bool("ask.confirm", confirm)))
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	outcome, err := g.ask(ctx, question, confirm)
	g.record(ctx, question, confirm, outcome, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return outcome, nil
}

func (g *Gateway) ask(ctx context.Context, question string, confirm bool) (Outcome, error) {
	fail := func(stage Stage, query string, err error) error {
		return &StageError{Stage: stage, Question: question, Query: query, Err: err}
	}

	var flags map[string]bool
	err := g.stage(ctx, StageClassify, func(ctx context.Context) (err error) {
		flags, err = g.classifier.ClassifyFields(ctx, question)
		return err
	})
	if err != nil {
		return nil, fail(StageClassify, "", err)
	}

	var query string
	err = g.stage(ctx, StageBuildQuery, func(ctx context.Context) (err error) {
		query, err = g.classifier.BuildQuery(ctx, question, flags, g.schema)
		return err
	})
	if err != nil {
		return nil, fail(StageBuildQuery, "", err)
	}

	verdict := Decide(query, confirm)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("ask.verdict", verdict.String()))

	if !verdict.Executes() {
		message, err := g.summarize(ctx, question, query, true, false)
		if err != nil {
			return nil, fail(StageSummarize, query, err)
		}
		return &PendingConfirmation{Question: question, FieldFlags: flags, Query: query, Message: message}, nil
	}

	write := verdict == VerdictConfirmedWrite
	var execution *Execution
	err = g.stage(ctx, StageExecute, func(ctx context.Context) (err error) {
		execution, err = g.executor.Execute(ctx, query, write)
		return err
	})
	if err != nil {
		return nil, fail(StageExecute, query, err)
	}

	// The statement already ran, so a failed summary must not read as a
	// failed ask
	message, err := g.summarize(ctx, question, query, write, true)
	if err != nil {
		log.Printf("[GATEWAY]: Warning, summary failed after execution: %v", err)
		message = fallbackMessage(write, execution)
	}

	return &Executed{
		Question:     question,
		FieldFlags:   flags,
		Query:        query,
		IsWrite:      write,
		Results:      execution.Results,
		RowsAffected: execution.RowsAffected,
		Message:      message,
	}, nil
}

// stage runs fn inside a span named after the stage
func (g *Gateway) stage(ctx context.Context, stage Stage, fn func(ctx context.Context) error) error {
	ctx, span := g.tracer.Start(ctx, "gateway."+string(stage))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (g *Gateway) summarize(ctx context.Context, question, query string, isWrite, executed bool) (string, error) {
	var message string
	err := g.stage(ctx, StageSummarize, func(ctx context.Context) error {
		payload, err := json.MarshalIndent(map[string]any{
			"question": question,
			"query":    query,
			"is_write": isWrite,
			"executed": executed,
		}, "", "  ")
		if err != nil {
			return err
		}

		prompt := NewPromptBuilder("You are an assistant that summarizes SQL actions in natural English. "+
			"Given the JSON object below, write one short, natural English sentence describing what the system is about to do or has done.").
			AddSection("action", string(payload)).
			AddRule(`If "is_write" is true and "executed" is false, explain what change would happen and end by asking for confirmation.`).
			AddRule(`If "is_write" is true and "executed" is true, describe the change that was made, in past tense.`).
			AddRule(`If "is_write" is false, summarize what information was retrieved.`).
			AddRule("Return only the sentence, without explanations or markdown.").
			Build()

		reply, err := g.model.Chat(ctx, []llm.Message{llm.User(prompt)})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrClassification, err)
		}
		message = strings.TrimSpace(reply)
		return nil
	})
	return message, err
}

func fallbackMessage(write bool, execution *Execution) string {
	switch {
	case write && execution.RowsAffected != nil:
		return fmt.Sprintf("The change was applied to %d row(s).", *execution.RowsAffected)
	case execution.Results != nil:
		return fmt.Sprintf("Retrieved %d row(s).", len(execution.Results))
	}
	return "The query ran successfully."
}

func (g *Gateway) record(ctx context.Context, question string, confirm bool, outcome Outcome, err error) {
	if g.asks == nil {
		return
	}

	entry := &AskLogEntry{Question: question, Confirmed: confirm}
	if outcome != nil {
		r := outcome.Result()
		entry.Query = r.Query
		entry.FieldFlags = flagMap(r.FieldFlags)
		entry.IsWrite = r.IsWrite
		entry.Executed = r.Executed
		entry.RowsAffected = r.RowsAffected
	}

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		entry.Query = stageErr.Query
		entry.IsWrite = IsWrite(stageErr.Query)
		entry.FailedStage = string(stageErr.Stage)
		entry.Error = stageErr.Err.Error()
	}

	// Logging must never change the outcome of the ask itself
	if err := g.asks.Record(context.WithoutCancel(ctx), entry); err != nil {
		log.Printf("[GATEWAY]: Warning, %v", err)
	}
}
