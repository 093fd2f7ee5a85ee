package gateway

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"gorm.io/gorm"
)

// Execution is the outcome of running an approved query. Results is set
// when the statement produced columns, RowsAffected otherwise.
type Execution struct {
	Results      []map[string]any
	RowsAffected *int64
}

var factsTable = regexp.MustCompile(`(?i)\bfacts\b`)

// Schema statements commit implicitly on MySQL, outside the write transaction
var schemaVerb = regexp.MustCompile(`(?i)^\s*(alter|drop|truncate|create|grant|revoke|rename)\b`)

// Executor runs approved queries against the store shared with the ledger
type Executor struct {
	store *ledger.Store
}

// NewExecutor creates an executor over the ledger's store
func NewExecutor(store *ledger.Store) *Executor {
	return &Executor{store: store}
}

// Execute runs a query classified by the gate. Reads run in a transaction
// that is always rolled back. Writes go through the store so every changed
// read row is reconciled into the fact store in the same transaction.
func (e *Executor) Execute(ctx context.Context, query string, write bool) (*Execution, error) {
	if write {
		return e.write(ctx, query)
	}
	return e.read(ctx, query)
}

func (e *Executor) read(ctx context.Context, query string) (*Execution, error) {
	tx := e.store.DB().WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, tx.Error)
	}
	defer tx.Rollback()

	rows, err := tx.Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}
	if len(columns) == 0 {
		return &Execution{RowsAffected: new(int64)}, nil
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = normalize(values[i])
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	return &Execution{Results: results}, nil
}

func (e *Executor) write(ctx context.Context, query string) (*Execution, error) {
	if factsTable.MatchString(query) {
		return nil, fmt.Errorf("%w: the fact store is append-only and cannot be written by generated queries", ErrExecution)
	}
	if schemaVerb.MatchString(query) {
		return nil, fmt.Errorf("%w: schema statements cannot be run by generated queries", ErrExecution)
	}

	affected, err := e.store.ApplyExternalWrite(ctx, func(tx *gorm.DB) (int64, error) {
		result := tx.Exec(query)
		return result.RowsAffected, result.Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	return &Execution{RowsAffected: &affected}, nil
}

// normalize turns driver byte slices into strings so results encode as text
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
