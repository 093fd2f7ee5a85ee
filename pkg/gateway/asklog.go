package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AskLogEntry is the history record of one Ask call. It never carries
// pending-confirmation state; a pending write is confirmed by the caller
// echoing the question, not by looking it up here.
type AskLogEntry struct {
	ID           uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	Question     string            `json:"question" gorm:"type:text;not null"`
	Query        string            `json:"query" gorm:"type:text"`
	FieldFlags   datatypes.JSONMap `json:"field_flags"`
	IsWrite      bool              `json:"is_write"`
	Confirmed    bool              `json:"confirmed"`
	Executed     bool              `json:"executed"`
	RowsAffected *int64            `json:"rows_affected,omitempty"`
	FailedStage  string            `json:"failed_stage,omitempty" gorm:"size:20"`
	Error        string            `json:"error,omitempty" gorm:"type:text"`
	CreatedAt    time.Time         `json:"created_at" gorm:"index"`
}

// TableName sets the table name for GORM
func (AskLogEntry) TableName() string {
	return "ask_log"
}

// AskLog appends AskLogEntry records
type AskLog struct {
	db *gorm.DB
}

// NewAskLog creates an ask log on db
func NewAskLog(db *gorm.DB) *AskLog {
	return &AskLog{db: db}
}

// Migrate creates or updates the ask_log table
func (l *AskLog) Migrate() error {
	if err := l.db.AutoMigrate(&AskLogEntry{}); err != nil {
		return fmt.Errorf("failed to migrate ask log: %w", err)
	}
	return nil
}

// Record appends an entry
func (l *AskLog) Record(ctx context.Context, entry *AskLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := l.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record ask: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first
func (l *AskLog) Recent(ctx context.Context, limit int) ([]AskLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	entries := []AskLogEntry{}
	if err := l.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ask log: %w", err)
	}
	return entries, nil
}

func flagMap(flags map[string]bool) datatypes.JSONMap {
	if flags == nil {
		return nil
	}
	out := make(datatypes.JSONMap, len(flags))
	for k, v := range flags {
		out[k] = v
	}
	return out
}
