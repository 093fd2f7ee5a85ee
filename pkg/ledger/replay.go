package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Divergence describes a read row that no longer matches the fold of its facts
type Divergence struct {
	ItemID   string   `json:"item_id"`
	Live     *Item    `json:"live"`
	Replayed *Item    `json:"replayed"`
	Fields   []string `json:"fields"`
}

// Replay folds every fact of an item. A nil row means the item is not live
// (never created or deleted).
func (l *Ledger) Replay(ctx context.Context, itemID string) (*Item, error) {
	facts, err := l.GetHistory(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return Fold(facts)
}

// Verify compares the live read row of an item with its replayed state and
// returns nil when they agree
func (l *Ledger) Verify(ctx context.Context, itemID string) (*Divergence, error) {
	replayed, err := l.Replay(ctx, itemID)
	if err != nil {
		return nil, err
	}

	live, err := l.store.GetItem(ctx, itemID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if live.Equal(replayed) {
		return nil, nil
	}
	return &Divergence{
		ItemID:   itemID,
		Live:     live,
		Replayed: replayed,
		Fields:   live.Diff(replayed),
	}, nil
}

// VerifyAll checks every known item and returns the divergent ones
func (l *Ledger) VerifyAll(ctx context.Context) ([]Divergence, error) {
	ids, err := l.store.ItemIDs(ctx)
	if err != nil {
		return nil, err
	}

	var out []Divergence
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		d, err := l.Verify(ctx, id)
		if err != nil {
			return out, fmt.Errorf("failed to verify %s: %w", id, err)
		}
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// Repair overwrites the read row of an item with the fold of its facts
func (l *Ledger) Repair(ctx context.Context, itemID string) error {
	id, err := validID(itemID)
	if err != nil {
		return err
	}

	return l.store.Overwrite(ctx, id, func(tx *gorm.DB) (*Item, error) {
		var facts []Fact
		if err := tx.Where("item_id = ?", id).Order("occurred_at").Order("seq").Find(&facts).Error; err != nil {
			return nil, fmt.Errorf("failed to query facts: %w", err)
		}
		return Fold(facts)
	})
}
