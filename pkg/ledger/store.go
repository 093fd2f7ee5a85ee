package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Builder constructs the fact to append from the locked current read row
// (nil when the item is not live). Returning a nil fact and nil error makes
// the append a no-op.
type Builder func(current *Item) (*Fact, error)

// Store is the append-only fact store together with its read-row projection.
// Both tables live in the same database so that every append and its
// projection update commit or roll back together.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore creates a fact store on top of an open GORM connection
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:  db,
		now: time.Now,
	}
}

// Migrate creates or updates the fact and read-row tables
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Fact{}, &Item{}); err != nil {
		return fmt.Errorf("failed to migrate ledger tables: %w", err)
	}
	return nil
}

// DB returns the underlying connection shared with the query executor
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Append builds a fact against the current state of the item, folds it into
// the read row, and stores both in a single transaction. The read row is
// locked for the duration of the transaction so concurrent operations on the
// same item serialize.
func (s *Store) Append(ctx context.Context, itemID string, build Builder) (*Fact, error) {
	var appended *Fact

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockItem(tx, itemID)
		if err != nil {
			return err
		}

		fact, err := build(current)
		if err != nil {
			return err
		}
		if fact == nil {
			return nil
		}
		fact.ItemID = itemID

		if err := s.stamp(tx, fact); err != nil {
			return err
		}

		next, err := Apply(current, fact)
		if err != nil {
			return err
		}
		annotate(fact, next)

		if err := tx.Create(fact).Error; err != nil {
			return fmt.Errorf("failed to append fact: %w", err)
		}
		if err := project(tx, current, next, itemID); err != nil {
			return err
		}

		appended = fact
		return nil
	})
	if err != nil {
		return nil, err
	}

	return appended, nil
}

// ApplyExternalWrite runs a statement that changes read rows directly and
// appends RECONCILE and DELETE facts describing every row it changed, all in
// one transaction. It returns the affected row count reported by exec.
func (s *Store) ApplyExternalWrite(ctx context.Context, exec func(tx *gorm.DB) (int64, error)) (int64, error) {
	var affected int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before []Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("item_id").Find(&before).Error; err != nil {
			return fmt.Errorf("failed to snapshot read rows: %w", err)
		}

		n, err := exec(tx)
		if err != nil {
			return err
		}
		affected = n

		var after []Item
		if err := tx.Order("item_id").Find(&after).Error; err != nil {
			return fmt.Errorf("failed to snapshot read rows: %w", err)
		}

		facts, err := reconcile(before, after)
		if err != nil {
			return err
		}

		for _, fact := range facts {
			if err := s.stamp(tx, fact); err != nil {
				return err
			}
			if err := tx.Create(fact).Error; err != nil {
				return fmt.Errorf("failed to append fact: %w", err)
			}

			// The folded row takes the fact's occurrence time and its
			// recomputed inventory value
			if fact.Kind == KindReconcile {
				if err := tx.Model(&Item{}).Where("item_id = ?", fact.ItemID).UpdateColumns(map[string]any{
					"updated_at":      fact.OccurredAt,
					"inventory_value": *fact.InventoryValue,
				}).Error; err != nil {
					return fmt.Errorf("failed to stamp read row: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// GetItem returns the live read row for an item
func (s *Store) GetItem(ctx context.Context, itemID string) (*Item, error) {
	var item Item
	if err := s.db.WithContext(ctx).Where("item_id = ?", itemID).Take(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// ListItems returns live read rows matching the filter ordered by item id
func (s *Store) ListItems(ctx context.Context, filter Filter) ([]Item, error) {
	query := s.db.WithContext(ctx).Model(&Item{})

	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		query = query.Where("brand = ?", brand)
	}
	if text := strings.TrimSpace(filter.Text); text != "" {
		like := "%" + strings.ToLower(text) + "%"
		query = query.Where("LOWER(item_id) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}

	items := []Item{}
	if err := query.Order("item_id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// History returns every fact recorded for an item in occurrence order
func (s *Store) History(ctx context.Context, itemID string) ([]Fact, error) {
	facts := []Fact{}
	if err := s.db.WithContext(ctx).Where("item_id = ?", itemID).
		Order("occurred_at").Order("seq").Find(&facts).Error; err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	return facts, nil
}

// FactsOfKind returns every fact of a kind in occurrence order
func (s *Store) FactsOfKind(ctx context.Context, kind Kind) ([]Fact, error) {
	facts := []Fact{}
	if err := s.db.WithContext(ctx).Where("kind = ?", kind).
		Order("occurred_at").Order("seq").Find(&facts).Error; err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	return facts, nil
}

// ItemIDs returns every item id known to either the fact store or the read rows
func (s *Store) ItemIDs(ctx context.Context) ([]string, error) {
	var fromFacts, fromRows []string
	if err := s.db.WithContext(ctx).Model(&Fact{}).Distinct().Pluck("item_id", &fromFacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list fact item ids: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&Item{}).Pluck("item_id", &fromRows).Error; err != nil {
		return nil, fmt.Errorf("failed to list read row ids: %w", err)
	}

	seen := make(map[string]bool, len(fromFacts)+len(fromRows))
	var ids []string
	for _, id := range append(fromFacts, fromRows...) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Overwrite replaces the read row of an item with the given state, or removes
// it when row is nil. No fact is appended; it is only used to repair a
// projection from its own facts.
func (s *Store) Overwrite(ctx context.Context, itemID string, rebuild func(tx *gorm.DB) (*Item, error)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockItem(tx, itemID)
		if err != nil {
			return err
		}
		next, err := rebuild(tx)
		if err != nil {
			return err
		}
		return project(tx, current, next, itemID)
	})
}

// stamp assigns the event id and an occurrence time that never moves
// backwards relative to the item's previous facts
func (s *Store) stamp(tx *gorm.DB, fact *Fact) error {
	if fact.EventID == uuid.Nil {
		fact.EventID = uuid.New()
	}
	if fact.OccurredAt.IsZero() {
		fact.OccurredAt = s.now()
	}
	fact.OccurredAt = fact.OccurredAt.UTC()

	var last Fact
	err := tx.Select("occurred_at").Where("item_id = ?", fact.ItemID).
		Order("occurred_at DESC").Order("seq DESC").Take(&last).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to read last fact: %w", err)
	}

	if fact.OccurredAt.Before(last.OccurredAt) {
		fact.OccurredAt = last.OccurredAt
	}
	return nil
}

// lockItem reads the current read row with a row-level lock
func lockItem(tx *gorm.DB, itemID string) (*Item, error) {
	var item Item
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("item_id = ?", itemID).Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read item: %w", err)
	}
	return &item, nil
}

// project writes the folded row in place of the current one
func project(tx *gorm.DB, current, next *Item, itemID string) error {
	switch {
	case next == nil:
		if current == nil {
			return nil
		}
		if err := tx.Where("item_id = ?", itemID).Delete(&Item{}).Error; err != nil {
			return fmt.Errorf("failed to delete read row: %w", err)
		}

	case current == nil:
		if err := tx.Create(next).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrDuplicateItem, itemID)
			}
			return fmt.Errorf("failed to insert read row: %w", err)
		}

	default:
		if err := tx.Save(next).Error; err != nil {
			return fmt.Errorf("failed to update read row: %w", err)
		}
	}
	return nil
}

// annotate records the derived stock and cost on purchase and sale facts
// for history views. Apply never reads these values back for those kinds.
func annotate(fact *Fact, next *Item) {
	if next == nil {
		return
	}
	switch fact.Kind {
	case KindPurchase, KindSale:
		fact.QuantityAfter = ptr(next.Quantity)
		fact.CostPrice = ptr(next.CostPrice)
	}
}

// reconcile turns a before/after snapshot of the read rows into facts
func reconcile(before, after []Item) ([]*Fact, error) {
	prior := make(map[string]*Item, len(before))
	for i := range before {
		prior[before[i].ItemID] = &before[i]
	}

	var facts []*Fact
	for i := range after {
		row := &after[i]
		if err := validRow(row); err != nil {
			return nil, err
		}

		old, ok := prior[row.ItemID]
		delete(prior, row.ItemID)

		if ok && len(old.Diff(row)) == 0 {
			continue
		}

		// Profit only accrues through sales
		if ok && !row.TotalProfit.Equal(old.TotalProfit) {
			return nil, fmt.Errorf("%w: write would change the total_profit of %s", ErrInvalidInput, row.ItemID)
		}
		if !ok && !row.TotalProfit.IsZero() {
			return nil, fmt.Errorf("%w: inserted item %s must start with zero total_profit", ErrInvalidInput, row.ItemID)
		}

		row.InventoryValue = inventoryValue(row.Quantity, row.CostPrice)
		facts = append(facts, snapshotFact(row))
	}

	for i := range before {
		if _, removed := prior[before[i].ItemID]; removed {
			facts = append(facts, NewFact(before[i].ItemID, KindDelete))
		}
	}

	return facts, nil
}

// validRow checks a read row rewritten by an external statement
func validRow(row *Item) error {
	if row.Quantity < 0 {
		return fmt.Errorf("%w: write would leave %s with negative stock %d", ErrInvalidInput, row.ItemID, row.Quantity)
	}
	if strings.TrimSpace(row.Name) == "" {
		return fmt.Errorf("%w: write would leave %s without a name", ErrInvalidInput, row.ItemID)
	}
	if row.CurrentPrice.IsNegative() || row.CostPrice.IsNegative() {
		return fmt.Errorf("%w: write would leave %s with a negative price", ErrInvalidInput, row.ItemID)
	}
	return nil
}
