package gateway

import (
	"fmt"
	"strings"
)

// Column describes one read-row column exposed to query generation
type Column struct {
	Name string
	Type string
}

// ItemColumns are the read_items columns. Their names double as the
// candidate labels scored by ClassifyFields.
var ItemColumns = []Column{
	{"item_id", "VARCHAR(64)"},
	{"name", "VARCHAR(255)"},
	{"current_price", "DECIMAL(20,4)"},
	{"cost_price", "DECIMAL(20,4)"},
	{"quantity", "BIGINT"},
	{"brand", "VARCHAR(255)"},
	{"category", "VARCHAR(255)"},
	{"is_on_promotion", "BOOLEAN"},
	{"promotion_discount_percent", "DECIMAL(20,4)"},
	{"image_url", "TEXT"},
	{"note", "TEXT"},
	{"inventory_value", "DECIMAL(20,4)"},
	{"total_profit", "DECIMAL(20,4)"},
	{"updated_at", "DATETIME"},
}

// ItemTable is the table generated queries must target
const ItemTable = "read_items"

// FieldLabels returns the column names scored by the classifier
func FieldLabels() []string {
	labels := make([]string, len(ItemColumns))
	for i, c := range ItemColumns {
		labels[i] = c.Name
	}
	return labels
}

// Schema renders the table definition handed to query generation
func Schema() string {
	cols := make([]string, len(ItemColumns))
	for i, c := range ItemColumns {
		cols[i] = c.Name + " " + c.Type
	}
	return fmt.Sprintf("TABLE %s(%s)", ItemTable, strings.Join(cols, ", "))
}
