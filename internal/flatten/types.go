// Package flatten turns nested customer order records into a flat tabular
// sequence, one row per line item. This package has no I/O dependencies and
// can be driven by any loader or frontend.
package flatten

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// VIPSet holds the customer IDs from the VIP roster.
type VIPSet map[int64]struct{}

// NewVIPSet builds a VIPSet from a list of IDs.
func NewVIPSet(ids ...int64) VIPSet {
	s := make(VIPSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an ID into the set.
func (s VIPSet) Add(id int64) { s[id] = struct{}{} }

// Contains reports whether id is in the set.
func (s VIPSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// CustomerInput is one customer record as it arrives from the loader.
// Required integer IDs are pointers so a missing field is distinguishable
// from zero. Polymorphic fields keep their raw JSON until parsing.
type CustomerInput struct {
	ID               *int64       `json:"id"`
	Name             string       `json:"name"`
	RegistrationDate string       `json:"registration_date"`
	Orders           []OrderInput `json:"orders"`
}

// OrderInput is one order within a customer record.
type OrderInput struct {
	ID    *int64          `json:"order_id"`
	Date  string          `json:"order_date"`
	Items []LineItemInput `json:"items"`
}

// LineItemInput is one product entry within an order. Category, price, and
// quantity may arrive as numbers or strings depending on the upstream export.
type LineItemInput struct {
	ProductID *int64          `json:"item_id"`
	Name      string          `json:"product_name"`
	Category  json.RawMessage `json:"category"`
	Price     json.RawMessage `json:"price"`
	Quantity  json.RawMessage `json:"quantity"`
}

// FlatRow is one output row: the full customer/order/item ancestry plus the
// two derived columns. Dates use pgtype.Date so a failed parse is an explicit
// null rather than a zero time.
type FlatRow struct {
	CustomerID                int64       `json:"customer_id"`
	CustomerName              string      `json:"customer_name"`
	RegistrationDate          pgtype.Date `json:"registration_date"`
	IsVIP                     bool        `json:"is_vip"`
	OrderID                   int64       `json:"order_id"`
	OrderDate                 pgtype.Date `json:"order_date"`
	ProductID                 int64       `json:"product_id"`
	ProductName               string      `json:"product_name"`
	Category                  string      `json:"category"`
	UnitPrice                 float64     `json:"unit_price"`
	ItemQuantity              int64       `json:"item_quantity"`
	TotalItemPrice            float64     `json:"total_item_price"`
	TotalOrderValuePercentage float64     `json:"total_order_value_percentage"`
}

// Columns returns the output column names in emission order.
func Columns() []string {
	return []string{
		"customer_id",
		"customer_name",
		"registration_date",
		"is_vip",
		"order_id",
		"order_date",
		"product_id",
		"product_name",
		"category",
		"unit_price",
		"item_quantity",
		"total_item_price",
		"total_order_value_percentage",
	}
}

// RecordFailure describes a record whose subtree was dropped because a
// required field was missing or malformed. Row-local data problems (bad
// price, bad quantity) are not failures; those rows are silently excluded
// and counted in Report.Skipped.
type RecordFailure struct {
	Scope      string // "customer", "order", or "item"
	CustomerID int64  // zero when the customer ID itself is missing
	OrderID    int64  // zero outside order/item scope
	Index      int    // position within the parent list
	Reason     string
}

func (f RecordFailure) String() string {
	switch f.Scope {
	case "customer":
		return fmt.Sprintf("customer[%d]: %s", f.Index, f.Reason)
	case "order":
		return fmt.Sprintf("customer %d order[%d]: %s", f.CustomerID, f.Index, f.Reason)
	default:
		return fmt.Sprintf("customer %d order %d item[%d]: %s", f.CustomerID, f.OrderID, f.Index, f.Reason)
	}
}

// Report summarizes one transform invocation.
type Report struct {
	Rows     int             // rows emitted
	Skipped  int             // line items excluded for unparseable price/quantity
	Failures []RecordFailure // structural errors, one per dropped subtree
}
