// Package cashflow manages the cash-flow ledger for fund units.
package cashflow

import "time"

// Flow type constants. The ledger accepts nothing else.
const (
	FlowInflow  = "inflow"
	FlowOutflow = "outflow"
)

// Event is one recorded cash movement for a unit on a trading day.
// The ledger keeps at most one row per (unit, date, type); recording a
// flow for an existing key replaces the previous amount.
type Event struct {
	ID        int       `json:"id"`
	UnitName  string    `json:"unit_name"`
	Date      string    `json:"date"` // YYYY-MM-DD
	FlowType  string    `json:"flow_type"`
	Amount    float64   `json:"amount"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidFlowType reports whether t is an accepted flow type.
func ValidFlowType(t string) bool {
	return t == FlowInflow || t == FlowOutflow
}
