package cashflow

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fundwatch/internal/utils"
)

// amountEpsilon is the tolerance used when matching amounts for removal.
const amountEpsilon = 0.005

// Repository handles cash flow persistence in ledger.db.
//
// Cash flows adjust the return calculation: subscriptions and redemptions
// move a unit's assets without any investment performance behind them, so
// the calculator subtracts the day's net flow before comparing against the
// previous day. Getting these rows wrong silently corrupts every reported
// return, which is why this database runs on the ledger profile.
type Repository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewRepository creates a new cash flow repository.
func NewRepository(ledgerDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "cashflow").Logger(),
	}
}

// AddFlow records a cash flow for a unit on a trading day.
// At most one row exists per (unit, date, type): re-recording replaces the
// previous amount. Callers that want same-day accumulation must read the
// existing amount first and write the sum.
func (r *Repository) AddFlow(unit, date, flowType string, amount float64, note string) error {
	if unit == "" {
		return fmt.Errorf("unit name is required")
	}
	if !ValidFlowType(flowType) {
		return fmt.Errorf("invalid flow type %q (want %s or %s)", flowType, FlowInflow, FlowOutflow)
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %f", amount)
	}

	dateUnix, err := utils.DateToUnix(date)
	if err != nil {
		return fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	query := `
		INSERT OR REPLACE INTO cash_flows (unit_name, flow_date, flow_type, amount, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.ledgerDB.Exec(query, unit, dateUnix, flowType, amount, note, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record cash flow: %w", err)
	}

	r.log.Info().
		Str("unit", unit).
		Str("date", date).
		Str("flow_type", flowType).
		Float64("amount", amount).
		Msg("Cash flow recorded")

	return nil
}

// GetFlow returns the recorded flow for (unit, date, type), nil if none.
func (r *Repository) GetFlow(unit, date, flowType string) (*Event, error) {
	dateUnix, err := utils.DateToUnix(date)
	if err != nil {
		return nil, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	query := `
		SELECT id, unit_name, flow_date, flow_type, amount, note, created_at
		FROM cash_flows
		WHERE unit_name = ? AND flow_date = ? AND flow_type = ?
	`

	row := r.ledgerDB.QueryRow(query, unit, dateUnix, flowType)
	ev, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash flow: %w", err)
	}
	return ev, nil
}

// NetFlow returns inflow minus outflow for a unit on a trading day.
// Zero when nothing is recorded.
func (r *Repository) NetFlow(unit, date string) (float64, error) {
	dateUnix, err := utils.DateToUnix(date)
	if err != nil {
		return 0, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	query := `
		SELECT COALESCE(SUM(CASE WHEN flow_type = 'inflow' THEN amount ELSE -amount END), 0)
		FROM cash_flows
		WHERE unit_name = ? AND flow_date = ?
	`

	var net float64
	if err := r.ledgerDB.QueryRow(query, unit, dateUnix).Scan(&net); err != nil {
		return 0, fmt.Errorf("failed to compute net flow: %w", err)
	}
	return net, nil
}

// RemoveFlow deletes the flow matching (unit, date, type) only when the
// stored amount matches the given amount within a small tolerance.
// Returns whether a row was removed.
func (r *Repository) RemoveFlow(unit, date, flowType string, amount float64) (bool, error) {
	existing, err := r.GetFlow(unit, date, flowType)
	if err != nil {
		return false, err
	}
	if existing == nil || math.Abs(existing.Amount-amount) > amountEpsilon {
		return false, nil
	}

	result, err := r.ledgerDB.Exec(
		"DELETE FROM cash_flows WHERE id = ?", existing.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove cash flow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected > 0 {
		r.log.Info().
			Str("unit", unit).
			Str("date", date).
			Str("flow_type", flowType).
			Float64("amount", amount).
			Msg("Cash flow removed")
	}

	return affected > 0, nil
}

// RemoveAllFlows deletes every flow recorded for a unit.
// Returns the number of rows removed.
func (r *Repository) RemoveAllFlows(unit string) (int64, error) {
	result, err := r.ledgerDB.Exec("DELETE FROM cash_flows WHERE unit_name = ?", unit)
	if err != nil {
		return 0, fmt.Errorf("failed to remove cash flows for %s: %w", unit, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// FlowsByUnit retrieves all flows for a unit, newest first.
func (r *Repository) FlowsByUnit(unit string) ([]Event, error) {
	query := `
		SELECT id, unit_name, flow_date, flow_type, amount, note, created_at
		FROM cash_flows
		WHERE unit_name = ?
		ORDER BY flow_date DESC, flow_type ASC
	`

	rows, err := r.ledgerDB.Query(query, unit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash flows: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Totals returns the lifetime inflow and outflow sums for a unit.
func (r *Repository) Totals(unit string) (inflow, outflow float64, err error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN flow_type = 'inflow' THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN flow_type = 'outflow' THEN amount ELSE 0 END), 0)
		FROM cash_flows
		WHERE unit_name = ?
	`

	if err := r.ledgerDB.QueryRow(query, unit).Scan(&inflow, &outflow); err != nil {
		return 0, 0, fmt.Errorf("failed to compute totals: %w", err)
	}
	return inflow, outflow, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(s rowScanner) (*Event, error) {
	var ev Event
	var dateUnix, createdAt int64
	var note sql.NullString

	if err := s.Scan(&ev.ID, &ev.UnitName, &dateUnix, &ev.FlowType, &ev.Amount, &note, &createdAt); err != nil {
		return nil, err
	}

	ev.Date = utils.UnixToDate(dateUnix)
	ev.Note = note.String
	ev.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &ev, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event

	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash flow: %w", err)
		}
		events = append(events, *ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cash flows: %w", err)
	}

	return events, nil
}
