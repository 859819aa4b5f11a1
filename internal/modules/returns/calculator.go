// Package returns computes cash-flow-adjusted daily returns for fund units.
package returns

// Result is the outcome of a single return calculation.
// Undefined is a sentinel, not an error: a unit with no previous-day base
// (new unit, or fully redeemed yesterday) has no meaningful return.
type Result struct {
	Pct       float64
	Undefined bool
}

// ComputeReturn calculates the cash-flow-adjusted daily return percentage.
//
// Subscriptions and redemptions move assets without performance behind
// them, so the day's net flow (inflow - outflow) is subtracted from
// today's assets before comparing against yesterday:
//
//	pct = (today - yesterday - netFlow) / yesterday * 100
//
// A zero or negative yesterday base yields Undefined.
func ComputeReturn(today, yesterday, netFlow float64) Result {
	if yesterday <= 0 {
		return Result{Undefined: true}
	}

	return Result{
		Pct: (today - yesterday - netFlow) / yesterday * 100,
	}
}
