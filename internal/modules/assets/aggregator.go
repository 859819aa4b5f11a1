package assets

import (
	"github.com/aristath/fundwatch/internal/tabular"
)

// Aggregate outer-joins equity and futures rows by unit name.
//
// A unit present on only one side gets zeros for the other side's fields.
// Duplicate unit rows within one side have their monetary fields summed;
// the OMS emits one row per sub-account for some units.
func Aggregate(equityRows, futuresRows []tabular.Row, date, timeSlot, source string) map[string]*Snapshot {
	snapshots := make(map[string]*Snapshot)

	get := func(unit string) *Snapshot {
		if s, ok := snapshots[unit]; ok {
			return s
		}
		s := &Snapshot{
			Unit:     unit,
			Date:     date,
			TimeSlot: timeSlot,
			Source:   source,
		}
		snapshots[unit] = s
		return s
	}

	for _, row := range equityRows {
		s := get(row.Key)
		s.EquityTotalAsset += row.Num[tabular.ColTotalAsset]
		s.StockMarketValue += row.Num[tabular.ColStockValue]
		s.BondMarketValue += row.Num[tabular.ColBondValue]
	}

	for _, row := range futuresRows {
		s := get(row.Key)
		s.FuturesTotalAsset += row.Num[tabular.ColFuturesAsset]
		s.FuturesMarketValue += row.Num[tabular.ColFuturesValue]
	}

	return snapshots
}
