package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fundwatch/internal/tabular"
)

func equityRow(unit string, total, stock, bond float64) tabular.Row {
	return tabular.Row{
		Key: unit,
		Num: map[string]float64{
			tabular.ColTotalAsset: total,
			tabular.ColStockValue: stock,
			tabular.ColBondValue:  bond,
		},
	}
}

func futuresRow(unit string, equity, value float64) tabular.Row {
	return tabular.Row{
		Key: unit,
		Num: map[string]float64{
			tabular.ColFuturesAsset: equity,
			tabular.ColFuturesValue: value,
		},
	}
}

func TestAggregateOuterJoin(t *testing.T) {
	equity := []tabular.Row{
		equityRow("成长一号", 1000000, 600000, 200000),
		equityRow("稳健二号", 500000, 100000, 350000),
	}
	futures := []tabular.Row{
		futuresRow("成长一号", 50000, 12000),
		futuresRow("期货四号", 80000, 75000),
	}

	snaps := Aggregate(equity, futures, "2025-08-29", "20250829-1445", "live")
	require.Len(t, snaps, 3)

	// Both sides present
	s := snaps["成长一号"]
	require.NotNil(t, s)
	assert.InDelta(t, 1050000, s.AssetSummary(), 0.001)
	assert.InDelta(t, 800000, s.TotalMarketValue(), 0.001)

	// Equity only: futures side zero-filled
	s = snaps["稳健二号"]
	require.NotNil(t, s)
	assert.Zero(t, s.FuturesTotalAsset)
	assert.InDelta(t, 500000, s.AssetSummary(), 0.001)

	// Futures only: equity side zero-filled
	s = snaps["期货四号"]
	require.NotNil(t, s)
	assert.Zero(t, s.EquityTotalAsset)
	assert.InDelta(t, 80000, s.AssetSummary(), 0.001)
	assert.Equal(t, "live", s.Source)
	assert.Equal(t, "2025-08-29", s.Date)
}

func TestAggregateSumsDuplicateUnits(t *testing.T) {
	// One row per sub-account: monetary fields sum
	equity := []tabular.Row{
		equityRow("成长一号", 600000, 400000, 100000),
		equityRow("成长一号", 400000, 200000, 100000),
	}

	snaps := Aggregate(equity, nil, "2025-08-29", "20250829-1445", "live")
	require.Len(t, snaps, 1)
	assert.InDelta(t, 1000000, snaps["成长一号"].EquityTotalAsset, 0.001)
	assert.InDelta(t, 600000, snaps["成长一号"].StockMarketValue, 0.001)
}

func TestAggregateEmpty(t *testing.T) {
	snaps := Aggregate(nil, nil, "2025-08-29", "20250829-1445", "live")
	assert.Empty(t, snaps)
}
