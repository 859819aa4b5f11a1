// Package assets merges equity and futures export rows into per-unit
// asset snapshots.
package assets

// Snapshot is the point-in-time asset state of one fund unit.
// It is a value object: built once from parsed export rows, never persisted
// and never mutated afterwards.
type Snapshot struct {
	Unit               string  `json:"unit"`
	Date               string  `json:"date"`      // YYYY-MM-DD trading date
	TimeSlot           string  `json:"time_slot"` // slot label the snapshot was taken in
	Source             string  `json:"source"`
	EquityTotalAsset   float64 `json:"equity_total_asset"`
	FuturesTotalAsset  float64 `json:"futures_total_asset"`
	StockMarketValue   float64 `json:"stock_market_value"`
	BondMarketValue    float64 `json:"bond_market_value"`
	FuturesMarketValue float64 `json:"futures_market_value"`
}

// AssetSummary is the unit's combined asset figure across both accounts.
func (s *Snapshot) AssetSummary() float64 {
	return s.EquityTotalAsset + s.FuturesTotalAsset
}

// TotalMarketValue is the invested portion of the equity account.
func (s *Snapshot) TotalMarketValue() float64 {
	return s.StockMarketValue + s.BondMarketValue
}
