package returns

import "time"

// UnitReturn is one unit's computed daily return with the inputs that
// produced it. This is the value cached by the time-sliced cache, so it
// carries both json tags (API responses) and msgpack tags (cache payload).
type UnitReturn struct {
	Unit           string    `json:"unit" msgpack:"unit"`
	Source         string    `json:"source" msgpack:"source"`
	Date           string    `json:"date" msgpack:"date"`
	PrevDate       string    `json:"prev_date" msgpack:"prev_date"`
	TodayAsset     float64   `json:"total_asset_today" msgpack:"today_asset"`
	YesterdayAsset float64   `json:"total_asset_yesterday" msgpack:"yesterday_asset"`
	NetFlow        float64   `json:"net_flow" msgpack:"net_flow"`
	ReturnPct      float64   `json:"return_pct" msgpack:"return_pct"`
	Undefined      bool      `json:"undefined" msgpack:"undefined"`
	ComputedAt     time.Time `json:"computed_at" msgpack:"computed_at"`
	SourceFileTime time.Time `json:"source_file_time" msgpack:"source_file_time"`
}

// Failure records one file or unit that could not be processed in a batch.
// Failures never abort the batch and are never cached.
type Failure struct {
	Unit   string `json:"unit,omitempty"`
	File   string `json:"file,omitempty"`
	Reason string `json:"reason"`
}

// BatchReport is the outcome of computing returns for every unit of a source.
type BatchReport struct {
	ReportID string       `json:"report_id"`
	Source   string       `json:"source"`
	Date     string       `json:"date"`
	PrevDate string       `json:"prev_date"`
	Results  []UnitReturn `json:"results"`
	Failures []Failure    `json:"failures"`
}
