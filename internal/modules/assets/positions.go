package assets

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/fundwatch/internal/locator"
	"github.com/aristath/fundwatch/internal/tabular"
	"github.com/aristath/fundwatch/internal/utils"
)

// Holding is one security position from the holdings export.
type Holding struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	MarketValue float64 `json:"market_value"`
	ChangePct   float64 `json:"change_pct"`
}

// HoldingsReport is the parsed holdings export for one source.
type HoldingsReport struct {
	Source     string    `json:"source"`
	Date       string    `json:"date"`
	ExportTime string    `json:"export_time"`
	Holdings   []Holding `json:"holdings"`
}

// PositionsService reads the newest holdings export for a source.
type PositionsService struct {
	loc *locator.Locator
	log zerolog.Logger
}

// NewPositionsService creates a new positions service.
func NewPositionsService(loc *locator.Locator, log zerolog.Logger) *PositionsService {
	return &PositionsService{
		loc: loc,
		log: log.With().Str("service", "positions").Logger(),
	}
}

// Latest returns the holdings from the newest positions export, sorted by
// market value descending. Returns found=false when no export exists.
func (s *PositionsService) Latest(source string) (*HoldingsReport, bool, error) {
	dates, err := s.loc.LatestDates(source, 1)
	if err != nil {
		return nil, false, err
	}
	if len(dates) == 0 {
		return nil, false, nil
	}

	hit, found, err := s.loc.LatestFile(source, dates[0], locator.KindPositions, locator.BucketAny)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	table, err := tabular.Parse(hit.Path, tabular.PositionsSchema)
	if err != nil {
		return nil, false, err
	}

	holdings := make([]Holding, 0, len(table.Rows))
	for _, row := range table.Rows {
		holdings = append(holdings, Holding{
			Symbol:      row.Key,
			Name:        row.Text[tabular.ColName],
			MarketValue: row.Num[tabular.ColMarketValue],
			ChangePct:   row.Num[tabular.ColChangePct],
		})
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].MarketValue > holdings[j].MarketValue
	})

	return &HoldingsReport{
		Source:     source,
		Date:       dates[0].Format(utils.DateLayout),
		ExportTime: hit.ExportTime.Format("2006-01-02 15:04:05"),
		Holdings:   holdings,
	}, true, nil
}
