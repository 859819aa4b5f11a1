package returns

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/fundwatch/internal/locator"
	"github.com/aristath/fundwatch/internal/modules/assets"
	"github.com/aristath/fundwatch/internal/modules/cashflow"
	"github.com/aristath/fundwatch/internal/tabular"
	"github.com/aristath/fundwatch/internal/utils"
)

// maxDateLookback bounds how many dated folders are scanned when searching
// for the two most recent days with usable data.
const maxDateLookback = 10

// Service reconciles exports and ledger flows into unit returns.
// It drives the full pipeline: locate the newest exports for the two most
// recent trading days, parse and merge them into snapshots, pull the day's
// net cash flow, and run the return calculation.
type Service struct {
	loc   *locator.Locator
	flows *cashflow.Repository
	log   zerolog.Logger
}

// NewService creates a new reconciliation service.
func NewService(loc *locator.Locator, flows *cashflow.Repository, log zerolog.Logger) *Service {
	return &Service{
		loc:   loc,
		flows: flows,
		log:   log.With().Str("service", "returns").Logger(),
	}
}

// daySnapshots builds the per-unit snapshots for one trading day.
// The equity export is mandatory; the futures export is optional and a
// futures parse failure degrades to equity-only snapshots. Returns the
// greatest embedded export time of the files actually used.
func (s *Service) daySnapshots(source string, date time.Time) (map[string]*assets.Snapshot, time.Time, bool, []Failure) {
	var failures []Failure

	equityHit, found, err := s.loc.LatestFile(source, date, locator.KindEquityAsset, locator.BucketAny)
	if err != nil {
		failures = append(failures, Failure{Reason: err.Error()})
		return nil, time.Time{}, false, failures
	}
	if !found {
		return nil, time.Time{}, false, nil
	}

	equityTable, err := tabular.Parse(equityHit.Path, tabular.EquityAssetSchema)
	if err != nil {
		var serr *tabular.SchemaError
		reason := err.Error()
		if errors.As(err, &serr) {
			reason = serr.Error()
		}
		failures = append(failures, Failure{File: equityHit.Path, Reason: reason})
		return nil, time.Time{}, false, failures
	}

	maxExport := equityHit.ExportTime
	var futuresRows []tabular.Row

	futuresHit, found, err := s.loc.LatestFuturesFile(source, date)
	if err != nil {
		failures = append(failures, Failure{Reason: err.Error()})
	} else if found {
		futuresTable, err := tabular.Parse(futuresHit.Path, tabular.FuturesAssetSchema)
		if err != nil {
			// Equity-only snapshots are still usable
			failures = append(failures, Failure{File: futuresHit.Path, Reason: err.Error()})
			s.log.Warn().Err(err).Str("file", futuresHit.Path).Msg("Futures export unusable, continuing equity-only")
		} else {
			futuresRows = futuresTable.Rows
			if futuresHit.ExportTime.After(maxExport) {
				maxExport = futuresHit.ExportTime
			}
		}
	}

	dateStr := date.Format(utils.DateLayout)
	slot := equityHit.ExportTime.Format("20060102-1504")
	snaps := assets.Aggregate(equityTable.Rows, futuresRows, dateStr, slot, source)

	return snaps, maxExport, true, failures
}

// DayAssets returns each unit's combined assets for one trading day.
// Returns found=false when the day has no usable equity export.
func (s *Service) DayAssets(source string, date time.Time) (map[string]float64, bool, error) {
	snaps, _, ok, _ := s.daySnapshots(source, date)
	if !ok {
		return nil, false, nil
	}

	out := make(map[string]float64, len(snaps))
	for unit, snap := range snaps {
		out[unit] = snap.AssetSummary()
	}
	return out, true, nil
}

// tradingDays holds the resolved data for the two most recent usable days.
type tradingDays struct {
	today      time.Time
	yesterday  time.Time
	snapsToday map[string]*assets.Snapshot
	snapsYest  map[string]*assets.Snapshot
	sourceTime time.Time // newest export time backing today's snapshots
	failures   []Failure
}

// resolveDays finds the two most recent dates with usable equity data.
func (s *Service) resolveDays(source string) (*tradingDays, bool, error) {
	dates, err := s.loc.LatestDates(source, maxDateLookback)
	if err != nil {
		return nil, false, err
	}

	td := &tradingDays{}
	have := 0

	for _, date := range dates {
		snaps, maxExport, ok, failures := s.daySnapshots(source, date)
		td.failures = append(td.failures, failures...)
		if !ok {
			continue
		}

		if have == 0 {
			td.today = date
			td.snapsToday = snaps
			td.sourceTime = maxExport
		} else {
			td.yesterday = date
			td.snapsYest = snaps
		}
		have++
		if have == 2 {
			return td, true, nil
		}
	}

	return td, false, nil
}

// ComputeAll computes returns for every unit of a source.
//
// Per-unit problems (missing ledger rows, no previous-day data) are
// collected as failures or Undefined results and never abort the batch.
// Returns found=false when fewer than two trading days have usable data.
func (s *Service) ComputeAll(source string) (*BatchReport, bool, error) {
	defer utils.OperationTimer("compute_all_returns", s.log)()

	td, found, err := s.resolveDays(source)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	report := &BatchReport{
		ReportID: uuid.New().String(),
		Source:   source,
		Date:     td.today.Format(utils.DateLayout),
		PrevDate: td.yesterday.Format(utils.DateLayout),
		Failures: td.failures,
	}

	units := make([]string, 0, len(td.snapsToday))
	for unit := range td.snapsToday {
		units = append(units, unit)
	}
	sort.Strings(units)

	for _, unit := range units {
		ur, err := s.computeUnit(td, source, unit)
		if err != nil {
			report.Failures = append(report.Failures, Failure{Unit: unit, Reason: err.Error()})
			continue
		}
		report.Results = append(report.Results, *ur)
	}

	s.log.Info().
		Str("source", source).
		Str("report_id", report.ReportID).
		Int("results", len(report.Results)).
		Int("failures", len(report.Failures)).
		Msg("Batch return computation completed")

	return report, true, nil
}

// ComputeUnitReturn computes the return for a single unit.
// Returns found=false when the source has insufficient data or the unit
// has no snapshot today.
func (s *Service) ComputeUnitReturn(source, unit string) (*UnitReturn, bool, error) {
	td, found, err := s.resolveDays(source)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	if _, ok := td.snapsToday[unit]; !ok {
		return nil, false, nil
	}

	ur, err := s.computeUnit(td, source, unit)
	if err != nil {
		return nil, false, err
	}
	return ur, true, nil
}

// computeUnit runs the calculation for one unit against resolved days.
func (s *Service) computeUnit(td *tradingDays, source, unit string) (*UnitReturn, error) {
	snapToday := td.snapsToday[unit]
	if snapToday == nil {
		return nil, fmt.Errorf("no snapshot for unit")
	}

	var yesterdayAsset float64
	if snapYest := td.snapsYest[unit]; snapYest != nil {
		yesterdayAsset = snapYest.AssetSummary()
	}

	dateStr := td.today.Format(utils.DateLayout)
	netFlow, err := s.flows.NetFlow(unit, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to get net flow: %w", err)
	}

	todayAsset := snapToday.AssetSummary()
	result := ComputeReturn(todayAsset, yesterdayAsset, netFlow)

	return &UnitReturn{
		Unit:           unit,
		Source:         source,
		Date:           dateStr,
		PrevDate:       td.yesterday.Format(utils.DateLayout),
		TodayAsset:     todayAsset,
		YesterdayAsset: yesterdayAsset,
		NetFlow:        netFlow,
		ReturnPct:      result.Pct,
		Undefined:      result.Undefined,
		ComputedAt:     time.Now(),
		SourceFileTime: td.sourceTime,
	}, nil
}
