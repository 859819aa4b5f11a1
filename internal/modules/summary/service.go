// Package summary aggregates daily unit returns into weekly statistics.
package summary

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/fundwatch/internal/locator"
	"github.com/aristath/fundwatch/internal/modules/cashflow"
	"github.com/aristath/fundwatch/internal/modules/returns"
	"github.com/aristath/fundwatch/internal/utils"
)

// DailyReturn is one unit's return on one day of the week.
type DailyReturn struct {
	Date      string  `json:"date"`
	ReturnPct float64 `json:"return_pct"`
}

// UnitWeekStats summarizes one unit's returns over a week.
type UnitWeekStats struct {
	Unit    string        `json:"unit"`
	Days    int           `json:"days"`
	Mean    float64       `json:"mean"`
	Min     float64       `json:"min"`
	Max     float64       `json:"max"`
	StdDev  float64       `json:"std_dev"`
	Returns []DailyReturn `json:"returns"`
}

// DayAvailability reports whether a weekday had usable export data.
type DayAvailability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// WeekStats is the weekly summary for one source.
type WeekStats struct {
	Source       string            `json:"source"`
	WeekStart    string            `json:"week_start"`
	WeekEnd      string            `json:"week_end"`
	Units        []UnitWeekStats   `json:"units"`
	Availability []DayAvailability `json:"availability"`
}

// Service computes weekly return summaries from daily export data.
type Service struct {
	loc     *locator.Locator
	returns *returns.Service
	flows   *cashflow.Repository
	log     zerolog.Logger
}

// NewService creates a new summary service.
func NewService(loc *locator.Locator, ret *returns.Service, flows *cashflow.Repository, log zerolog.Logger) *Service {
	return &Service{
		loc:     loc,
		returns: ret,
		flows:   flows,
		log:     log.With().Str("service", "summary").Logger(),
	}
}

// WeekStats computes per-unit return statistics for the week containing ref.
//
// Each weekday's return compares against the previous available day, with
// the day's net cash flow subtracted first. Days without data are skipped
// and reported in the availability list; a unit needs at least one defined
// daily return to appear in the result.
func (s *Service) WeekStats(source string, ref time.Time) (*WeekStats, error) {
	monday, friday := utils.WeekBounds(ref)

	stats := &WeekStats{
		Source:    source,
		WeekStart: monday.Format(utils.DateLayout),
		WeekEnd:   friday.Format(utils.DateLayout),
	}

	// Week days plus the nearest earlier day as the base for Monday's return
	weekDays, base, err := s.resolveWeekDays(source, monday, friday)
	if err != nil {
		return nil, err
	}

	available := make(map[string]bool, len(weekDays))
	for _, d := range weekDays {
		available[d.Format(utils.DateLayout)] = true
	}
	for d := monday; !d.After(friday); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format(utils.DateLayout)
		stats.Availability = append(stats.Availability, DayAvailability{
			Date:      dateStr,
			Available: available[dateStr],
		})
	}

	if len(weekDays) == 0 {
		return stats, nil
	}

	chain := weekDays
	if !base.IsZero() {
		chain = append([]time.Time{base}, weekDays...)
	}

	perUnit := make(map[string][]DailyReturn)

	prevAssets, _, err := s.returns.DayAssets(source, chain[0])
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(chain); i++ {
		curAssets, ok, err := s.returns.DayAssets(source, chain[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		dateStr := chain[i].Format(utils.DateLayout)
		for unit, today := range curAssets {
			yesterday := prevAssets[unit]

			netFlow, err := s.flows.NetFlow(unit, dateStr)
			if err != nil {
				s.log.Warn().Err(err).Str("unit", unit).Msg("Net flow lookup failed, assuming zero")
				netFlow = 0
			}

			res := returns.ComputeReturn(today, yesterday, netFlow)
			if res.Undefined {
				continue
			}
			perUnit[unit] = append(perUnit[unit], DailyReturn{Date: dateStr, ReturnPct: res.Pct})
		}

		prevAssets = curAssets
	}

	units := make([]string, 0, len(perUnit))
	for unit := range perUnit {
		units = append(units, unit)
	}
	sort.Strings(units)

	for _, unit := range units {
		daily := perUnit[unit]
		values := make([]float64, len(daily))
		for i, d := range daily {
			values[i] = d.ReturnPct
		}

		u := UnitWeekStats{
			Unit:    unit,
			Days:    len(values),
			Mean:    stat.Mean(values, nil),
			Min:     floats.Min(values),
			Max:     floats.Max(values),
			Returns: daily,
		}
		if len(values) > 1 {
			u.StdDev = stat.StdDev(values, nil)
		}
		stats.Units = append(stats.Units, u)
	}

	return stats, nil
}

// resolveWeekDays returns the week's dates with export folders (ascending)
// and the newest date before the week, zero if none exists.
func (s *Service) resolveWeekDays(source string, monday, friday time.Time) ([]time.Time, time.Time, error) {
	// 30 folders comfortably covers the week plus the preceding base day
	dates, err := s.loc.LatestDates(source, 30)
	if err != nil {
		return nil, time.Time{}, err
	}

	var weekDays []time.Time
	var base time.Time

	for _, d := range dates {
		switch {
		case d.Before(monday):
			if base.IsZero() || d.After(base) {
				base = d
			}
		case !d.After(friday):
			weekDays = append(weekDays, d)
		}
	}

	sort.Slice(weekDays, func(i, j int) bool { return weekDays[i].Before(weekDays[j]) })
	return weekDays, base, nil
}
