package locator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/fundwatch/internal/config"
	"github.com/aristath/fundwatch/internal/utils"
)

// Hit is a located export file.
type Hit struct {
	Path       string
	ExportTime time.Time
}

// Locator resolves export files for the configured sources.
//
// Absence is part of normal operation here: on weekends, holidays, or before
// the first export of the day there is simply nothing on the drive, so every
// lookup reports found=false rather than an error. Errors are reserved for
// unknown sources and filesystem failures other than non-existence.
type Locator struct {
	sources map[string]config.SourceConfig
	log     zerolog.Logger
}

// New creates a locator over the configured export sources.
func New(sources []config.SourceConfig, log zerolog.Logger) *Locator {
	m := make(map[string]config.SourceConfig, len(sources))
	for _, s := range sources {
		m[s.Name] = s
	}
	return &Locator{
		sources: m,
		log:     log.With().Str("service", "locator").Logger(),
	}
}

// Sources returns the configured source names.
func (l *Locator) Sources() []string {
	names := make([]string, 0, len(l.sources))
	for name := range l.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Locator) source(name string) (config.SourceConfig, error) {
	s, ok := l.sources[name]
	if !ok {
		return config.SourceConfig{}, fmt.Errorf("unknown source %q", name)
	}
	return s, nil
}

// LatestDates returns up to n trading dates that have a dated export folder,
// newest first. A missing exports root yields an empty slice.
func (l *Locator) LatestDates(source string, n int) ([]time.Time, error) {
	src, err := l.source(source)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(src.ExportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read exports root %s: %w", src.ExportsDir, err)
	}

	var dates []time.Time
	for _, e := range entries {
		if !e.IsDir() || !utils.IsCompactDate(e.Name()) {
			continue
		}
		d, err := utils.ParseCompactDate(e.Name())
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	if n > 0 && len(dates) > n {
		dates = dates[:n]
	}
	return dates, nil
}

// LatestFile finds the newest export of the given kind for a trading date,
// optionally restricted to a time bucket. The dated folder is walked
// recursively because some export tools nest files one level down.
// Returns found=false when the folder or a matching file does not exist.
func (l *Locator) LatestFile(source string, date time.Time, kind Kind, bucket Bucket) (Hit, bool, error) {
	src, err := l.source(source)
	if err != nil {
		return Hit{}, false, err
	}

	tmpl, ok := Templates[kind]
	if !ok {
		return Hit{}, false, fmt.Errorf("unknown export kind %q", kind)
	}

	dayDir := filepath.Join(src.ExportsDir, utils.FormatCompactDate(date))
	return l.newestMatch(dayDir, tmpl, bucket)
}

// newestMatch walks dir recursively and returns the matching file with the
// greatest embedded export time.
func (l *Locator) newestMatch(dir string, tmpl Template, bucket Bucket) (Hit, bool, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return Hit{}, false, nil
		}
		return Hit{}, false, fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	var best Hit
	found := false

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A file disappearing mid-walk is normal on a shared drive
			l.log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if !tmpl.Matches(name) {
			return nil
		}
		ts, ok := ParseExportTime(name)
		if !ok || !inBucket(ts, bucket) {
			return nil
		}

		if !found || ts.After(best.ExportTime) {
			best = Hit{Path: path, ExportTime: ts}
			found = true
		}
		return nil
	})
	if err != nil {
		return Hit{}, false, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	return best, found, nil
}

// LatestFuturesFile finds the newest futures asset export for a trading date.
// Futures exports live in a flat directory. When no file is stamped with the
// requested date, the newest earlier file is used instead - the futures desk
// only re-exports when balances change.
func (l *Locator) LatestFuturesFile(source string, date time.Time) (Hit, bool, error) {
	src, err := l.source(source)
	if err != nil {
		return Hit{}, false, err
	}

	entries, err := os.ReadDir(src.FuturesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Hit{}, false, nil
		}
		return Hit{}, false, fmt.Errorf("failed to read futures dir %s: %w", src.FuturesDir, err)
	}

	tmpl := Templates[KindFuturesAsset]
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, date.Location())

	var exact, fallback Hit
	var haveExact, haveFallback bool

	for _, e := range entries {
		if e.IsDir() || !tmpl.Matches(e.Name()) {
			continue
		}
		ts, ok := ParseExportTime(e.Name())
		if !ok {
			continue
		}

		path := filepath.Join(src.FuturesDir, e.Name())
		sameDay := ts.Year() == date.Year() && ts.YearDay() == date.YearDay()

		if sameDay {
			if !haveExact || ts.After(exact.ExportTime) {
				exact = Hit{Path: path, ExportTime: ts}
				haveExact = true
			}
		} else if ts.Before(dayEnd) {
			if !haveFallback || ts.After(fallback.ExportTime) {
				fallback = Hit{Path: path, ExportTime: ts}
				haveFallback = true
			}
		}
	}

	if haveExact {
		return exact, true, nil
	}
	if haveFallback {
		l.log.Debug().
			Str("source", source).
			Str("date", utils.FormatCompactDate(date)).
			Time("fallback_export", fallback.ExportTime).
			Msg("No futures export for date, using newest earlier file")
		return fallback, true, nil
	}
	return Hit{}, false, nil
}

// FreshestTime returns the greatest embedded export timestamp across the
// newest trading date's equity and futures exports. The cache layer compares
// this against stored entries to detect that newer data has arrived.
func (l *Locator) FreshestTime(source string) (time.Time, bool, error) {
	dates, err := l.LatestDates(source, 1)
	if err != nil {
		return time.Time{}, false, err
	}
	if len(dates) == 0 {
		return time.Time{}, false, nil
	}

	var freshest time.Time
	found := false

	if hit, ok, err := l.LatestFile(source, dates[0], KindEquityAsset, BucketAny); err != nil {
		return time.Time{}, false, err
	} else if ok {
		freshest = hit.ExportTime
		found = true
	}

	if hit, ok, err := l.LatestFuturesFile(source, dates[0]); err != nil {
		return time.Time{}, false, err
	} else if ok && (!found || hit.ExportTime.After(freshest)) {
		freshest = hit.ExportTime
		found = true
	}

	return freshest, found, nil
}
