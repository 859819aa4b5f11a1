// Package locator discovers export files on the shared drive.
//
// The OMS drops export files into dated folders (one 8-digit YYYYMMDD folder
// per trading day) with an embedded YYYYMMDD-HHMMSS timestamp in each
// filename. Futures exports land in a separate flat directory. Naming
// schemes have drifted over the years, so each export kind carries several
// accepted filename prefixes.
package locator

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Kind identifies an export file family.
type Kind string

const (
	// KindEquityAsset - per-unit equity account asset exports
	KindEquityAsset Kind = "equity_asset"
	// KindPositions - per-unit holdings exports
	KindPositions Kind = "positions"
	// KindFuturesAsset - futures account asset exports (flat directory)
	KindFuturesAsset Kind = "futures_asset"
)

// Bucket narrows file selection to a time-of-day window.
type Bucket int

const (
	// BucketAny accepts any export time.
	BucketAny Bucket = iota
	// BucketMidday accepts exports stamped in the 11:30 minute (midday close).
	BucketMidday
	// BucketClose accepts exports stamped in the 15:00 hour (session close).
	BucketClose
)

// Template describes the accepted filenames for one export kind.
type Template struct {
	Kind     Kind
	Prefixes []string
	Exts     []string // lowercase, with leading dot
}

// Templates carries one entry per export kind, covering every naming scheme
// observed in historical exports.
var Templates = map[Kind]Template{
	KindEquityAsset: {
		Kind:     KindEquityAsset,
		Prefixes: []string{"单元资产账户资产导出_", "单元资产账户资产导出-"},
		Exts:     []string{".xlsx", ".csv"},
	},
	KindPositions: {
		Kind:     KindPositions,
		Prefixes: []string{"单元资产账户持仓导出_", "单元资产账户持仓导出-"},
		Exts:     []string{".xlsx", ".csv"},
	},
	KindFuturesAsset: {
		Kind:     KindFuturesAsset,
		Prefixes: []string{"期货资产导出_", "期货资产导出-"},
		Exts:     []string{".xlsx", ".csv"},
	},
}

// exportTimeRe matches the embedded YYYYMMDD-HHMMSS timestamp.
var exportTimeRe = regexp.MustCompile(`(\d{8})-(\d{6})`)

// ParseExportTime extracts the embedded export timestamp from a filename.
// Returns false if the filename carries no valid timestamp.
func ParseExportTime(filename string) (time.Time, bool) {
	m := exportTimeRe.FindStringSubmatch(filename)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102-150405", m[1]+"-"+m[2])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Matches reports whether filename belongs to this template.
func (t Template) Matches(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	extOK := false
	for _, e := range t.Exts {
		if ext == e {
			extOK = true
			break
		}
	}
	if !extOK {
		return false
	}

	for _, p := range t.Prefixes {
		if strings.HasPrefix(filename, p) {
			return true
		}
	}
	return false
}

// inBucket reports whether the export time falls inside the bucket.
// The midday bucket matches on the full HH:MM minute; the close bucket
// matches on the hour alone, because close exports trickle out over
// several minutes after 15:00.
func inBucket(t time.Time, bucket Bucket) bool {
	switch bucket {
	case BucketMidday:
		return t.Hour() == 11 && t.Minute() == 30
	case BucketClose:
		return t.Hour() == 15
	default:
		return true
	}
}
