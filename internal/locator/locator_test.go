package locator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fundwatch/internal/config"
)

func newTestLocator(t *testing.T) (*Locator, string) {
	t.Helper()

	root := t.TempDir()
	futures := filepath.Join(root, "futures")
	require.NoError(t, os.MkdirAll(futures, 0755))

	loc := New([]config.SourceConfig{
		{Name: "live", ExportsDir: root, FuturesDir: futures},
	}, zerolog.Nop())
	return loc, root
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestParseExportTime(t *testing.T) {
	ts, ok := ParseExportTime("单元资产账户资产导出_20250829-153012.xlsx")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 8, 29, 15, 30, 12, 0, time.UTC), ts)

	_, ok = ParseExportTime("notes.txt")
	assert.False(t, ok)

	// Invalid calendar date inside an otherwise well-formed stamp
	_, ok = ParseExportTime("单元资产账户资产导出_20251399-153012.xlsx")
	assert.False(t, ok)
}

func TestTemplateMatches(t *testing.T) {
	tmpl := Templates[KindEquityAsset]

	assert.True(t, tmpl.Matches("单元资产账户资产导出_20250829-153012.xlsx"))
	assert.True(t, tmpl.Matches("单元资产账户资产导出-20250829-153012.csv"))
	// Positions export must not match the asset template
	assert.False(t, tmpl.Matches("单元资产账户持仓导出_20250829-153012.xlsx"))
	assert.False(t, tmpl.Matches("单元资产账户资产导出_20250829-153012.pdf"))
}

func TestLatestFilePicksNewest(t *testing.T) {
	loc, root := newTestLocator(t)
	date := time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(root, "20250829", "单元资产账户资产导出_20250829-093005.xlsx"))
	touch(t, filepath.Join(root, "20250829", "单元资产账户资产导出_20250829-143000.xlsx"))
	// Nested one level down, still discovered
	touch(t, filepath.Join(root, "20250829", "batch2", "单元资产账户资产导出_20250829-145900.xlsx"))

	hit, found, err := loc.LatestFile("live", date, KindEquityAsset, BucketAny)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, time.Date(2025, 8, 29, 14, 59, 0, 0, time.UTC), hit.ExportTime)
	assert.Contains(t, hit.Path, "batch2")
}

func TestLatestFileBuckets(t *testing.T) {
	loc, root := newTestLocator(t)
	date := time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(root, "20250829", "单元资产账户资产导出_20250829-113002.xlsx"))
	touch(t, filepath.Join(root, "20250829", "单元资产账户资产导出_20250829-150212.xlsx"))
	touch(t, filepath.Join(root, "20250829", "单元资产账户资产导出_20250829-154500.xlsx"))

	hit, found, err := loc.LatestFile("live", date, KindEquityAsset, BucketMidday)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 11, hit.ExportTime.Hour())
	assert.Equal(t, 30, hit.ExportTime.Minute())

	// Close bucket matches the whole 15:00 hour and picks the newest
	hit, found, err = loc.LatestFile("live", date, KindEquityAsset, BucketClose)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 45, hit.ExportTime.Minute())
}

func TestLatestFileNotFound(t *testing.T) {
	loc, root := newTestLocator(t)
	date := time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)

	// Missing date folder is not an error
	hit, found, err := loc.LatestFile("live", date, KindEquityAsset, BucketAny)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, hit)

	// Folder exists but holds no matching files
	touch(t, filepath.Join(root, "20250829", "readme.txt"))
	_, found, err = loc.LatestFile("live", date, KindEquityAsset, BucketAny)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLatestFileUnknownSource(t *testing.T) {
	loc, _ := newTestLocator(t)

	_, _, err := loc.LatestFile("paper", time.Now(), KindEquityAsset, BucketAny)
	assert.Error(t, err)
}

func TestLatestDates(t *testing.T) {
	loc, root := newTestLocator(t)

	touch(t, filepath.Join(root, "20250827", "x.csv"))
	touch(t, filepath.Join(root, "20250829", "x.csv"))
	touch(t, filepath.Join(root, "20250828", "x.csv"))
	// Non-date folders are ignored
	touch(t, filepath.Join(root, "archive", "x.csv"))

	dates, err := loc.LatestDates("live", 2)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, "20250829", dates[0].Format("20060102"))
	assert.Equal(t, "20250828", dates[1].Format("20060102"))
}

func TestLatestFuturesFileFallback(t *testing.T) {
	loc, root := newTestLocator(t)
	futures := filepath.Join(root, "futures")
	date := time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC)

	// Only an older file available: fallback applies
	touch(t, filepath.Join(futures, "期货资产导出_20250827-150500.xlsx"))
	hit, found, err := loc.LatestFuturesFile("live", date)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 27, hit.ExportTime.Day())

	// Exact-date file wins over the fallback
	touch(t, filepath.Join(futures, "期货资产导出_20250829-113000.xlsx"))
	hit, found, err = loc.LatestFuturesFile("live", date)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 29, hit.ExportTime.Day())

	// Files newer than the requested date never leak backwards
	touch(t, filepath.Join(futures, "期货资产导出_20250901-150000.xlsx"))
	hit, _, err = loc.LatestFuturesFile("live", date)
	require.NoError(t, err)
	assert.Equal(t, 29, hit.ExportTime.Day())
}

func TestFreshestTime(t *testing.T) {
	loc, root := newTestLocator(t)
	futures := filepath.Join(root, "futures")

	touch(t, filepath.Join(root, "20250829", "单元资产账户资产导出_20250829-113000.xlsx"))
	touch(t, filepath.Join(futures, "期货资产导出_20250829-150000.xlsx"))

	freshest, found, err := loc.FreshestTime("live")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 15, freshest.Hour())

	// Empty source reports not found
	empty := New([]config.SourceConfig{
		{Name: "sim", ExportsDir: filepath.Join(root, "nope"), FuturesDir: filepath.Join(root, "nope2")},
	}, zerolog.Nop())
	_, found, err = empty.FreshestTime("sim")
	require.NoError(t, err)
	assert.False(t, found)
}
