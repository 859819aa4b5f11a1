package returns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fundwatch/internal/config"
	"github.com/aristath/fundwatch/internal/locator"
	"github.com/aristath/fundwatch/internal/modules/cashflow"
	fwtesting "github.com/aristath/fundwatch/internal/testing"
)

type serviceFixture struct {
	svc   *Service
	flows *cashflow.Repository
	root  string
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	root := t.TempDir()
	futures := filepath.Join(root, "futures")
	require.NoError(t, os.MkdirAll(futures, 0755))

	loc := locator.New([]config.SourceConfig{
		{Name: "live", ExportsDir: root, FuturesDir: futures},
	}, zerolog.Nop())

	db, cleanup := fwtesting.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)
	flows := cashflow.NewRepository(db.Conn(), zerolog.Nop())

	return &serviceFixture{
		svc:   NewService(loc, flows, zerolog.Nop()),
		flows: flows,
		root:  root,
	}
}

func (f *serviceFixture) writeExport(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(f.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (f *serviceFixture) writeStandardDays(t *testing.T) {
	t.Helper()
	f.writeExport(t, "20250828/单元资产账户资产导出_20250828-150000.csv",
		"单元名称,总资产\n成长一号,1000000\n稳健二号,500000\n")
	f.writeExport(t, "20250829/单元资产账户资产导出_20250829-150000.csv",
		"单元名称,总资产\n成长一号,1050000\n稳健二号,505000\n新发三号,200000\n")
}

func TestComputeAllAdjustsForInflow(t *testing.T) {
	f := newServiceFixture(t)
	f.writeStandardDays(t)
	require.NoError(t, f.flows.AddFlow("成长一号", "2025-08-29", cashflow.FlowInflow, 40000, ""))

	report, found, err := f.svc.ComputeAll("live")
	require.NoError(t, err)
	require.True(t, found)
	require.NotEmpty(t, report.ReportID)
	assert.Equal(t, "2025-08-29", report.Date)
	assert.Equal(t, "2025-08-28", report.PrevDate)
	require.Len(t, report.Results, 3)

	byUnit := make(map[string]UnitReturn)
	for _, r := range report.Results {
		byUnit[r.Unit] = r
	}

	// 50,000 change minus the 40,000 subscription on a 1,000,000 base
	growth := byUnit["成长一号"]
	assert.False(t, growth.Undefined)
	assert.InDelta(t, 1.0, growth.ReturnPct, 1e-9)
	assert.InDelta(t, 40000, growth.NetFlow, 0.001)

	// No flows recorded: plain change over base
	steady := byUnit["稳健二号"]
	assert.InDelta(t, 1.0, steady.ReturnPct, 1e-9)

	// Unit with no previous-day data: Undefined, still reported
	fresh := byUnit["新发三号"]
	assert.True(t, fresh.Undefined)
	assert.Zero(t, fresh.YesterdayAsset)
}

func TestComputeAllIncludesFutures(t *testing.T) {
	f := newServiceFixture(t)
	f.writeStandardDays(t)
	f.writeExport(t, "futures/期货资产导出_20250828-150500.csv",
		"单元名称,客户权益\n稳健二号,100000\n")
	f.writeExport(t, "futures/期货资产导出_20250829-150500.csv",
		"单元名称,客户权益\n稳健二号,101000\n")

	report, found, err := f.svc.ComputeAll("live")
	require.NoError(t, err)
	require.True(t, found)

	for _, r := range report.Results {
		if r.Unit != "稳健二号" {
			continue
		}
		// (505,000+101,000) vs (500,000+100,000)
		assert.InDelta(t, 606000, r.TodayAsset, 0.001)
		assert.InDelta(t, 600000, r.YesterdayAsset, 0.001)
		assert.InDelta(t, 1.0, r.ReturnPct, 1e-9)
	}
}

func TestComputeAllInsufficientData(t *testing.T) {
	f := newServiceFixture(t)

	// No folders at all
	_, found, err := f.svc.ComputeAll("live")
	require.NoError(t, err)
	assert.False(t, found)

	// Only one day of data
	f.writeExport(t, "20250829/单元资产账户资产导出_20250829-150000.csv",
		"单元名称,总资产\n成长一号,1050000\n")
	_, found, err = f.svc.ComputeAll("live")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestComputeAllSkipsMalformedDayAndReportsFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.writeStandardDays(t)
	// Newest folder holds an export missing the mandatory total asset column
	f.writeExport(t, "20250901/单元资产账户资产导出_20250901-150000.csv",
		"单元名称,昨日总资产\n成长一号,1050000\n")

	report, found, err := f.svc.ComputeAll("live")
	require.NoError(t, err)
	require.True(t, found)

	// Falls back to the two good days
	assert.Equal(t, "2025-08-29", report.Date)
	require.NotEmpty(t, report.Failures)
	assert.Contains(t, report.Failures[0].File, "20250901")
	assert.NotEmpty(t, report.Results)
}

func TestComputeAllIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	f.writeStandardDays(t)

	first, _, err := f.svc.ComputeAll("live")
	require.NoError(t, err)
	second, _, err := f.svc.ComputeAll("live")
	require.NoError(t, err)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Unit, second.Results[i].Unit)
		assert.Equal(t, first.Results[i].ReturnPct, second.Results[i].ReturnPct)
		assert.Equal(t, first.Results[i].TodayAsset, second.Results[i].TodayAsset)
	}
	// Report identity differs per run
	assert.NotEqual(t, first.ReportID, second.ReportID)
}

func TestComputeUnitReturn(t *testing.T) {
	f := newServiceFixture(t)
	f.writeStandardDays(t)

	ur, found, err := f.svc.ComputeUnitReturn("live", "成长一号")
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 5.0, ur.ReturnPct, 1e-9)
	assert.False(t, ur.SourceFileTime.IsZero())

	// Unknown unit reports not found, not an error
	_, found, err = f.svc.ComputeUnitReturn("live", "不存在")
	require.NoError(t, err)
	assert.False(t, found)
}
