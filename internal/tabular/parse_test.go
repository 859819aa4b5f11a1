package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseEquityAssetExport(t *testing.T) {
	path := writeCSV(t, "assets.csv",
		"单元名称,昨日总资产,总资产,A股资产,债券资产\n"+
			"成长一号,980000,\"1,050,000.50\",600000,200000\n"+
			"稳健二号,500000,500000,100000,350000\n")

	table, err := Parse(path, EquityAssetSchema)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	row := table.Rows[0]
	assert.Equal(t, "成长一号", row.Key)
	// 总资产 is the exact-match column, not 昨日总资产
	assert.InDelta(t, 1050000.50, row.Num[ColTotalAsset], 0.001)
	assert.InDelta(t, 600000, row.Num[ColStockValue], 0.001)
	assert.InDelta(t, 200000, row.Num[ColBondValue], 0.001)
}

func TestParseExactMatchRejectsLookalike(t *testing.T) {
	// Only 昨日总资产 present: the required 总资产 column must not map
	path := writeCSV(t, "assets.csv",
		"单元名称,昨日总资产\n成长一号,980000\n")

	_, err := Parse(path, EquityAssetSchema)
	require.Error(t, err)

	var serr *SchemaError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ColTotalAsset, serr.Column)
	assert.Equal(t, path, serr.File)
}

func TestParseRowHygiene(t *testing.T) {
	path := writeCSV(t, "assets.csv",
		"单元名称,总资产,A股资产,债券资产\n"+
			",100000,1,1\n"+ // empty key: dropped
			"坏数据,abc,1,1\n"+ // unparseable required numeric: dropped
			"清盘三号,0,0,0\n"+ // non-positive total asset: dropped
			"成长一号,1000000,600000,\n") // empty optional numeric: kept as 0

	table, err := Parse(path, EquityAssetSchema)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "成长一号", table.Rows[0].Key)
	assert.Zero(t, table.Rows[0].Num[ColBondValue])
}

func TestParseGBKEncoding(t *testing.T) {
	content := "单元名称,总资产\n成长一号,1000000\n"
	gbk, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte(content))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "gbk.csv")
	require.NoError(t, os.WriteFile(path, gbk, 0644))

	table, err := Parse(path, EquityAssetSchema)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "成长一号", table.Rows[0].Key)
}

func TestParseUTF8BOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("单元名称,总资产\n成长一号,1000000\n")...)
	require.NoError(t, os.WriteFile(path, content, 0644))

	table, err := Parse(path, EquityAssetSchema)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
}

func TestParseTabSeparated(t *testing.T) {
	path := writeCSV(t, "assets.csv",
		"单元名称\t总资产\n成长一号\t1000000\n")

	table, err := Parse(path, EquityAssetSchema)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.InDelta(t, 1000000, table.Rows[0].Num[ColTotalAsset], 0.001)
}

func TestParseFuturesVariants(t *testing.T) {
	// Newer naming scheme
	path := writeCSV(t, "futures.csv",
		"单元名称,客户权益,期货市值\n成长一号,50000,12000\n")
	table, err := Parse(path, FuturesAssetSchema)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.InDelta(t, 50000, table.Rows[0].Num[ColFuturesAsset], 0.001)

	// Older naming scheme
	path = writeCSV(t, "futures_old.csv",
		"产品名称,市值权益\n成长一号,48000\n")
	table, err = Parse(path, FuturesAssetSchema)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.InDelta(t, 48000, table.Rows[0].Num[ColFuturesAsset], 0.001)
}

func TestParsePercentCoercion(t *testing.T) {
	path := writeCSV(t, "positions.csv",
		"证券代码,证券名称,持仓市值,涨跌幅\n600519,贵州茅台,250000,2.35%\n")

	table, err := Parse(path, PositionsSchema)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.InDelta(t, 2.35, table.Rows[0].Num[ColChangePct], 0.001)
	assert.Equal(t, "贵州茅台", table.Rows[0].Text[ColName])
}

func TestParseUnsupportedFormat(t *testing.T) {
	path := writeCSV(t, "assets.pdf", "junk")
	_, err := Parse(path, EquityAssetSchema)
	assert.Error(t, err)
}
