package tabular

// Canonical column names shared by the built-in schemas.
const (
	ColUnit         = "unit"
	ColTotalAsset   = "total_asset"
	ColStockValue   = "stock_value"
	ColBondValue    = "bond_value"
	ColFuturesAsset = "futures_asset"
	ColFuturesValue = "futures_value"
	ColSymbol       = "symbol"
	ColName         = "name"
	ColMarketValue  = "market_value"
	ColChangePct    = "change_pct"
)

// EquityAssetSchema maps per-unit equity account asset exports.
// 总资产 is exact so that 昨日总资产 can never satisfy it.
var EquityAssetSchema = Schema{
	Name: "equity_asset",
	Columns: []Column{
		{
			Canonical: ColUnit,
			Variants:  []Variant{{Text: "单元名称"}, {Text: "产品名称"}},
			Required:  true,
			Key:       true,
		},
		{
			Canonical:      ColTotalAsset,
			Variants:       []Variant{{Text: "总资产", Exact: true}},
			Required:       true,
			Numeric:        true,
			MustBePositive: true,
		},
		{
			Canonical: ColStockValue,
			Variants:  []Variant{{Text: "A股资产", Exact: true}, {Text: "股票资产", Exact: true}},
			Numeric:   true,
		},
		{
			Canonical: ColBondValue,
			Variants:  []Variant{{Text: "债券资产", Exact: true}},
			Numeric:   true,
		},
	},
}

// FuturesAssetSchema maps futures account asset exports.
// Older exports label the account equity 市值权益, newer ones 客户权益.
var FuturesAssetSchema = Schema{
	Name: "futures_asset",
	Columns: []Column{
		{
			Canonical: ColUnit,
			Variants:  []Variant{{Text: "单元名称"}, {Text: "产品名称"}},
			Required:  true,
			Key:       true,
		},
		{
			Canonical: ColFuturesAsset,
			Variants:  []Variant{{Text: "客户权益", Exact: true}, {Text: "市值权益", Exact: true}},
			Required:  true,
			Numeric:   true,
		},
		{
			Canonical: ColFuturesValue,
			Variants:  []Variant{{Text: "期货市值"}},
			Numeric:   true,
		},
	},
}

// PositionsSchema maps per-unit holdings exports.
var PositionsSchema = Schema{
	Name: "positions",
	Columns: []Column{
		{
			Canonical: ColSymbol,
			Variants:  []Variant{{Text: "证券代码"}},
			Required:  true,
			Key:       true,
		},
		{
			Canonical: ColName,
			Variants:  []Variant{{Text: "证券名称"}},
		},
		{
			Canonical: ColMarketValue,
			Variants:  []Variant{{Text: "持仓市值"}, {Text: "市值", Exact: true}},
			Required:  true,
			Numeric:   true,
		},
		{
			Canonical: ColChangePct,
			Variants:  []Variant{{Text: "涨跌幅"}},
			Numeric:   true,
		},
	},
}
