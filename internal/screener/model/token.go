package model

import "github.com/shopspring/decimal"

// TokenSupply 铸币供应量查询结果
type TokenSupply struct {
	Mint      string          `json:"mint"`
	RawSupply string          `json:"rawSupply"`
	Decimals  uint8           `json:"decimals"`
	UiSupply  decimal.Decimal `json:"uiSupply"`
}

// TokenAuthorities 铸币/冻结权限查询结果,权限已移除时为 null
type TokenAuthorities struct {
	Mint            string  `json:"mint"`
	MintAuthority   *string `json:"mintAuthority"`
	FreezeAuthority *string `json:"freezeAuthority"`
	Decimals        uint8   `json:"decimals"`
	Initialized     bool    `json:"initialized"`
}

// PriceFdv 基于池子储备推导的价格与完全稀释估值
type PriceFdv struct {
	Mint      string          `json:"mint"`
	PriceUsd  decimal.Decimal `json:"priceUsd"`
	FdvUsd    decimal.Decimal `json:"fdvUsd"`
	UiSupply  decimal.Decimal `json:"uiSupply"`
	QuoteMint string          `json:"quoteMint"`
	QuoteUi   decimal.Decimal `json:"quoteUi"`
	BaseUi    decimal.Decimal `json:"baseUi"`
}

// PoolRef 一个池子的两个储备账户地址
type PoolRef struct {
	ReserveX string `json:"reserveX"`
	ReserveY string `json:"reserveY"`
}

// TvlTotal 多个池子的锁仓总额,按报价侧余额翻倍近似
type TvlTotal struct {
	TvlUsd    decimal.Decimal `json:"tvlUsd"`
	PoolCount int             `json:"poolCount"`
}

// Holder 排名后的持仓条目
type Holder struct {
	Rank        int             `json:"rank"`
	Owner       string          `json:"owner"`
	Amount      decimal.Decimal `json:"amount"`
	PctOfSupply decimal.Decimal `json:"pctOfSupply"`
}

// HolderSnapshot 前 N 大持仓与集中度
type HolderSnapshot struct {
	Mint          string          `json:"mint"`
	Holders       []Holder        `json:"holders"`
	TotalAccounts int             `json:"totalAccounts"`
	UiSupply      decimal.Decimal `json:"uiSupply"`
	Top1Pct       decimal.Decimal `json:"top1Pct"`
	Top10Pct      decimal.Decimal `json:"top10Pct"`
}

// LpProviders LP 提供者统计
type LpProviders struct {
	LpMint        string          `json:"lpMint"`
	ProviderCount int             `json:"providerCount"`
	TotalUi       decimal.Decimal `json:"totalUi"`
}

// LpLocked LP 锁仓占比,总供应量为零时占比为零
type LpLocked struct {
	LpMint    string          `json:"lpMint"`
	LockedPct decimal.Decimal `json:"lockedPct"`
	LockedUi  decimal.Decimal `json:"lockedUi"`
	SupplyUi  decimal.Decimal `json:"supplyUi"`
}

// FdvToMc FDV 与市值的比值
type FdvToMc struct {
	Ratio      decimal.Decimal `json:"ratio"`
	WithinBand bool            `json:"withinBand"`
}
