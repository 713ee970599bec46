package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WindowStat 单个嵌套窗口的聚合,窗口按长度递增互相包含
type WindowStat struct {
	Minutes      int             `json:"minutes"`
	TxCount      int             `json:"txCount"`
	QuoteVolume  decimal.Decimal `json:"quoteVolume"`
	UniqueActors int             `json:"uniqueActors"`
}

// ActivityWindows 多窗口活动聚合结果
type ActivityWindows struct {
	Windows []WindowStat `json:"windows"`
}

// TokenAge 单页历史里最早一笔交易的时间,无历史时两个字段都为 null
type TokenAge struct {
	Address    string     `json:"address"`
	FirstTxAt  *time.Time `json:"firstTxAt"`
	AgeMinutes *float64   `json:"ageMinutes"`
}

// FeesPaid 时段内网络手续费合计,已换算为显示单位
type FeesPaid struct {
	TotalFees decimal.Decimal `json:"totalFees"`
	TxCount   int             `json:"txCount"`
}

// TraderStats 尾随时段内的交易者/交易/交易量统计
type TraderStats struct {
	UniqueTraders int             `json:"uniqueTraders"`
	TxCount       int             `json:"txCount"`
	QuoteVolume   decimal.Decimal `json:"quoteVolume"`
}

// VipHit 单个 VIP 地址在尾随一天内命中的转账腿数
type VipHit struct {
	Address  string `json:"address"`
	LegCount int    `json:"legCount"`
}

// VipPresence VIP 出现统计
type VipPresence struct {
	Hits []VipHit `json:"hits"`
}

// DevFlag 开发者行为命中,一次命中产出一条带分类标签的事件
type DevFlag struct {
	Signature string          `json:"signature"`
	Address   string          `json:"address"`
	Tag       string          `json:"tag"`
	Amount    decimal.Decimal `json:"amount"`
	At        time.Time       `json:"at"`
}

// DevBehavior 开发者行为扫描结果
type DevBehavior struct {
	Flags []DevFlag `json:"flags"`
}

// Revival 近一天交易量相对三天均值的回温检测
type Revival struct {
	Volume24h decimal.Decimal `json:"volume24h"`
	Volume72h decimal.Decimal `json:"volume72h"`
	Ratio     decimal.Decimal `json:"ratio"`
	Revived   bool            `json:"revived"`
}

// FirstWaveBuyer 首波买入者,按入账金额降序排名
type FirstWaveBuyer struct {
	Rank    int             `json:"rank"`
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
	IsVip   bool            `json:"isVip"`
}

// FirstWave 首波买入扫描结果
type FirstWave struct {
	PoolAddress string           `json:"poolAddress"`
	Buyers      []FirstWaveBuyer `json:"buyers"`
}
