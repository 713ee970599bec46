package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"token-screener/internal/screener/model"
)

// 每项达标指标的基础分,权重负责区分重要性
const scoreBasePoints = 10.0

// FDV 与市值被认定一致的比值区间
var (
	fdvBandLow  = decimal.NewFromFloat(0.9)
	fdvBandHigh = decimal.NewFromFloat(1.1)
)

// 未达标指标的固定说明,顺序与评分顺序一致
const (
	reasonLpCount     = "too few liquidity providers"
	reasonLpLocked    = "insufficient share of lp supply locked"
	reasonHoldersDist = "holder concentration too high"
	reasonActivity    = "not enough unique traders in the last 24h"
	reasonVip         = "no vip wallet activity detected"
	reasonRevival     = "no recent volume revival"
	reasonAge         = "token too new or no trading history"
	reasonFdvToMc     = "fdv diverges from market cap"
)

// DefaultScoreThresholds 各项指标的默认达标线
func DefaultScoreThresholds() model.ScoreThresholds {
	return model.ScoreThresholds{
		MinLpProviders: 2,
		MinLpLockedPct: 80,
		MaxTop1Pct:     30,
		MaxTop10Pct:    60,
		MinTraders24h:  10,
		MinVipHits:     1,
		MinAgeMinutes:  1440,
	}
}

// DefaultScoreWeights 各项指标的默认权重
func DefaultScoreWeights() model.ScoreWeights {
	return model.ScoreWeights{
		LpCount:     2,
		LpLocked:    2,
		HoldersDist: 2,
		Activity:    1,
		Vip:         1,
		Revival:     1,
		Age:         1,
		FdvToMc:     1,
	}
}

// ComputeScore 纯函数评分
// 每项达标指标贡献 scoreBasePoints 乘以权重,未达标只追加固定原因,不扣分
func ComputeScore(metrics model.ScoreMetrics, thresholds model.ScoreThresholds, weights model.ScoreWeights) model.ScoreResult {
	score := 0.0
	reasons := make([]string, 0, 8)

	award := func(met bool, weight float64, reason string) {
		if met {
			score += scoreBasePoints * weight
			return
		}
		reasons = append(reasons, reason)
	}

	ratio := decimal.NewFromFloat(metrics.FdvToMcRatio)

	award(metrics.LpProviderCount >= thresholds.MinLpProviders, weights.LpCount, reasonLpCount)
	award(metrics.LpLockedPct >= thresholds.MinLpLockedPct, weights.LpLocked, reasonLpLocked)
	award(metrics.Top1Pct <= thresholds.MaxTop1Pct && metrics.Top10Pct <= thresholds.MaxTop10Pct,
		weights.HoldersDist, reasonHoldersDist)
	award(metrics.Traders24h >= thresholds.MinTraders24h, weights.Activity, reasonActivity)
	award(metrics.VipHits >= thresholds.MinVipHits, weights.Vip, reasonVip)
	award(metrics.Revived, weights.Revival, reasonRevival)
	award(metrics.AgeMinutes != nil && *metrics.AgeMinutes >= thresholds.MinAgeMinutes,
		weights.Age, reasonAge)
	award(ratio.GreaterThanOrEqual(fdvBandLow) && ratio.LessThanOrEqual(fdvBandHigh),
		weights.FdvToMc, reasonFdvToMc)

	return model.ScoreResult{Score: score, Reasons: reasons}
}

// FdvToMcRatio FDV 与市值的比值及是否落在一致区间内
func FdvToMcRatio(fdv, marketCap decimal.Decimal) (*model.FdvToMc, error) {
	if marketCap.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("market cap must be positive, got %s", marketCap.String())
	}
	ratio := fdv.Div(marketCap)
	within := ratio.GreaterThanOrEqual(fdvBandLow) && ratio.LessThanOrEqual(fdvBandHigh)
	return &model.FdvToMc{Ratio: ratio, WithinBand: within}, nil
}
