package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-screener/internal/screener/model"
)

func metricsAllMet() model.ScoreMetrics {
	age := 10080.0
	return model.ScoreMetrics{
		LpProviderCount: 5,
		LpLockedPct:     95,
		Top1Pct:         10,
		Top10Pct:        40,
		Traders24h:      50,
		VipHits:         2,
		Revived:         true,
		AgeMinutes:      &age,
		FdvToMcRatio:    1.0,
	}
}

func TestComputeScore_AllCriteriaMet(t *testing.T) {
	result := ComputeScore(metricsAllMet(), DefaultScoreThresholds(), DefaultScoreWeights())

	// 2+2+2+1+1+1+1+1 权重之和乘以基础分
	assert.Equal(t, 110.0, result.Score)
	assert.Empty(t, result.Reasons)
}

func TestComputeScore_NothingMet(t *testing.T) {
	result := ComputeScore(model.ScoreMetrics{}, DefaultScoreThresholds(), DefaultScoreWeights())

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, []string{
		reasonLpCount,
		reasonLpLocked,
		reasonHoldersDist,
		reasonActivity,
		reasonVip,
		reasonRevival,
		reasonAge,
		reasonFdvToMc,
	}, result.Reasons)
}

func TestComputeScore_UnmetCriterionOnlyAddsReason(t *testing.T) {
	metrics := metricsAllMet()
	metrics.AgeMinutes = nil

	result := ComputeScore(metrics, DefaultScoreThresholds(), DefaultScoreWeights())

	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, []string{reasonAge}, result.Reasons)
}

func TestComputeScore_WeightsScalePoints(t *testing.T) {
	metrics := model.ScoreMetrics{}
	metrics.Top1Pct = 10
	metrics.Top10Pct = 40

	weights := DefaultScoreWeights()
	weights.HoldersDist = 4

	result := ComputeScore(metrics, DefaultScoreThresholds(), weights)

	assert.Equal(t, 40.0, result.Score)
	assert.NotContains(t, result.Reasons, reasonHoldersDist)
}

func TestComputeScore_FdvBandBoundariesInclusive(t *testing.T) {
	cases := []struct {
		name  string
		ratio float64
		met   bool
	}{
		{"lower bound", 0.9, true},
		{"upper bound", 1.1, true},
		{"below band", 0.89, false},
		{"above band", 1.11, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			metrics := metricsAllMet()
			metrics.FdvToMcRatio = tc.ratio

			result := ComputeScore(metrics, DefaultScoreThresholds(), DefaultScoreWeights())
			if tc.met {
				assert.NotContains(t, result.Reasons, reasonFdvToMc)
			} else {
				assert.Contains(t, result.Reasons, reasonFdvToMc)
			}
		})
	}
}

func TestComputeScore_Deterministic(t *testing.T) {
	metrics := metricsAllMet()
	metrics.Traders24h = 3
	metrics.Revived = false

	first := ComputeScore(metrics, DefaultScoreThresholds(), DefaultScoreWeights())
	second := ComputeScore(metrics, DefaultScoreThresholds(), DefaultScoreWeights())

	assert.Equal(t, first, second)
}

func TestFdvToMcRatio(t *testing.T) {
	result, err := FdvToMcRatio(decimal.NewFromInt(105), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, result.Ratio.Equal(decimal.NewFromFloat(1.05)))
	assert.True(t, result.WithinBand)

	result, err = FdvToMcRatio(decimal.NewFromInt(200), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.False(t, result.WithinBand)

	_, err = FdvToMcRatio(decimal.NewFromInt(100), decimal.Zero)
	require.Error(t, err)
}
