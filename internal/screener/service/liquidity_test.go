package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLpProviders_ExcludesOwnersAndDedupes(t *testing.T) {
	legacy := programAccountsResult(jupMint, 6, []holderRow{
		{address: baseVault, owner: walletA, amount: "10000000"},
		{address: quoteVault, owner: walletB, amount: "5000000"},
		{address: altVaultX, owner: lockerA, amount: "100000000"},
		// 同一 owner 的第二个账户只算一个提供者
		{address: altVaultY, owner: walletA, amount: "3000000"},
	})

	rpc := newChainClient(t, holdersHandler(t, supplyResult("118000000", 6), legacy, nil))
	analyzer := NewLiquidityAnalyzer(testScreenerConfig(), zap.NewNop(), rpc)

	result, err := analyzer.LpProviders(context.Background(), jupMint, []string{lockerA})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ProviderCount)
	assert.True(t, result.TotalUi.Equal(decimal.NewFromInt(18)), "total = %s", result.TotalUi)
}

func TestLpLockedPercent(t *testing.T) {
	legacy := programAccountsResult(jupMint, 6, []holderRow{
		{address: baseVault, owner: lockerA, amount: "150000000"},
		{address: quoteVault, owner: walletB, amount: "50000000"},
	})

	rpc := newChainClient(t, holdersHandler(t, supplyResult("200000000", 6), legacy, nil))
	analyzer := NewLiquidityAnalyzer(testScreenerConfig(), zap.NewNop(), rpc)

	result, err := analyzer.LpLockedPercent(context.Background(), jupMint, []string{lockerA})
	require.NoError(t, err)

	assert.True(t, result.LockedPct.Equal(decimal.NewFromInt(75)), "locked = %s", result.LockedPct)
	assert.True(t, result.LockedUi.Equal(decimal.NewFromInt(150)))
	assert.True(t, result.SupplyUi.Equal(decimal.NewFromInt(200)))
}

func TestLpLockedPercent_ZeroSupply(t *testing.T) {
	rpc := newChainClient(t, holdersHandler(t, supplyResult("0", 6), nil, nil))
	analyzer := NewLiquidityAnalyzer(testScreenerConfig(), zap.NewNop(), rpc)

	result, err := analyzer.LpLockedPercent(context.Background(), jupMint, []string{lockerA})
	require.NoError(t, err)

	assert.True(t, result.LockedPct.IsZero())
}
