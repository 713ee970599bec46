package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/internal/screener/model"
	"token-screener/pkg/chainrpc"
	"token-screener/pkg/utils"
)

// LiquidityAnalyzer LP 代币持仓分析
type LiquidityAnalyzer struct {
	cfg config.Config
	tl  *zap.Logger
	rpc *chainrpc.Client
}

func NewLiquidityAnalyzer(cfg config.Config, logger *zap.Logger, rpc *chainrpc.Client) *LiquidityAnalyzer {
	return &LiquidityAnalyzer{
		cfg: cfg,
		tl:  logger,
		rpc: rpc,
	}
}

// LpProviders 统计 LP 代币的独立持有人数,池子金库等地址可通过 excludeOwners 剔除
func (s *LiquidityAnalyzer) LpProviders(ctx context.Context, lpMint string, excludeOwners []string) (*model.LpProviders, error) {
	holdings, err := s.rpc.GetTokenAccountsByMint(ctx, lpMint)
	if err != nil {
		return nil, err
	}

	exclude := make(map[string]struct{}, len(excludeOwners))
	for _, owner := range excludeOwners {
		exclude[owner] = struct{}{}
	}

	owners := make(map[string]struct{})
	total := decimal.Zero
	for _, h := range holdings {
		if _, skip := exclude[h.Owner]; skip {
			continue
		}
		ui, err := utils.ParseRawAmount(h.Amount.Amount, h.Amount.Decimals)
		if err != nil {
			s.tl.Warn("skip lp holding with malformed balance",
				zap.String("lp_mint", lpMint),
				zap.String("account", h.Address),
				zap.Error(err))
			continue
		}
		if ui.LessThanOrEqual(decimal.Zero) {
			continue
		}
		owners[h.Owner] = struct{}{}
		total = total.Add(ui)
	}

	return &model.LpProviders{
		LpMint:        lpMint,
		ProviderCount: len(owners),
		TotalUi:       total,
	}, nil
}

// LpLockedPercent 锁仓地址持有的 LP 供应量占比
// LP 供应量为零时占比恒为零,不报错
func (s *LiquidityAnalyzer) LpLockedPercent(ctx context.Context, lpMint string, lockerOwners []string) (*model.LpLocked, error) {
	supply, err := s.rpc.GetTokenSupply(ctx, lpMint)
	if err != nil {
		return nil, err
	}
	supplyUi, err := utils.ParseRawAmount(supply.Amount, supply.Decimals)
	if err != nil {
		return nil, fmt.Errorf("parse lp supply for %s: %w", lpMint, err)
	}

	holdings, err := s.rpc.GetTokenAccountsByMint(ctx, lpMint)
	if err != nil {
		return nil, err
	}

	lockers := make(map[string]struct{}, len(lockerOwners))
	for _, owner := range lockerOwners {
		lockers[owner] = struct{}{}
	}

	locked := decimal.Zero
	for _, h := range holdings {
		if _, ok := lockers[h.Owner]; !ok {
			continue
		}
		ui, err := utils.ParseRawAmount(h.Amount.Amount, h.Amount.Decimals)
		if err != nil {
			s.tl.Warn("skip locked holding with malformed balance",
				zap.String("lp_mint", lpMint),
				zap.String("account", h.Address),
				zap.Error(err))
			continue
		}
		if ui.LessThanOrEqual(decimal.Zero) {
			continue
		}
		locked = locked.Add(ui)
	}

	pct := decimal.Zero
	if supplyUi.GreaterThan(decimal.Zero) {
		pct = locked.Div(supplyUi).Mul(hundred)
	}

	return &model.LpLocked{
		LpMint:    lpMint,
		LockedPct: pct,
		LockedUi:  locked,
		SupplyUi:  supplyUi,
	}, nil
}
