package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/internal/screener/model"
	"token-screener/pkg/chainrpc"
	"token-screener/pkg/utils"
)

// 持仓榜单允许的最大条数
const maxHolderLimit = 100

var hundred = decimal.NewFromInt(100)

// HolderAnalyzer 持仓分布分析
type HolderAnalyzer struct {
	cfg config.Config
	tl  *zap.Logger
	rpc *chainrpc.Client
}

func NewHolderAnalyzer(cfg config.Config, logger *zap.Logger, rpc *chainrpc.Client) *HolderAnalyzer {
	return &HolderAnalyzer{
		cfg: cfg,
		tl:  logger,
		rpc: rpc,
	}
}

// TopHolders 排名前 N 的持仓账户与集中度
// 集中度基于全量排序结果计算,与返回条数无关
func (s *HolderAnalyzer) TopHolders(ctx context.Context, mint string, limit int) (*model.HolderSnapshot, error) {
	if limit < 1 || limit > maxHolderLimit {
		return nil, fmt.Errorf("limit must be within [1, %d], got %d", maxHolderLimit, limit)
	}

	supply, err := s.rpc.GetTokenSupply(ctx, mint)
	if err != nil {
		return nil, err
	}
	supplyUi, err := utils.ParseRawAmount(supply.Amount, supply.Decimals)
	if err != nil {
		return nil, fmt.Errorf("parse supply for %s: %w", mint, err)
	}

	holdings, err := s.rpc.GetTokenAccountsByMint(ctx, mint)
	if err != nil {
		return nil, err
	}

	// 1. 丢弃零余额账户并换算为显示单位
	entries := make([]model.Holder, 0, len(holdings))
	for _, h := range holdings {
		ui, err := utils.ParseRawAmount(h.Amount.Amount, h.Amount.Decimals)
		if err != nil {
			s.tl.Warn("skip holder with malformed balance",
				zap.String("mint", mint),
				zap.String("account", h.Address),
				zap.Error(err))
			continue
		}
		if ui.LessThanOrEqual(decimal.Zero) {
			continue
		}
		entries = append(entries, model.Holder{Owner: h.Owner, Amount: ui})
	}

	// 2. 按余额降序
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})

	pct := func(amount decimal.Decimal) decimal.Decimal {
		if supplyUi.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero
		}
		return amount.Div(supplyUi).Mul(hundred)
	}

	// 3. 截断前先算集中度
	top1 := decimal.Zero
	if len(entries) > 0 {
		top1 = pct(entries[0].Amount)
	}
	top10 := decimal.Zero
	for i := 0; i < len(entries) && i < 10; i++ {
		top10 = top10.Add(pct(entries[i].Amount))
	}

	totalAccounts := len(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].PctOfSupply = pct(entries[i].Amount)
	}

	return &model.HolderSnapshot{
		Mint:          mint,
		Holders:       entries,
		TotalAccounts: totalAccounts,
		UiSupply:      supplyUi,
		Top1Pct:       top1,
		Top10Pct:      top10,
	}, nil
}
