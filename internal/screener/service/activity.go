package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/internal/screener/model"
	"token-screener/pkg/historyapi"
	"token-screener/pkg/utils"
)

const (
	// VIP 统计里原生转账的防尘埃下限,单位 SOL
	vipNativeDustFloor = 0.001

	// 近期交易量对比的回溯窗口
	revivalRecentWindow   = 24 * time.Hour
	revivalBaselineWindow = 72 * time.Hour
)

var three = decimal.NewFromInt(3)

// ActivityAggregator 基于单页交易历史的活跃度统计
// 所有窗口统计只覆盖上游单页范围内的交易
type ActivityAggregator struct {
	cfg      config.Config
	tl       *zap.Logger
	history  *historyapi.Client
	refMints map[string]struct{}
}

func NewActivityAggregator(cfg config.Config, logger *zap.Logger, history *historyapi.Client) *ActivityAggregator {
	return &ActivityAggregator{
		cfg:      cfg,
		tl:       logger,
		history:  history,
		refMints: cfg.Screening.ReferenceMintSet(),
	}
}

// fetchAll 并发拉取每个地址的单页历史,按签名去重后按时间升序返回
func (s *ActivityAggregator) fetchAll(ctx context.Context, addresses []string) ([]historyapi.Transaction, error) {
	var mu sync.Mutex
	var txs []historyapi.Transaction
	var firstErr error

	p := pool.New().WithMaxGoroutines(8)
	for _, addr := range addresses {
		address := addr
		p.Go(func() {
			page, err := s.history.Recent(ctx, address)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			txs = append(txs, page...)
		})
	}
	p.Wait()

	if firstErr != nil {
		s.tl.Warn("fetch transaction history failed",
			zap.Int("address_count", len(addresses)),
			zap.Error(firstErr))
		return nil, firstErr
	}

	// 同一笔交易可能出现在多个地址的历史里
	seen := make(map[string]struct{}, len(txs))
	deduped := txs[:0]
	for _, tx := range txs {
		if _, ok := seen[tx.Signature]; ok {
			continue
		}
		seen[tx.Signature] = struct{}{}
		deduped = append(deduped, tx)
	}

	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].Timestamp != deduped[j].Timestamp {
			return deduped[i].Timestamp < deduped[j].Timestamp
		}
		return deduped[i].Signature < deduped[j].Signature
	})
	return deduped, nil
}

// quoteVolumeOf 单笔交易的报价资产交易量
// 参考铸币转账腿取绝对值累加,原生转账按 SOL 计入
func (s *ActivityAggregator) quoteVolumeOf(tx *historyapi.Transaction) decimal.Decimal {
	vol := decimal.Zero
	for _, leg := range tx.TokenTransfers {
		if _, ok := s.refMints[leg.Mint]; !ok {
			continue
		}
		vol = vol.Add(decimal.NewFromFloat(leg.TokenAmount).Abs())
	}
	for _, leg := range tx.NativeTransfers {
		if leg.Amount == 0 {
			continue
		}
		vol = vol.Add(utils.LamportsToSol(leg.Amount).Abs())
	}
	return vol
}

func collectActors(set map[string]struct{}, tx *historyapi.Transaction) {
	for _, leg := range tx.TokenTransfers {
		if leg.FromUserAccount != "" {
			set[leg.FromUserAccount] = struct{}{}
		}
		if leg.ToUserAccount != "" {
			set[leg.ToUserAccount] = struct{}{}
		}
	}
	for _, leg := range tx.NativeTransfers {
		if leg.FromUserAccount != "" {
			set[leg.FromUserAccount] = struct{}{}
		}
		if leg.ToUserAccount != "" {
			set[leg.ToUserAccount] = struct{}{}
		}
	}
}

// ActivityWindows 多窗口活跃度统计
// 窗口互相嵌套:一笔交易计入所有长度不小于其账龄的窗口,计数随窗口递增单调不减
func (s *ActivityAggregator) ActivityWindows(ctx context.Context, addresses []string, windowMinutes []int) (*model.ActivityWindows, error) {
	txs, err := s.fetchAll(ctx, addresses)
	if err != nil {
		return nil, err
	}

	windows := append([]int(nil), windowMinutes...)
	sort.Ints(windows)

	stats := make([]model.WindowStat, len(windows))
	actors := make([]map[string]struct{}, len(windows))
	for i, w := range windows {
		stats[i] = model.WindowStat{Minutes: w, QuoteVolume: decimal.Zero}
		actors[i] = make(map[string]struct{})
	}

	now := time.Now()
	for i := range txs {
		tx := &txs[i]
		if !utils.IsUnixSeconds(tx.Timestamp) {
			continue
		}
		ageMinutes := now.Sub(time.Unix(tx.Timestamp, 0)).Minutes()
		if ageMinutes < 0 {
			ageMinutes = 0
		}
		vol := s.quoteVolumeOf(tx)
		for j, w := range windows {
			if float64(w) < ageMinutes {
				continue
			}
			stats[j].TxCount++
			stats[j].QuoteVolume = stats[j].QuoteVolume.Add(vol)
			collectActors(actors[j], tx)
		}
	}
	for i := range stats {
		stats[i].UniqueActors = len(actors[i])
	}

	return &model.ActivityWindows{Windows: stats}, nil
}

// TokenAge 以页内最早交易近似账龄,无任何历史时两个字段都为空
func (s *ActivityAggregator) TokenAge(ctx context.Context, address string) (*model.TokenAge, error) {
	page, err := s.history.Recent(ctx, address)
	if err != nil {
		return nil, err
	}

	var earliest int64
	for _, tx := range page {
		if !utils.IsUnixSeconds(tx.Timestamp) {
			continue
		}
		if earliest == 0 || tx.Timestamp < earliest {
			earliest = tx.Timestamp
		}
	}
	if earliest == 0 {
		return &model.TokenAge{Address: address}, nil
	}

	first := time.Unix(earliest, 0).UTC()
	age := time.Since(first).Minutes()
	if age < 0 {
		age = 0
	}
	return &model.TokenAge{Address: address, FirstTxAt: &first, AgeMinutes: &age}, nil
}

// FeesPaid 窗口内交易手续费合计,换算为 SOL
func (s *ActivityAggregator) FeesPaid(ctx context.Context, addresses []string, sinceMinutes int) (*model.FeesPaid, error) {
	txs, err := s.fetchAll(ctx, addresses)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-time.Duration(sinceMinutes) * time.Minute).Unix()
	var totalLamports int64
	count := 0
	for _, tx := range txs {
		if tx.Timestamp < cutoff {
			continue
		}
		totalLamports += tx.Fee
		count++
	}

	return &model.FeesPaid{
		TotalFees: utils.LamportsToSol(totalLamports),
		TxCount:   count,
	}, nil
}

// TradersTradesVolume 窗口内独立交易者数、交易笔数与报价资产交易量
func (s *ActivityAggregator) TradersTradesVolume(ctx context.Context, addresses []string, sinceMinutes int) (*model.TraderStats, error) {
	txs, err := s.fetchAll(ctx, addresses)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-time.Duration(sinceMinutes) * time.Minute).Unix()
	traders := make(map[string]struct{})
	count := 0
	volume := decimal.Zero
	for i := range txs {
		tx := &txs[i]
		if tx.Timestamp < cutoff {
			continue
		}
		count++
		volume = volume.Add(s.quoteVolumeOf(tx))
		collectActors(traders, tx)
	}

	return &model.TraderStats{
		UniqueTraders: len(traders),
		TxCount:       count,
		QuoteVolume:   volume,
	}, nil
}

// VipPresence 最近一天内 VIP 地址出现在多少条合格转账腿里
// 代币腿要求金额为正,原生腿要求超过防尘埃下限
func (s *ActivityAggregator) VipPresence(ctx context.Context, vipAddresses, scanAddresses []string) (*model.VipPresence, error) {
	txs, err := s.fetchAll(ctx, scanAddresses)
	if err != nil {
		return nil, err
	}

	vips := make(map[string]struct{}, len(vipAddresses))
	for _, addr := range vipAddresses {
		vips[addr] = struct{}{}
	}
	dust := decimal.NewFromFloat(vipNativeDustFloor)

	cutoff := time.Now().Add(-24 * time.Hour).Unix()
	hits := make(map[string]int)
	countLeg := func(from, to string) {
		if _, ok := vips[from]; ok {
			hits[from]++
		}
		if to != from {
			if _, ok := vips[to]; ok {
				hits[to]++
			}
		}
	}

	for i := range txs {
		tx := &txs[i]
		if tx.Timestamp < cutoff {
			continue
		}
		for _, leg := range tx.TokenTransfers {
			if leg.TokenAmount <= 0 {
				continue
			}
			countLeg(leg.FromUserAccount, leg.ToUserAccount)
		}
		for _, leg := range tx.NativeTransfers {
			if utils.LamportsToSol(leg.Amount).LessThanOrEqual(dust) {
				continue
			}
			countLeg(leg.FromUserAccount, leg.ToUserAccount)
		}
	}

	// 按入参顺序输出,只保留有命中的 VIP
	result := make([]model.VipHit, 0, len(hits))
	for _, addr := range vipAddresses {
		if n := hits[addr]; n > 0 {
			result = append(result, model.VipHit{Address: addr, LegCount: n})
		}
	}
	return &model.VipPresence{Hits: result}, nil
}

// DevBehavior 开发者地址的风险行为标记
// 命中流动性类交易记 lp_activity,超阈值原生转账记 large_transfer
func (s *ActivityAggregator) DevBehavior(ctx context.Context, devAddresses, scanAddresses []string) (*model.DevBehavior, error) {
	txs, err := s.fetchAll(ctx, scanAddresses)
	if err != nil {
		return nil, err
	}

	devs := make(map[string]struct{}, len(devAddresses))
	for _, addr := range devAddresses {
		devs[addr] = struct{}{}
	}
	threshold := decimal.NewFromFloat(s.cfg.Screening.LargeTransferNative)

	flags := make([]model.DevFlag, 0)
	for i := range txs {
		tx := &txs[i]
		dev, ok := matchDev(tx, devs)
		if !ok {
			continue
		}
		at := time.Unix(tx.Timestamp, 0).UTC()

		if isLiquidityEvent(tx.Type) {
			flags = append(flags, model.DevFlag{
				Signature: tx.Signature,
				Address:   dev,
				Tag:       "lp_activity",
				Amount:    s.quoteVolumeOf(tx),
				At:        at,
			})
		}
		for _, leg := range tx.NativeTransfers {
			sol := utils.LamportsToSol(leg.Amount).Abs()
			if sol.LessThan(threshold) {
				continue
			}
			flags = append(flags, model.DevFlag{
				Signature: tx.Signature,
				Address:   dev,
				Tag:       "large_transfer",
				Amount:    sol,
				At:        at,
			})
		}
	}

	return &model.DevBehavior{Flags: flags}, nil
}

// matchDev 按手续费支付者优先,其次任一转账腿参与者
func matchDev(tx *historyapi.Transaction, devs map[string]struct{}) (string, bool) {
	if _, ok := devs[tx.FeePayer]; ok {
		return tx.FeePayer, true
	}
	for _, leg := range tx.TokenTransfers {
		if _, ok := devs[leg.FromUserAccount]; ok {
			return leg.FromUserAccount, true
		}
		if _, ok := devs[leg.ToUserAccount]; ok {
			return leg.ToUserAccount, true
		}
	}
	for _, leg := range tx.NativeTransfers {
		if _, ok := devs[leg.FromUserAccount]; ok {
			return leg.FromUserAccount, true
		}
		if _, ok := devs[leg.ToUserAccount]; ok {
			return leg.ToUserAccount, true
		}
	}
	return "", false
}

func isLiquidityEvent(recordType string) bool {
	t := strings.ToUpper(recordType)
	return strings.Contains(t, "LIQUIDITY") || strings.Contains(t, "POOL")
}

// DetectRevival 近 24 小时交易量与近 72 小时日均交易量对比
// 比值超过配置倍数视为交易量复苏
func (s *ActivityAggregator) DetectRevival(ctx context.Context, poolAddresses []string) (*model.Revival, error) {
	txs, err := s.fetchAll(ctx, poolAddresses)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cutRecent := now.Add(-revivalRecentWindow).Unix()
	cutBaseline := now.Add(-revivalBaselineWindow).Unix()

	vol24 := decimal.Zero
	vol72 := decimal.Zero
	for i := range txs {
		tx := &txs[i]
		if tx.Timestamp < cutBaseline {
			continue
		}
		vol := s.quoteVolumeOf(tx)
		vol72 = vol72.Add(vol)
		if tx.Timestamp >= cutRecent {
			vol24 = vol24.Add(vol)
		}
	}

	baseline := vol72.Div(three)
	ratio := decimal.Zero
	if baseline.GreaterThan(decimal.Zero) {
		ratio = vol24.Div(baseline)
	}
	multiplier := decimal.NewFromFloat(s.cfg.Screening.RevivalMultiplier)

	return &model.Revival{
		Volume24h: vol24,
		Volume72h: vol72,
		Ratio:     ratio,
		Revived:   ratio.GreaterThan(multiplier),
	}, nil
}

// FirstWaveBuyers 窗口内按收到的代币数量排名的首批买家
// 只统计非参考铸币的转账腿,收币方视为买家
func (s *ActivityAggregator) FirstWaveBuyers(ctx context.Context, poolAddress string, sinceMinutes int, vipAddresses []string) (*model.FirstWave, error) {
	page, err := s.history.Recent(ctx, poolAddress)
	if err != nil {
		return nil, err
	}

	vips := make(map[string]struct{}, len(vipAddresses))
	for _, addr := range vipAddresses {
		vips[addr] = struct{}{}
	}

	cutoff := time.Now().Add(-time.Duration(sinceMinutes) * time.Minute).Unix()
	inbound := make(map[string]decimal.Decimal)
	for i := range page {
		tx := &page[i]
		if tx.Timestamp < cutoff {
			continue
		}
		for _, leg := range tx.TokenTransfers {
			if leg.ToUserAccount == "" || leg.TokenAmount <= 0 {
				continue
			}
			if _, ok := s.refMints[leg.Mint]; ok {
				continue
			}
			inbound[leg.ToUserAccount] = inbound[leg.ToUserAccount].Add(decimal.NewFromFloat(leg.TokenAmount))
		}
	}

	buyers := make([]model.FirstWaveBuyer, 0, len(inbound))
	for addr, amount := range inbound {
		_, isVip := vips[addr]
		buyers = append(buyers, model.FirstWaveBuyer{Address: addr, Amount: amount, IsVip: isVip})
	}
	sort.Slice(buyers, func(i, j int) bool {
		if !buyers[i].Amount.Equal(buyers[j].Amount) {
			return buyers[i].Amount.GreaterThan(buyers[j].Amount)
		}
		return buyers[i].Address < buyers[j].Address
	})
	for i := range buyers {
		buyers[i].Rank = i + 1
	}

	return &model.FirstWave{PoolAddress: poolAddress, Buyers: buyers}, nil
}
