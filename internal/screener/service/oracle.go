package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/internal/screener/model"
	"token-screener/pkg/chainrpc"
	"token-screener/pkg/utils"
)

// 稳定币的惯用精度,参考集合未命中时的启发式依据
const stablecoinDecimals = 6

// 报价侧余额翻倍近似池子两侧总价值
var two = decimal.NewFromInt(2)

// ReserveOracle 基于池子储备账户的定价服务
type ReserveOracle struct {
	cfg      config.Config
	tl       *zap.Logger
	rpc      *chainrpc.Client
	refMints map[string]struct{}
}

func NewReserveOracle(cfg config.Config, logger *zap.Logger, rpc *chainrpc.Client) *ReserveOracle {
	return &ReserveOracle{
		cfg:      cfg,
		tl:       logger,
		rpc:      rpc,
		refMints: cfg.Screening.ReferenceMintSet(),
	}
}

// reserveSide 池子一侧储备的归一化快照
type reserveSide struct {
	address  string
	mint     string
	decimals uint8
	ui       decimal.Decimal
}

func (s *ReserveOracle) fetchReserve(ctx context.Context, address string) (*reserveSide, error) {
	acct, err := s.rpc.GetTokenAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	ui, err := utils.ParseRawAmount(acct.TokenAmount.Amount, acct.TokenAmount.Decimals)
	if err != nil {
		return nil, fmt.Errorf("parse reserve balance for %s: %w", address, err)
	}

	return &reserveSide{
		address:  address,
		mint:     acct.Mint,
		decimals: acct.TokenAmount.Decimals,
		ui:       ui,
	}, nil
}

// classifyQuote 判定报价侧与基础侧
// 先精确匹配参考铸币集合,未能区分时退回精度启发式
func (s *ReserveOracle) classifyQuote(x, y *reserveSide) (quote, base *reserveSide, err error) {
	_, xRef := s.refMints[x.mint]
	_, yRef := s.refMints[y.mint]

	switch {
	case xRef && !yRef:
		return x, y, nil
	case yRef && !xRef:
		return y, x, nil
	}

	// 精度不同且有一侧为稳定币精度时,该侧视为报价
	if x.decimals != y.decimals {
		if x.decimals == stablecoinDecimals {
			return x, y, nil
		}
		if y.decimals == stablecoinDecimals {
			return y, x, nil
		}
	}

	return nil, nil, &AmbiguousReserveError{ReserveX: x.address, ReserveY: y.address}
}

// resolvePair 校验两侧余额为正并完成报价侧判定
func (s *ReserveOracle) resolvePair(x, y *reserveSide) (quote, base *reserveSide, err error) {
	for _, side := range []*reserveSide{x, y} {
		if side.ui.LessThanOrEqual(decimal.Zero) {
			return nil, nil, &InvalidPoolError{Reserve: side.address, Balance: side.ui}
		}
	}
	return s.classifyQuote(x, y)
}

// PriceAndFdv 以报价侧与基础侧的储备比值计算现货价,再乘以总供应量得到 FDV
func (s *ReserveOracle) PriceAndFdv(ctx context.Context, mint, reserveX, reserveY string) (*model.PriceFdv, error) {
	x, err := s.fetchReserve(ctx, reserveX)
	if err != nil {
		return nil, err
	}
	y, err := s.fetchReserve(ctx, reserveY)
	if err != nil {
		return nil, err
	}

	quote, base, err := s.resolvePair(x, y)
	if err != nil {
		s.tl.Warn("resolve pool reserves failed",
			zap.String("mint", mint),
			zap.String("reserve_x", reserveX),
			zap.String("reserve_y", reserveY),
			zap.Error(err))
		return nil, err
	}
	if base.mint != mint {
		return nil, fmt.Errorf("reserve pair does not back mint %s, base side holds %s", mint, base.mint)
	}

	price := quote.ui.Div(base.ui)

	supply, err := s.rpc.GetTokenSupply(ctx, base.mint)
	if err != nil {
		return nil, err
	}
	supplyUi, err := utils.ParseRawAmount(supply.Amount, supply.Decimals)
	if err != nil {
		return nil, fmt.Errorf("parse supply for %s: %w", base.mint, err)
	}

	return &model.PriceFdv{
		Mint:      mint,
		PriceUsd:  price,
		FdvUsd:    price.Mul(supplyUi),
		UiSupply:  supplyUi,
		QuoteMint: quote.mint,
		QuoteUi:   quote.ui,
		BaseUi:    base.ui,
	}, nil
}

// TvlTotal 并发解析每个池子的报价侧余额并按翻倍近似累加
// 任何一个池子解析失败则整体返回失败,避免给出偏低的部分结果
func (s *ReserveOracle) TvlTotal(ctx context.Context, pools []model.PoolRef) (*model.TvlTotal, error) {
	var mu sync.Mutex
	total := decimal.Zero
	count := 0
	var firstErr error

	p := pool.New().WithMaxGoroutines(8)
	for _, poolRef := range pools {
		ref := poolRef
		p.Go(func() {
			quoteUi, err := s.poolQuoteUi(ctx, ref)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			total = total.Add(quoteUi.Mul(two))
			count++
		})
	}
	p.Wait()

	if firstErr != nil {
		s.tl.Warn("aggregate tvl failed",
			zap.Int("pool_count", len(pools)),
			zap.Error(firstErr))
		return nil, firstErr
	}

	return &model.TvlTotal{TvlUsd: total, PoolCount: count}, nil
}

func (s *ReserveOracle) poolQuoteUi(ctx context.Context, ref model.PoolRef) (decimal.Decimal, error) {
	x, err := s.fetchReserve(ctx, ref.ReserveX)
	if err != nil {
		return decimal.Zero, err
	}
	y, err := s.fetchReserve(ctx, ref.ReserveY)
	if err != nil {
		return decimal.Zero, err
	}

	quote, _, err := s.resolvePair(x, y)
	if err != nil {
		return decimal.Zero, err
	}
	return quote.ui, nil
}
