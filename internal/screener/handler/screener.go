package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/internal/screener/model"
	"token-screener/internal/screener/monitor"
	"token-screener/internal/screener/service"
)

// ScreenerAPI 操作服务入口,每个方法对应一项筛查操作
// 方法签名遵循 gorilla/rpc 约定,请求上下文贯穿到上游调用
type ScreenerAPI struct {
	cfg       config.Config
	tl        *zap.Logger
	inspector *service.TokenInspector
	oracle    *service.ReserveOracle
	holders   *service.HolderAnalyzer
	liquidity *service.LiquidityAnalyzer
	activity  *service.ActivityAggregator
}

func NewScreenerAPI(
	cfg config.Config,
	logger *zap.Logger,
	inspector *service.TokenInspector,
	oracle *service.ReserveOracle,
	holders *service.HolderAnalyzer,
	liquidity *service.LiquidityAnalyzer,
	activity *service.ActivityAggregator,
) *ScreenerAPI {
	return &ScreenerAPI{
		cfg:       cfg,
		tl:        logger,
		inspector: inspector,
		oracle:    oracle,
		holders:   holders,
		liquidity: liquidity,
		activity:  activity,
	}
}

func (h *ScreenerAPI) observe(method string, start time.Time) {
	monitor.OpsRequestsTotal.WithLabelValues(method).Inc()
	monitor.OpsRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func (h *ScreenerAPI) fail(method string, err error) error {
	kind := errKind(err)
	monitor.OpsFailuresTotal.WithLabelValues(method, kind).Inc()
	if kind != "bad_params" {
		h.tl.Error("operation failed",
			zap.String("method", method),
			zap.String("kind", kind),
			zap.Error(err))
	}
	return rpcError(err)
}

func (h *ScreenerAPI) TokenSupply(r *http.Request, args *TokenSupplyArgs, reply *model.TokenSupply) error {
	defer h.observe("TokenSupply", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("TokenSupply", err)
	}
	result, err := h.inspector.Supply(r.Context(), args.Mint)
	if err != nil {
		return h.fail("TokenSupply", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) TokenAuthorities(r *http.Request, args *TokenAuthoritiesArgs, reply *model.TokenAuthorities) error {
	defer h.observe("TokenAuthorities", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("TokenAuthorities", err)
	}
	result, err := h.inspector.Authorities(r.Context(), args.Mint)
	if err != nil {
		return h.fail("TokenAuthorities", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) PriceAndFdv(r *http.Request, args *PriceAndFdvArgs, reply *model.PriceFdv) error {
	defer h.observe("PriceAndFdv", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("PriceAndFdv", err)
	}
	result, err := h.oracle.PriceAndFdv(r.Context(), args.Mint, args.ReserveX, args.ReserveY)
	if err != nil {
		return h.fail("PriceAndFdv", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) TvlTotal(r *http.Request, args *TvlTotalArgs, reply *model.TvlTotal) error {
	defer h.observe("TvlTotal", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("TvlTotal", err)
	}
	result, err := h.oracle.TvlTotal(r.Context(), args.Pools)
	if err != nil {
		return h.fail("TvlTotal", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) TopHolders(r *http.Request, args *TopHoldersArgs, reply *model.HolderSnapshot) error {
	defer h.observe("TopHolders", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("TopHolders", err)
	}
	result, err := h.holders.TopHolders(r.Context(), args.Mint, args.Limit)
	if err != nil {
		return h.fail("TopHolders", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) LpProviders(r *http.Request, args *LpProvidersArgs, reply *model.LpProviders) error {
	defer h.observe("LpProviders", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("LpProviders", err)
	}
	result, err := h.liquidity.LpProviders(r.Context(), args.LpMint, args.ExcludeOwners)
	if err != nil {
		return h.fail("LpProviders", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) LpLocked(r *http.Request, args *LpLockedArgs, reply *model.LpLocked) error {
	defer h.observe("LpLocked", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("LpLocked", err)
	}
	result, err := h.liquidity.LpLockedPercent(r.Context(), args.LpMint, args.LockerOwners)
	if err != nil {
		return h.fail("LpLocked", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) ActivityWindows(r *http.Request, args *ActivityWindowsArgs, reply *model.ActivityWindows) error {
	defer h.observe("ActivityWindows", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("ActivityWindows", err)
	}
	result, err := h.activity.ActivityWindows(r.Context(), args.Addresses, args.WindowMinutes)
	if err != nil {
		return h.fail("ActivityWindows", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) TokenAge(r *http.Request, args *TokenAgeArgs, reply *model.TokenAge) error {
	defer h.observe("TokenAge", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("TokenAge", err)
	}
	result, err := h.activity.TokenAge(r.Context(), args.Address)
	if err != nil {
		return h.fail("TokenAge", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) FeesPaid(r *http.Request, args *FeesPaidArgs, reply *model.FeesPaid) error {
	defer h.observe("FeesPaid", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("FeesPaid", err)
	}
	result, err := h.activity.FeesPaid(r.Context(), args.Addresses, args.SinceMinutes)
	if err != nil {
		return h.fail("FeesPaid", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) TradersTradesVolume(r *http.Request, args *TradersTradesVolumeArgs, reply *model.TraderStats) error {
	defer h.observe("TradersTradesVolume", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("TradersTradesVolume", err)
	}
	result, err := h.activity.TradersTradesVolume(r.Context(), args.Addresses, args.SinceMinutes)
	if err != nil {
		return h.fail("TradersTradesVolume", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) FdvToMc(r *http.Request, args *FdvToMcArgs, reply *model.FdvToMc) error {
	defer h.observe("FdvToMc", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("FdvToMc", err)
	}
	result, err := service.FdvToMcRatio(args.FdvUsd, args.MarketCapUsd)
	if err != nil {
		return h.fail("FdvToMc", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) VipPresence(r *http.Request, args *VipPresenceArgs, reply *model.VipPresence) error {
	defer h.observe("VipPresence", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("VipPresence", err)
	}
	result, err := h.activity.VipPresence(r.Context(), args.VipAddresses, args.ScanAddresses)
	if err != nil {
		return h.fail("VipPresence", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) DevBehavior(r *http.Request, args *DevBehaviorArgs, reply *model.DevBehavior) error {
	defer h.observe("DevBehavior", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("DevBehavior", err)
	}
	result, err := h.activity.DevBehavior(r.Context(), args.DevAddresses, args.ScanAddresses)
	if err != nil {
		return h.fail("DevBehavior", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) RevivalDetector(r *http.Request, args *RevivalDetectorArgs, reply *model.Revival) error {
	defer h.observe("RevivalDetector", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("RevivalDetector", err)
	}
	result, err := h.activity.DetectRevival(r.Context(), args.PoolAddresses)
	if err != nil {
		return h.fail("RevivalDetector", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) FirstWaveBuyers(r *http.Request, args *FirstWaveBuyersArgs, reply *model.FirstWave) error {
	defer h.observe("FirstWaveBuyers", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("FirstWaveBuyers", err)
	}
	result, err := h.activity.FirstWaveBuyers(r.Context(), args.PoolAddress, args.Minutes, args.VipList)
	if err != nil {
		return h.fail("FirstWaveBuyers", err)
	}
	*reply = *result
	return nil
}

func (h *ScreenerAPI) ComputeScore(r *http.Request, args *ComputeScoreArgs, reply *model.ScoreResult) error {
	defer h.observe("ComputeScore", time.Now())
	if err := args.Validate(); err != nil {
		return h.fail("ComputeScore", err)
	}
	thresholds := service.DefaultScoreThresholds()
	if args.Thresholds != nil {
		thresholds = *args.Thresholds
	}
	weights := service.DefaultScoreWeights()
	if args.Weights != nil {
		weights = *args.Weights
	}
	*reply = service.ComputeScore(args.Metrics, thresholds, weights)
	return nil
}
