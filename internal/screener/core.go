package screener

import (
	"context"
	"time"

	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/internal/screener/handler"
	"token-screener/internal/screener/monitor"
	"token-screener/internal/screener/service"
	"token-screener/pkg/chainrpc"
	"token-screener/pkg/historyapi"
	"token-screener/pkg/httpclient"
)

type Core struct {
	cfg     config.Config
	tl      *zap.Logger
	server  *handler.Server
	metrics *monitor.MetricsServer
}

func New(cfg config.Config, logger *zap.Logger) *Core {
	// 上游客户端进程内唯一,限流与并发上限对链上 RPC 和历史 API 共同生效
	upstream := httpclient.NewClient(httpclient.Config{
		Timeout:        time.Duration(cfg.Upstream.TimeoutMs) * time.Millisecond,
		RatePerSecond:  cfg.Upstream.RatePerSecond,
		MaxConcurrent:  int64(cfg.Upstream.MaxConcurrent),
		MaxRetries:     cfg.Upstream.MaxRetries,
		RetryBaseDelay: time.Duration(cfg.Upstream.RetryBaseDelayMs) * time.Millisecond,
	}, logger)

	chain := chainrpc.NewClient(cfg.Upstream.RpcURL, upstream, logger)
	history := historyapi.NewClient(cfg.Upstream.HistoryURLTemplate, cfg.Screening.HistoryPageLimit, upstream, logger)

	api := handler.NewScreenerAPI(cfg, logger,
		service.NewTokenInspector(cfg, logger, chain),
		service.NewReserveOracle(cfg, logger, chain),
		service.NewHolderAnalyzer(cfg, logger, chain),
		service.NewLiquidityAnalyzer(cfg, logger, chain),
		service.NewActivityAggregator(cfg, logger, history),
	)

	return &Core{
		cfg:     cfg,
		tl:      logger,
		server:  handler.NewServer(cfg.Server, logger, api),
		metrics: monitor.NewMetricsServer(cfg.Monitor, logger),
	}
}

func (c *Core) Start(ctx context.Context) {
	c.tl.Info("Starting screener core...")
	// 启动监控服务
	if c.metrics != nil {
		c.metrics.Run()
	}

	// 启动操作服务
	c.server.Run()
	c.tl.Info("Screener started successfully")

	// 等待外部关闭信号
	<-ctx.Done()
	c.tl.Info("Shutting down screener due to context cancellation...")
}

// Stop 优雅关闭 Core 的所有资源
func (c *Core) Stop(ctx context.Context) {
	c.tl.Info("Stopping screener core...")

	// 停止操作服务
	if err := c.server.Stop(ctx); err != nil {
		c.tl.Warn("Operations server shutdown failed", zap.Error(err))
	}

	// 停止 Prometheus 监控服务
	if c.metrics != nil {
		_ = c.metrics.Stop(ctx)
	}

	c.tl.Info("Screener core stopped.")
}
