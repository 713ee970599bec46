package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/pkg/logger"
)

// Server 操作服务 HTTP 入口,/rpc 承载 JSON-RPC 2.0,/health 探活
type Server struct {
	cfg    config.ServerConfig
	tl     *zap.Logger
	server *http.Server
}

func NewServer(cfg config.ServerConfig, logger *zap.Logger, api *ScreenerAPI) *Server {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(api, "screener"); err != nil {
		logger.Panic("register screener service failed", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", withTrace(rpcServer))
	mux.HandleFunc("/health", handleHealth)

	return &Server{
		cfg: cfg,
		tl:  logger,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: mux,
		},
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	payload, _ := sonic.Marshal(map[string]string{"status": "ok"})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

// withTrace 为每个操作请求开 span,trace 上下文透传给下游 service
func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := logger.StartSpanWithRequest(r, "screener", "rpc")
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Handler 完整路由,测试时可直接挂进 httptest
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run 启动操作服务
func (s *Server) Run() {
	go func() {
		s.tl.Info("operations server listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.tl.Error("operations server exited", zap.Error(err))
		}
	}()
}

// Stop 优雅关闭 HTTP 服务
func (s *Server) Stop(ctx context.Context) error {
	s.server.SetKeepAlivesEnabled(false)
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
