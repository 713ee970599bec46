package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"resty.dev/v3"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config 配置参数
type Config struct {
	Timeout        time.Duration // 单次尝试超时时间
	RatePerSecond  int           // 每秒请求次数
	MaxConcurrent  int64         // 最大并发在途请求数
	MaxRetries     int           // 最大重试次数
	RetryBaseDelay time.Duration // 线性退避基础延迟
	UserAgent      string        // 可选 User-Agent
}

// Client 是上游通用的 HTTP 客户端,带限流、并发上限与线性退避重试
type Client struct {
	client     *resty.Client
	logger     *zap.Logger
	limiter    *rate.Limiter
	sem        *semaphore.Weighted
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	requestID  atomic.Uint64
}

// NewClient 创建一个新的上游客户端,限流器与并发计数为进程级共享状态
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 10
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)

	// 创建 Resty 客户端,重试由 withRetry 统一控制,限流在请求中间件内等待而非拒绝
	restyClient := resty.New().
		SetRetryCount(0).
		AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
			limiterCtx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)
			defer cancel()

			if err := limiter.Wait(limiterCtx); err != nil {
				logger.Warn("Rate limiter wait failed", zap.Error(err))
				return err
			}
			if cfg.UserAgent != "" {
				r.SetHeader("User-Agent", cfg.UserAgent)
			}
			logger.Debug("Outgoing request", zap.String("url", r.URL))
			return nil
		}).
		AddResponseMiddleware(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				logger.Warn("HTTP request failed",
					zap.Int("status", resp.StatusCode()),
					zap.String("url", resp.Request.URL),
				)
			}
			return nil
		})

	return &Client{
		client:     restyClient,
		logger:     logger,
		limiter:    limiter,
		sem:        semaphore.NewWeighted(cfg.MaxConcurrent),
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.RetryBaseDelay,
	}
}

// withRetry 执行一次调用,可重试错误按 baseDelay*attempt 线性退避,
// 重试耗尽后包装并上抛最后一个错误
func (c *Client) withRetry(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(attemptCtx)
		cancel()
		c.sem.Release(1)

		if err == nil {
			return nil
		}
		// 调用方已取消,视为终态,不计入重试
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
		if attempt > c.maxRetries {
			break
		}
		delay := c.baseDelay * time.Duration(attempt)
		c.logger.Warn("Upstream call failed, retrying",
			zap.String("call", label),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	c.logger.Error("Upstream call failed after all retries",
		zap.String("call", label),
		zap.Int("attempts", c.maxRetries+1),
		zap.Error(lastErr),
	)
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// classify 把一次尝试的失败归入错误分类
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	return &TransportError{Err: err}
}

// Get 发起 GET 请求并把响应体解码进 out
func (c *Client) Get(ctx context.Context, url string, queryParams map[string]string, headers map[string]string, out interface{}) error {
	return c.withRetry(ctx, "GET "+url, func(attemptCtx context.Context) error {
		req := c.client.R().
			SetContext(attemptCtx).
			SetQueryParams(queryParams)

		if out != nil {
			req.SetResult(out)
		}
		if headers != nil {
			req.SetHeaders(headers)
		}

		resp, err := req.Get(url)
		if err != nil {
			return classify(err)
		}
		if resp.StatusCode() >= 400 {
			return &TransportError{StatusCode: resp.StatusCode(), Body: resp.String()}
		}
		return nil
	})
}

// Post 发起 JSON POST 请求并把响应体解码进 out
func (c *Client) Post(ctx context.Context, url string, body interface{}, headers map[string]string, out interface{}) error {
	return c.withRetry(ctx, "POST "+url, func(attemptCtx context.Context) error {
		req := c.client.R().
			SetContext(attemptCtx).
			SetBody(body)

		if out != nil {
			req.SetResult(out)
		}
		if headers != nil {
			req.SetHeaders(headers)
		}
		req.SetHeader("Content-Type", "application/json")

		resp, err := req.Post(url)
		if err != nil {
			return classify(err)
		}
		if resp.StatusCode() >= 400 {
			return &TransportError{StatusCode: resp.StatusCode(), Body: resp.String()}
		}
		return nil
	})
}

// rpcRequest JSON-RPC 2.0 请求体
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcResponse JSON-RPC 2.0 响应体
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RpcError       `json:"error"`
}

// CallRPC 发起 JSON-RPC 调用,上游错误信封归类为 RpcError 并参与重试
func (c *Client) CallRPC(ctx context.Context, url string, method string, params interface{}, out interface{}) error {
	return c.withRetry(ctx, "rpc "+method, func(attemptCtx context.Context) error {
		reqBody := rpcRequest{
			JSONRPC: "2.0",
			ID:      c.requestID.Add(1),
			Method:  method,
			Params:  params,
		}
		var envelope rpcResponse

		req := c.client.R().
			SetContext(attemptCtx).
			SetBody(reqBody).
			SetResult(&envelope)
		req.SetHeader("Content-Type", "application/json")

		resp, err := req.Post(url)
		if err != nil {
			return classify(err)
		}
		if resp.StatusCode() >= 400 {
			return &TransportError{StatusCode: resp.StatusCode(), Body: resp.String()}
		}
		if envelope.Error != nil {
			return envelope.Error
		}
		if out != nil && len(envelope.Result) > 0 {
			if err := sonic.Unmarshal(envelope.Result, out); err != nil {
				return fmt.Errorf("decode rpc result for %s: %w", method, err)
			}
		}
		return nil
	})
}
