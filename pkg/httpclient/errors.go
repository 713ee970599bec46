package httpclient

import (
	"errors"
	"fmt"
)

// TransportError HTTP 层失败(网络错误或非 2xx 状态码)
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("transport error: status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RpcError 上游返回的 JSON-RPC 错误
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// TimeoutError 单次尝试超过截止时间
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("attempt timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// IsRetryable 传输层、RPC 层与超时错误可重试,其余错误直接上抛
func IsRetryable(err error) bool {
	var te *TransportError
	var re *RpcError
	var to *TimeoutError
	return errors.As(err, &te) || errors.As(err, &re) || errors.As(err, &to)
}
