package handler

import (
	"errors"
	"fmt"

	"github.com/gorilla/rpc/v2/json2"

	"token-screener/pkg/httpclient"
)

// ValidationError 请求参数不合法,任何上游调用发起前返回
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// errKind 错误类别,用于指标与响应里的 data 字段
func errKind(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return "bad_params"
	}
	var terr *httpclient.TransportError
	if errors.As(err, &terr) {
		return "transport"
	}
	var rerr *httpclient.RpcError
	if errors.As(err, &rerr) {
		return "rpc"
	}
	var toerr *httpclient.TimeoutError
	if errors.As(err, &toerr) {
		return "timeout"
	}
	return "internal"
}

// rpcError 把内部错误映射为 json2 响应错误
// 参数错误 E_BAD_PARAMS,上游失败 E_SERVER,其余 E_INTERNAL
func rpcError(err error) error {
	kind := errKind(err)
	switch kind {
	case "bad_params":
		return &json2.Error{Code: json2.E_BAD_PARAMS, Message: err.Error()}
	case "transport", "rpc", "timeout":
		return &json2.Error{
			Code:    json2.E_SERVER,
			Message: err.Error(),
			Data:    map[string]string{"kind": kind},
		}
	default:
		return &json2.Error{Code: json2.E_INTERNAL, Message: err.Error()}
	}
}
