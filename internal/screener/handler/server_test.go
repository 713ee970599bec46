package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/internal/screener/model"
	"token-screener/internal/screener/service"
	"token-screener/pkg/chainrpc"
	"token-screener/pkg/historyapi"
	"token-screener/pkg/httpclient"
)

const (
	testUsdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testMemeMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	testWalletA  = "86xCnPeV69n6t3DnyGvkKobf9FdN2H9oiVDdaMpo2MMY"
	testWalletB  = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	testPool     = "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"
)

type rpcReq struct {
	ID     uint64        `json:"id"`
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

// newOpsServer 拉起带假上游的完整操作服务
func newOpsServer(t *testing.T, chainHandler http.HandlerFunc, pages map[string][]historyapi.Transaction) *httptest.Server {
	t.Helper()

	if chainHandler == nil {
		chainHandler = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unexpected chain rpc call", http.StatusInternalServerError)
		}
	}
	chainSrv := httptest.NewServer(chainHandler)
	t.Cleanup(chainSrv.Close)

	historySrv := httptest.NewServer(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		var address string
		for i, part := range parts {
			if part == "addresses" && i+1 < len(parts) {
				address = parts[i+1]
				break
			}
		}
		page := pages[address]
		if page == nil {
			page = []historyapi.Transaction{}
		}
		payload, _ := sonic.Marshal(page)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	})
	t.Cleanup(historySrv.Close)

	cfg := config.Config{
		Server: config.ServerConfig{Port: 8080},
		Screening: config.ScreeningConfig{
			HistoryPageLimit:    50,
			LargeTransferNative: 10,
			RevivalMultiplier:   3,
			ReferenceMints:      testUsdcMint,
		},
	}
	logger := zap.NewNop()
	upstream := httpclient.NewClient(httpclient.Config{
		Timeout:        2 * time.Second,
		RatePerSecond:  1000,
		MaxConcurrent:  16,
		MaxRetries:     0,
		RetryBaseDelay: 5 * time.Millisecond,
	}, logger)

	chain := chainrpc.NewClient(chainSrv.URL, upstream, logger)
	history := historyapi.NewClient(historySrv.URL+"/v0/addresses/{address}/transactions", 50, upstream, logger)

	api := NewScreenerAPI(cfg, logger,
		service.NewTokenInspector(cfg, logger, chain),
		service.NewReserveOracle(cfg, logger, chain),
		service.NewHolderAnalyzer(cfg, logger, chain),
		service.NewLiquidityAnalyzer(cfg, logger, chain),
		service.NewActivityAggregator(cfg, logger, history),
	)
	srv := NewServer(cfg.Server, logger, api)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, baseURL, method string, args, reply interface{}) error {
	t.Helper()
	body, err := json2.EncodeClientRequest(method, args)
	require.NoError(t, err)

	resp, err := http.Post(baseURL+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	return json2.DecodeClientResponse(resp.Body, reply)
}

func TestServer_TokenSupply(t *testing.T) {
	ts := newOpsServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcReq
		require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "getTokenSupply", req.Method)

		payload, _ := sonic.Marshal(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": map[string]interface{}{"amount": "5000000000", "decimals": 6},
			},
		})
		_, _ = w.Write(payload)
	}, nil)

	var reply model.TokenSupply
	require.NoError(t, call(t, ts.URL, "screener.TokenSupply", &TokenSupplyArgs{Mint: testMemeMint}, &reply))

	assert.Equal(t, testMemeMint, reply.Mint)
	assert.Equal(t, "5000000000", reply.RawSupply)
	assert.True(t, reply.UiSupply.Equal(decimal.NewFromInt(5000)), "ui supply = %s", reply.UiSupply)
}

func TestServer_TopHolders(t *testing.T) {
	holderRows := func(rows [][2]string) []map[string]interface{} {
		out := make([]map[string]interface{}, 0, len(rows))
		for _, row := range rows {
			out = append(out, map[string]interface{}{
				"pubkey": row[0],
				"account": map[string]interface{}{
					"data": map[string]interface{}{
						"parsed": map[string]interface{}{
							"type": "account",
							"info": map[string]interface{}{
								"mint":  testMemeMint,
								"owner": row[0],
								"state": "initialized",
								"tokenAmount": map[string]interface{}{
									"amount":   row[1],
									"decimals": 6,
								},
							},
						},
						"program": "spl-token",
					},
				},
			})
		}
		return out
	}

	ts := newOpsServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcReq
		require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req))

		var result interface{}
		switch req.Method {
		case "getTokenSupply":
			result = map[string]interface{}{
				"value": map[string]interface{}{"amount": "1000000000", "decimals": 6},
			}
		case "getProgramAccounts":
			if program, _ := req.Params[0].(string); program == chainrpc.TokenProgramID.String() {
				result = holderRows([][2]string{{testWalletA, "600000000"}, {testWalletB, "300000000"}})
			} else {
				result = holderRows([][2]string{{testPool, "100000000"}})
			}
		default:
			t.Errorf("unexpected method %s", req.Method)
		}
		payload, _ := sonic.Marshal(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result})
		_, _ = w.Write(payload)
	}, nil)

	var reply model.HolderSnapshot
	require.NoError(t, call(t, ts.URL, "screener.TopHolders", &TopHoldersArgs{Mint: testMemeMint, Limit: 2}, &reply))

	require.Len(t, reply.Holders, 2)
	assert.Equal(t, testWalletA, reply.Holders[0].Owner)
	assert.True(t, reply.Holders[0].PctOfSupply.Equal(decimal.NewFromInt(60)))
	assert.True(t, reply.Top1Pct.Equal(decimal.NewFromInt(60)))
	assert.True(t, reply.Top10Pct.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 3, reply.TotalAccounts)
}

func TestServer_TokenAge(t *testing.T) {
	pages := map[string][]historyapi.Transaction{
		testPool: {
			{Signature: "sig-a", Timestamp: time.Now().Add(-90 * time.Minute).Unix()},
		},
	}
	ts := newOpsServer(t, nil, pages)

	var reply model.TokenAge
	require.NoError(t, call(t, ts.URL, "screener.TokenAge", &TokenAgeArgs{Address: testPool}, &reply))

	require.NotNil(t, reply.AgeMinutes)
	assert.InDelta(t, 90, *reply.AgeMinutes, 1)
}

func TestServer_ValidationErrorCode(t *testing.T) {
	ts := newOpsServer(t, nil, nil)

	var reply model.HolderSnapshot
	err := call(t, ts.URL, "screener.TopHolders", &TopHoldersArgs{Mint: "not-base58", Limit: 10}, &reply)
	require.Error(t, err)

	var jsonErr *json2.Error
	require.ErrorAs(t, err, &jsonErr)
	assert.Equal(t, json2.E_BAD_PARAMS, jsonErr.Code)
	assert.Contains(t, jsonErr.Message, "mint")
}

func TestServer_LimitOutOfRangeRejected(t *testing.T) {
	ts := newOpsServer(t, nil, nil)

	var reply model.HolderSnapshot
	err := call(t, ts.URL, "screener.TopHolders", &TopHoldersArgs{Mint: testMemeMint, Limit: 101}, &reply)

	var jsonErr *json2.Error
	require.ErrorAs(t, err, &jsonErr)
	assert.Equal(t, json2.E_BAD_PARAMS, jsonErr.Code)
	assert.Contains(t, jsonErr.Message, "limit")
}

func TestServer_UpstreamFailureMapsToServerError(t *testing.T) {
	ts := newOpsServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}, nil)

	var reply model.TokenSupply
	err := call(t, ts.URL, "screener.TokenSupply", &TokenSupplyArgs{Mint: testMemeMint}, &reply)

	var jsonErr *json2.Error
	require.ErrorAs(t, err, &jsonErr)
	assert.Equal(t, json2.E_SERVER, jsonErr.Code)

	data, ok := jsonErr.Data.(map[string]interface{})
	require.True(t, ok, "data = %#v", jsonErr.Data)
	assert.Equal(t, "transport", data["kind"])
}

func TestServer_ComputeScoreWithDefaults(t *testing.T) {
	ts := newOpsServer(t, nil, nil)

	age := 10080.0
	args := &ComputeScoreArgs{
		Metrics: model.ScoreMetrics{
			LpProviderCount: 5,
			LpLockedPct:     95,
			Top1Pct:         10,
			Top10Pct:        40,
			Traders24h:      50,
			VipHits:         2,
			Revived:         true,
			AgeMinutes:      &age,
			FdvToMcRatio:    1.0,
		},
	}

	var reply model.ScoreResult
	require.NoError(t, call(t, ts.URL, "screener.ComputeScore", args, &reply))

	assert.Equal(t, 110.0, reply.Score)
	assert.Empty(t, reply.Reasons)
}

func TestServer_UnknownMethod(t *testing.T) {
	ts := newOpsServer(t, nil, nil)

	var reply struct{}
	err := call(t, ts.URL, "screener.Nope", &struct{}{}, &reply)

	// gorilla 对未注册方法统一回 E_SERVER
	var jsonErr *json2.Error
	require.ErrorAs(t, err, &jsonErr)
	assert.Equal(t, json2.E_SERVER, jsonErr.Code)
	assert.Contains(t, jsonErr.Message, "can't find")
}

func TestServer_Health(t *testing.T) {
	ts := newOpsServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
