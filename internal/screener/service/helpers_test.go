package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/pkg/chainrpc"
	"token-screener/pkg/historyapi"
	"token-screener/pkg/httpclient"
)

// 主网真实地址,保证 base58 校验通过
const (
	wsolMint = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	usdtMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	memeMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	jupMint  = "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN"

	baseVault  = "DQyrAcCrDXQ7NeoqGgDCZwBvWDcYmFCjSb9JtteuvPpz"
	quoteVault = "HLmqeL62xR1QoZ1HKKbXRrdN1p3phKpxRMb2VVopvBBz"
	altVaultX  = "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R"
	altVaultY  = "SRMuApVNdxXokk5GT7XD5cUUgXMBCoAz2LHeuAoKWRt"
	poolAddr   = "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"

	walletA = "86xCnPeV69n6t3DnyGvkKobf9FdN2H9oiVDdaMpo2MMY"
	walletB = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	walletC = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	lockerA = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"
	devAddr = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	vipAddr = "Vote111111111111111111111111111111111111111"
)

func testUpstreamConfig() httpclient.Config {
	return httpclient.Config{
		Timeout:        2 * time.Second,
		RatePerSecond:  1000,
		MaxConcurrent:  16,
		MaxRetries:     0,
		RetryBaseDelay: 5 * time.Millisecond,
	}
}

func testScreenerConfig() config.Config {
	return config.Config{
		Screening: config.ScreeningConfig{
			HistoryPageLimit:    50,
			LargeTransferNative: 10,
			RevivalMultiplier:   3,
			ReferenceMints:      strings.Join([]string{wsolMint, usdcMint, usdtMint}, ","),
		},
	}
}

type rpcReq struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

func decodeRPCReq(t *testing.T, r *http.Request) rpcReq {
	t.Helper()
	var req rpcReq
	require.NoError(t, sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req))
	return req
}

func writeRPC(t *testing.T, w http.ResponseWriter, id uint64, result interface{}) {
	t.Helper()
	payload, err := sonic.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func newChainClient(t *testing.T, handler http.HandlerFunc) *chainrpc.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return chainrpc.NewClient(srv.URL, httpclient.NewClient(testUpstreamConfig(), zap.NewNop()), zap.NewNop())
}

func newHistoryClient(t *testing.T, handler http.HandlerFunc) *historyapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	hc := httpclient.NewClient(testUpstreamConfig(), zap.NewNop())
	return historyapi.NewClient(srv.URL+"/v0/addresses/{address}/transactions", 50, hc, zap.NewNop())
}

// historyHandler 按路径中的地址返回对应页
func historyHandler(pages map[string][]historyapi.Transaction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
	}
}

func supplyResult(amount string, decimals uint8) map[string]interface{} {
	return map[string]interface{}{
		"value": map[string]interface{}{
			"amount":         amount,
			"decimals":       decimals,
			"uiAmountString": amount,
		},
	}
}

func tokenAccountResult(mint, owner, amount string, decimals uint8) map[string]interface{} {
	return map[string]interface{}{
		"value": map[string]interface{}{
			"data": map[string]interface{}{
				"parsed": map[string]interface{}{
					"type": "account",
					"info": map[string]interface{}{
						"mint":  mint,
						"owner": owner,
						"state": "initialized",
						"tokenAmount": map[string]interface{}{
							"amount":   amount,
							"decimals": decimals,
						},
					},
				},
				"program": "spl-token",
			},
			"owner": chainrpc.TokenProgramID.String(),
		},
	}
}

type holderRow struct {
	address string
	owner   string
	amount  string
}

func programAccountsResult(mint string, decimals uint8, rows []holderRow) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]interface{}{
			"pubkey": row.address,
			"account": map[string]interface{}{
				"data": map[string]interface{}{
					"parsed": map[string]interface{}{
						"type": "account",
						"info": map[string]interface{}{
							"mint":  mint,
							"owner": row.owner,
							"state": "initialized",
							"tokenAmount": map[string]interface{}{
								"amount":   row.amount,
								"decimals": decimals,
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

func minutesAgo(m int) int64 {
	return time.Now().Add(-time.Duration(m) * time.Minute).Unix()
}
