package historyapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"token-screener/pkg/httpclient"
)

// 单页最多取这么多条,上游的硬上限
const maxPageLimit = 100

// Client 历史交易查询客户端,与链上 RPC 共用同一个限流的上游客户端
type Client struct {
	urlTemplate string // 含 {address} 占位符
	pageLimit   int
	httpClient  *httpclient.Client
	logger      *zap.Logger
}

func NewClient(urlTemplate string, pageLimit int, httpClient *httpclient.Client, logger *zap.Logger) *Client {
	if pageLimit <= 0 || pageLimit > maxPageLimit {
		pageLimit = maxPageLimit
	}
	return &Client{
		urlTemplate: urlTemplate,
		pageLimit:   pageLimit,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// Recent 拉取某地址最近一页交易,单页之外的历史被静默截断。
// 空结果表示没有历史记录,不视为错误。
func (c *Client) Recent(ctx context.Context, address string) ([]Transaction, error) {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}

	url := strings.Replace(c.urlTemplate, "{address}", address, 1)
	query := map[string]string{"limit": strconv.Itoa(c.pageLimit)}

	var txs []Transaction
	if err := c.httpClient.Get(ctx, url, query, nil, &txs); err != nil {
		return nil, fmt.Errorf("fetch transaction history for %s: %w", address, err)
	}

	c.logger.Debug("Fetched transaction history page",
		zap.String("address", address),
		zap.Int("count", len(txs)),
	)
	return txs, nil
}
