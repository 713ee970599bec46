package chainrpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"token-screener/pkg/httpclient"
)

// 支持的代币程序命名空间,按铸币枚举账户时两者都要扫
var (
	TokenProgramID     = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

// ErrNotFound 链上不存在该账户
var ErrNotFound = errors.New("account not found")

// Client 封装链上 JSON-RPC 方法,传输与重试交给 httpclient
type Client struct {
	endpoint string
	http     *httpclient.Client
	logger   *zap.Logger
}

func NewClient(endpoint string, httpClient *httpclient.Client, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     httpClient,
		logger:   logger,
	}
}

// GetTokenSupply 查询铸币总供应量
func (c *Client) GetTokenSupply(ctx context.Context, mint string) (*TokenAmount, error) {
	if _, err := solana.PublicKeyFromBase58(mint); err != nil {
		return nil, fmt.Errorf("invalid mint address %q: %w", mint, err)
	}

	var out tokenSupplyResult
	if err := c.http.CallRPC(ctx, c.endpoint, "getTokenSupply", []interface{}{mint}, &out); err != nil {
		return nil, err
	}
	return &out.Value, nil
}

// GetMintInfo 查询铸币账户的解析信息(精度、供应量、权限)
func (c *Client) GetMintInfo(ctx context.Context, mint string) (*MintInfo, error) {
	data, err := c.getParsedAccount(ctx, mint)
	if err != nil {
		return nil, err
	}
	if data.Parsed.Type != "mint" {
		return nil, fmt.Errorf("account %s is not a mint (type %q)", mint, data.Parsed.Type)
	}

	var info MintInfo
	if err := sonic.Unmarshal(data.Parsed.Info, &info); err != nil {
		return nil, fmt.Errorf("decode mint info for %s: %w", mint, err)
	}
	return &info, nil
}

// GetTokenAccount 查询代币账户的解析信息(所属铸币、持有人、余额)
func (c *Client) GetTokenAccount(ctx context.Context, address string) (*TokenAccountInfo, error) {
	data, err := c.getParsedAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if data.Parsed.Type != "account" {
		return nil, fmt.Errorf("account %s is not a token account (type %q)", address, data.Parsed.Type)
	}

	var info TokenAccountInfo
	if err := sonic.Unmarshal(data.Parsed.Info, &info); err != nil {
		return nil, fmt.Errorf("decode token account for %s: %w", address, err)
	}
	return &info, nil
}

func (c *Client) getParsedAccount(ctx context.Context, address string) (*parsedData, error) {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}

	params := []interface{}{
		address,
		map[string]interface{}{"encoding": "jsonParsed"},
	}
	var out accountInfoResult
	if err := c.http.CallRPC(ctx, c.endpoint, "getAccountInfo", params, &out); err != nil {
		return nil, err
	}
	if out.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}
	return &out.Value.Data, nil
}

// GetTokenAccountsByMint 枚举某铸币在所有代币程序命名空间下的持仓账户并合并
func (c *Client) GetTokenAccountsByMint(ctx context.Context, mint string) ([]TokenHolding, error) {
	if _, err := solana.PublicKeyFromBase58(mint); err != nil {
		return nil, fmt.Errorf("invalid mint address %q: %w", mint, err)
	}

	memcmp := map[string]interface{}{
		"memcmp": map[string]interface{}{"offset": 0, "bytes": mint},
	}
	namespaces := []struct {
		program solana.PublicKey
		filters []interface{}
	}{
		// 旧版代币程序账户定长 165 字节,扩展程序账户长度可变只按铸币过滤
		{TokenProgramID, []interface{}{map[string]interface{}{"dataSize": 165}, memcmp}},
		{Token2022ProgramID, []interface{}{memcmp}},
	}

	var holdings []TokenHolding
	for _, ns := range namespaces {
		params := []interface{}{
			ns.program.String(),
			map[string]interface{}{
				"encoding": "jsonParsed",
				"filters":  ns.filters,
			},
		}
		var accounts []programAccount
		if err := c.http.CallRPC(ctx, c.endpoint, "getProgramAccounts", params, &accounts); err != nil {
			return nil, fmt.Errorf("enumerate accounts under %s: %w", ns.program, err)
		}

		for _, acct := range accounts {
			if acct.Account.Data.Parsed.Type != "account" {
				continue
			}
			var info TokenAccountInfo
			if err := sonic.Unmarshal(acct.Account.Data.Parsed.Info, &info); err != nil {
				c.logger.Warn("Skipping undecodable token account",
					zap.String("pubkey", acct.Pubkey),
					zap.Error(err),
				)
				continue
			}
			holdings = append(holdings, TokenHolding{
				Address: acct.Pubkey,
				Owner:   info.Owner,
				Mint:    info.Mint,
				Amount:  info.TokenAmount,
			})
		}
	}
	return holdings, nil
}
