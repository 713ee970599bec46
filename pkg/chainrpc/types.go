package chainrpc

import "encoding/json"

// TokenAmount 上游返回的代币金额,amount 为最小单位整数字符串
type TokenAmount struct {
	Amount         string   `json:"amount"`
	Decimals       uint8    `json:"decimals"`
	UIAmount       *float64 `json:"uiAmount"`
	UIAmountString string   `json:"uiAmountString"`
}

// MintInfo jsonParsed 铸币账户信息
type MintInfo struct {
	Decimals        uint8   `json:"decimals"`
	Supply          string  `json:"supply"`
	MintAuthority   *string `json:"mintAuthority"`
	FreezeAuthority *string `json:"freezeAuthority"`
	IsInitialized   bool    `json:"isInitialized"`
}

// TokenAccountInfo jsonParsed 代币账户信息
type TokenAccountInfo struct {
	Mint        string      `json:"mint"`
	Owner       string      `json:"owner"`
	State       string      `json:"state"`
	TokenAmount TokenAmount `json:"tokenAmount"`
}

// TokenHolding 按铸币枚举出的持仓账户,两个代币程序命名空间合并后的条目
type TokenHolding struct {
	Address string
	Owner   string
	Mint    string
	Amount  TokenAmount
}

type parsedData struct {
	Parsed struct {
		Type string          `json:"type"`
		Info json.RawMessage `json:"info"`
	} `json:"parsed"`
	Program string `json:"program"`
}

type tokenSupplyResult struct {
	Value TokenAmount `json:"value"`
}

type accountInfoResult struct {
	Value *struct {
		Data  parsedData `json:"data"`
		Owner string     `json:"owner"`
	} `json:"value"`
}

type programAccount struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Data parsedData `json:"data"`
	} `json:"account"`
}
