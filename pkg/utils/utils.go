package utils

import (
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// IsUnixSeconds 检查时间戳是否为秒级
func IsUnixSeconds(ts int64) bool {
	// 定义时间戳范围：1970-01-01 到 2100-01-01
	const maxUnix = 4_102_444_800 // 2100-01-01 00:00:00 UTC
	return ts >= 0 && ts < maxUnix
}

// AdjustDecimals 调整精度显示
func AdjustDecimals(value *big.Int, decimals uint8) decimal.Decimal {
	decimalValue := decimal.NewFromBigInt(value, 0)
	divisor := decimal.New(1, int32(decimals))
	return decimalValue.Div(divisor)
}

// ParseRawAmount 把上游返回的原始整数金额字符串按精度换算为显示金额
func ParseRawAmount(raw string, decimals uint8) (decimal.Decimal, error) {
	value, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid raw amount: %q", raw)
	}
	if value.Sign() < 0 {
		return decimal.Zero, fmt.Errorf("negative raw amount: %q", raw)
	}
	return AdjustDecimals(value, decimals), nil
}

// LamportsToSol lamports 转换为 SOL
func LamportsToSol(lamports int64) decimal.Decimal {
	return decimal.NewFromInt(lamports).Div(decimal.NewFromInt(int64(solana.LAMPORTS_PER_SOL)))
}
