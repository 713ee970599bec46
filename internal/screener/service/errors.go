package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmbiguousReserveError 两侧储备都无法判定为报价资产
// 参考铸币集合未命中且精度启发式无法区分时返回
type AmbiguousReserveError struct {
	ReserveX string
	ReserveY string
}

func (e *AmbiguousReserveError) Error() string {
	return fmt.Sprintf("cannot classify quote side between %s and %s", e.ReserveX, e.ReserveY)
}

// InvalidPoolError 池子储备余额非正,无法参与定价
type InvalidPoolError struct {
	Reserve string
	Balance decimal.Decimal
}

func (e *InvalidPoolError) Error() string {
	return fmt.Sprintf("pool reserve %s has non-positive balance %s", e.Reserve, e.Balance.String())
}
