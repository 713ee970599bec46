package handler

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"token-screener/internal/screener/model"
)

const maxHolderLimit = 100

func requireBase58(field, value string) error {
	if _, err := solana.PublicKeyFromBase58(value); err != nil {
		return &ValidationError{Field: field, Reason: "must be a base58 address"}
	}
	return nil
}

// requireAddresses 非空列表且每个元素都是合法地址
func requireAddresses(field string, values []string) error {
	if len(values) == 0 {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return requireEachBase58(field, values)
}

func requireEachBase58(field string, values []string) error {
	for i, value := range values {
		if err := requireBase58(fmt.Sprintf("%s[%d]", field, i), value); err != nil {
			return err
		}
	}
	return nil
}

func requirePositive(field string, value int) error {
	if value <= 0 {
		return &ValidationError{Field: field, Reason: "must be positive"}
	}
	return nil
}

type TokenSupplyArgs struct {
	Mint string `json:"mint"`
}

func (a *TokenSupplyArgs) Validate() error {
	return requireBase58("mint", a.Mint)
}

type TokenAuthoritiesArgs struct {
	Mint string `json:"mint"`
}

func (a *TokenAuthoritiesArgs) Validate() error {
	return requireBase58("mint", a.Mint)
}

type PriceAndFdvArgs struct {
	Mint     string `json:"mint"`
	ReserveX string `json:"reserveX"`
	ReserveY string `json:"reserveY"`
}

func (a *PriceAndFdvArgs) Validate() error {
	if err := requireBase58("mint", a.Mint); err != nil {
		return err
	}
	if err := requireBase58("reserveX", a.ReserveX); err != nil {
		return err
	}
	return requireBase58("reserveY", a.ReserveY)
}

type TvlTotalArgs struct {
	Pools []model.PoolRef `json:"pools"`
}

func (a *TvlTotalArgs) Validate() error {
	if len(a.Pools) == 0 {
		return &ValidationError{Field: "pools", Reason: "must not be empty"}
	}
	for i, ref := range a.Pools {
		if err := requireBase58(fmt.Sprintf("pools[%d].reserveX", i), ref.ReserveX); err != nil {
			return err
		}
		if err := requireBase58(fmt.Sprintf("pools[%d].reserveY", i), ref.ReserveY); err != nil {
			return err
		}
	}
	return nil
}

type TopHoldersArgs struct {
	Mint  string `json:"mint"`
	Limit int    `json:"limit"`
}

func (a *TopHoldersArgs) Validate() error {
	if err := requireBase58("mint", a.Mint); err != nil {
		return err
	}
	if a.Limit < 1 || a.Limit > maxHolderLimit {
		return &ValidationError{Field: "limit", Reason: fmt.Sprintf("must be within [1, %d]", maxHolderLimit)}
	}
	return nil
}

type LpProvidersArgs struct {
	LpMint        string   `json:"lpMint"`
	ExcludeOwners []string `json:"excludeOwners"`
}

func (a *LpProvidersArgs) Validate() error {
	if err := requireBase58("lpMint", a.LpMint); err != nil {
		return err
	}
	return requireEachBase58("excludeOwners", a.ExcludeOwners)
}

type LpLockedArgs struct {
	LpMint       string   `json:"lpMint"`
	LockerOwners []string `json:"lockerOwners"`
}

func (a *LpLockedArgs) Validate() error {
	if err := requireBase58("lpMint", a.LpMint); err != nil {
		return err
	}
	return requireEachBase58("lockerOwners", a.LockerOwners)
}

type ActivityWindowsArgs struct {
	Addresses     []string `json:"addresses"`
	WindowMinutes []int    `json:"windowMinutes"`
}

func (a *ActivityWindowsArgs) Validate() error {
	if err := requireAddresses("addresses", a.Addresses); err != nil {
		return err
	}
	if len(a.WindowMinutes) == 0 {
		return &ValidationError{Field: "windowMinutes", Reason: "must not be empty"}
	}
	for i, w := range a.WindowMinutes {
		if err := requirePositive(fmt.Sprintf("windowMinutes[%d]", i), w); err != nil {
			return err
		}
	}
	return nil
}

type TokenAgeArgs struct {
	Address string `json:"address"`
}

func (a *TokenAgeArgs) Validate() error {
	return requireBase58("address", a.Address)
}

type FeesPaidArgs struct {
	Addresses    []string `json:"addresses"`
	SinceMinutes int      `json:"sinceMinutes"`
}

func (a *FeesPaidArgs) Validate() error {
	if err := requireAddresses("addresses", a.Addresses); err != nil {
		return err
	}
	return requirePositive("sinceMinutes", a.SinceMinutes)
}

type TradersTradesVolumeArgs struct {
	Addresses    []string `json:"addresses"`
	SinceMinutes int      `json:"sinceMinutes"`
}

func (a *TradersTradesVolumeArgs) Validate() error {
	if err := requireAddresses("addresses", a.Addresses); err != nil {
		return err
	}
	return requirePositive("sinceMinutes", a.SinceMinutes)
}

type FdvToMcArgs struct {
	FdvUsd       decimal.Decimal `json:"fdvUsd"`
	MarketCapUsd decimal.Decimal `json:"marketCapUsd"`
}

func (a *FdvToMcArgs) Validate() error {
	if a.FdvUsd.IsNegative() {
		return &ValidationError{Field: "fdvUsd", Reason: "must not be negative"}
	}
	if a.MarketCapUsd.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "marketCapUsd", Reason: "must be positive"}
	}
	return nil
}

type VipPresenceArgs struct {
	VipAddresses  []string `json:"vipAddresses"`
	ScanAddresses []string `json:"scanAddresses"`
}

func (a *VipPresenceArgs) Validate() error {
	if err := requireAddresses("vipAddresses", a.VipAddresses); err != nil {
		return err
	}
	return requireAddresses("scanAddresses", a.ScanAddresses)
}

type DevBehaviorArgs struct {
	DevAddresses  []string `json:"devAddresses"`
	ScanAddresses []string `json:"scanAddresses"`
}

func (a *DevBehaviorArgs) Validate() error {
	if err := requireAddresses("devAddresses", a.DevAddresses); err != nil {
		return err
	}
	return requireAddresses("scanAddresses", a.ScanAddresses)
}

type RevivalDetectorArgs struct {
	PoolAddresses []string `json:"poolAddresses"`
}

func (a *RevivalDetectorArgs) Validate() error {
	return requireAddresses("poolAddresses", a.PoolAddresses)
}

type FirstWaveBuyersArgs struct {
	PoolAddress string   `json:"poolAddress"`
	Minutes     int      `json:"minutes"`
	VipList     []string `json:"vipList"`
}

func (a *FirstWaveBuyersArgs) Validate() error {
	if err := requireBase58("poolAddress", a.PoolAddress); err != nil {
		return err
	}
	if err := requirePositive("minutes", a.Minutes); err != nil {
		return err
	}
	return requireEachBase58("vipList", a.VipList)
}

type ComputeScoreArgs struct {
	Metrics    model.ScoreMetrics     `json:"metrics"`
	Thresholds *model.ScoreThresholds `json:"thresholds"`
	Weights    *model.ScoreWeights    `json:"weights"`
}

func (a *ComputeScoreArgs) Validate() error {
	if a.Metrics.LpProviderCount < 0 {
		return &ValidationError{Field: "metrics.lpProviderCount", Reason: "must not be negative"}
	}
	if a.Metrics.Top1Pct < 0 || a.Metrics.Top10Pct < 0 {
		return &ValidationError{Field: "metrics", Reason: "concentration must not be negative"}
	}
	return nil
}
