package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"token-screener/internal/screener/config"
	"token-screener/internal/screener/model"
	"token-screener/pkg/chainrpc"
	"token-screener/pkg/utils"
)

// TokenInspector 铸币基础信息查询
type TokenInspector struct {
	cfg config.Config
	tl  *zap.Logger
	rpc *chainrpc.Client
}

func NewTokenInspector(cfg config.Config, logger *zap.Logger, rpc *chainrpc.Client) *TokenInspector {
	return &TokenInspector{
		cfg: cfg,
		tl:  logger,
		rpc: rpc,
	}
}

// Supply 查询铸币总供应量并换算为显示单位
func (s *TokenInspector) Supply(ctx context.Context, mint string) (*model.TokenSupply, error) {
	supply, err := s.rpc.GetTokenSupply(ctx, mint)
	if err != nil {
		s.tl.Warn("fetch token supply failed",
			zap.String("mint", mint),
			zap.Error(err))
		return nil, err
	}

	ui, err := utils.ParseRawAmount(supply.Amount, supply.Decimals)
	if err != nil {
		return nil, fmt.Errorf("parse supply for %s: %w", mint, err)
	}

	return &model.TokenSupply{
		Mint:      mint,
		RawSupply: supply.Amount,
		Decimals:  supply.Decimals,
		UiSupply:  ui,
	}, nil
}

// Authorities 查询铸币权限与冻结权限,nil 表示已放弃
func (s *TokenInspector) Authorities(ctx context.Context, mint string) (*model.TokenAuthorities, error) {
	info, err := s.rpc.GetMintInfo(ctx, mint)
	if err != nil {
		s.tl.Warn("fetch mint info failed",
			zap.String("mint", mint),
			zap.Error(err))
		return nil, err
	}

	return &model.TokenAuthorities{
		Mint:            mint,
		MintAuthority:   info.MintAuthority,
		FreezeAuthority: info.FreezeAuthority,
		Decimals:        info.Decimals,
		Initialized:     info.IsInitialized,
	}, nil
}
