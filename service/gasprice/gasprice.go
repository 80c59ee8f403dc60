package gasprice

import (
	"math/big"

	"github.com/shopspring/decimal"

	bCtx "github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/domain"
)

type Strategy string

const (
	StrategyStandard Strategy = "standard"
	StrategyFast     Strategy = "fast"
	StrategyFastest  Strategy = "fastest"
)

var strategyBumps = map[Strategy]decimal.Decimal{
	StrategyStandard: decimal.NewFromInt(1),
	StrategyFast:     decimal.RequireFromString("1.2"),
	StrategyFastest:  decimal.RequireFromString("1.5"),
}

var gweiInWei = decimal.New(1, 9)

// Service prices transactions: node-suggested gas price, bumped by the
// configured strategy and multiplier, capped at the configured ceiling.
type Service interface {
	GasPrice(ctx bCtx.Ctx, chainId domain.ChainId) (*big.Int, error)
}

type Cfg struct {
	Clients map[domain.ChainId]domain.EthClientRepo
	// standard, fast or fastest
	Strategy Strategy
	// extra multiplier on top of the strategy bump, 0 means 1.0
	Multiplier float64
	// hard ceiling; 0 disables the cap
	MaxPriceGwei int64
}

type impl struct {
	clients      map[domain.ChainId]domain.EthClientRepo
	bump         decimal.Decimal
	maxPriceGwei int64
}

func New(cfg *Cfg) Service {
	bump, ok := strategyBumps[cfg.Strategy]
	if !ok {
		bump = strategyBumps[StrategyStandard]
	}
	if cfg.Multiplier > 0 {
		bump = bump.Mul(decimal.NewFromFloat(cfg.Multiplier))
	}
	return &impl{
		clients:      cfg.Clients,
		bump:         bump,
		maxPriceGwei: cfg.MaxPriceGwei,
	}
}

func (im *impl) GasPrice(ctx bCtx.Ctx, chainId domain.ChainId) (*big.Int, error) {
	client, ok := im.clients[chainId]
	if !ok {
		return nil, domain.ErrUnsupportedChain
	}

	suggested, err := client.SuggestGasPrice(ctx)
	if err != nil {
		ctx.WithFields(log.Fields{
			"chainId": chainId,
			"err":     err,
		}).Error("SuggestGasPrice failed")
		return nil, err
	}

	price := decimal.NewFromBigInt(suggested, 0).Mul(im.bump).Floor().BigInt()

	if im.maxPriceGwei > 0 {
		ceiling := decimal.NewFromInt(im.maxPriceGwei).Mul(gweiInWei).BigInt()
		if price.Cmp(ceiling) > 0 {
			ctx.WithFields(log.Fields{
				"chainId": chainId,
				"price":   price.String(),
				"capGwei": im.maxPriceGwei,
			}).Warn("gas price capped")
			price = ceiling
		}
	}

	return price, nil
}
