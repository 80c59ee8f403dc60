package gasprice

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
	mDomain "github.com/x-xyz/sweeper/domain/mocks"
)

func TestGasPrice(t *testing.T) {
	req := require.New(t)
	_ctx := ctx.Background()

	gwei := big.NewInt(1000000000)

	cases := []struct {
		name         string
		strategy     Strategy
		multiplier   float64
		maxPriceGwei int64
		suggested    *big.Int
		expected     string
	}{
		{"standard passes suggestion through", StrategyStandard, 0, 0, new(big.Int).Mul(big.NewInt(30), gwei), "30000000000"},
		{"fast bumps 1.2x", StrategyFast, 0, 0, new(big.Int).Mul(big.NewInt(30), gwei), "36000000000"},
		{"fastest bumps 1.5x", StrategyFastest, 0, 0, new(big.Int).Mul(big.NewInt(30), gwei), "45000000000"},
		{"extra multiplier stacks", StrategyFast, 1.5, 0, new(big.Int).Mul(big.NewInt(30), gwei), "54000000000"},
		{"floors fractional wei", StrategyFast, 0, 0, big.NewInt(5), "6"},
		{"ceiling caps the result", StrategyFastest, 0, 40, new(big.Int).Mul(big.NewInt(30), gwei), "40000000000"},
		{"unknown strategy falls back to standard", Strategy("warp"), 0, 0, new(big.Int).Mul(big.NewInt(30), gwei), "30000000000"},
	}

	for _, c := range cases {
		client := &mDomain.EthClientRepo{}
		client.On("SuggestGasPrice", mock.Anything).Return(c.suggested, nil)

		svc := New(&Cfg{
			Clients:      map[domain.ChainId]domain.EthClientRepo{1: client},
			Strategy:     c.strategy,
			Multiplier:   c.multiplier,
			MaxPriceGwei: c.maxPriceGwei,
		})

		price, err := svc.GasPrice(_ctx, 1)
		req.NoError(err, c.name)
		req.Equal(c.expected, price.String(), c.name)
		client.AssertExpectations(t)
	}
}

func TestGasPriceUnsupportedChain(t *testing.T) {
	req := require.New(t)

	svc := New(&Cfg{Clients: map[domain.ChainId]domain.EthClientRepo{}, Strategy: StrategyStandard})
	_, err := svc.GasPrice(ctx.Background(), 5)
	req.ErrorIs(err, domain.ErrUnsupportedChain)
}
