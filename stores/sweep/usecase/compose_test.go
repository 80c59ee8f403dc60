package usecase

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/settlement"
)

func batchOrder(tokenId domain.TokenId, currency domain.Address, price int64) *settlement.BatchOrder {
	return &settlement.BatchOrder{
		Order: &settlement.Order{
			Currency: currency,
			FeeBps:   big.NewInt(425),
		},
		TokenId:     tokenId,
		SettlePrice: big.NewInt(price),
		Encoded:     []byte{0x01},
	}
}

func TestComposeBatches(t *testing.T) {
	req := require.New(t)

	orders := []*settlement.BatchOrder{
		batchOrder("1", "0xc0ffee", 100),
		batchOrder("2", "0xc0ffee", 200),
		batchOrder("3", "0xc0ffee", 300),
		batchOrder("4", "0xc0ffee", 400),
		batchOrder("5", "0xc0ffee", 500),
	}

	batches := composeBatches(orders, 2)
	req.Len(batches, 3)
	req.Len(batches[0].Orders, 2)
	req.Len(batches[1].Orders, 2)
	req.Len(batches[2].Orders, 1)
	// consecutive groups keep the price-ascending order
	req.Equal(domain.TokenId("1"), batches[0].Orders[0].TokenId)
	req.Equal(domain.TokenId("5"), batches[2].Orders[0].TokenId)
	for _, b := range batches {
		req.Equal(settlement.BatchStatusBuilt, b.Status)
	}

	req.Empty(composeBatches(nil, 2))
}

func TestGatewayCalls(t *testing.T) {
	req := require.New(t)

	weth := domain.Address("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	batch := &settlement.Batch{Orders: []*settlement.BatchOrder{
		batchOrder("1", "0xc0ffee0000000000000000000000000000000001", 100),
		batchOrder("2", domain.EmptyAddress, 200),
	}}

	calls := gatewayCalls(batch, weth)
	req.Len(calls, 2)
	req.Equal(common.HexToAddress("0xc0ffee0000000000000000000000000000000001"), calls[0].Currency)
	// zero payment token falls back to the default currency
	req.Equal(common.HexToAddress(string(weth)), calls[1].Currency)
	// payment flows via allowance, never attached value
	req.Equal("0", calls[0].Value.String())
	req.Equal("0", calls[1].Value.String())
}

func TestCurrencyTotals(t *testing.T) {
	req := require.New(t)

	weth := domain.Address("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	batch := &settlement.Batch{Orders: []*settlement.BatchOrder{
		batchOrder("1", weth, 10000),
		batchOrder("2", domain.EmptyAddress, 10000),
		batchOrder("3", "0xda1", 33),
	}}

	totals := currencyTotals(batch, weth)
	req.Len(totals, 2)
	// two weth orders, 10000 + 425 fee each
	req.Equal("20850", totals[weth].String())
	// 33 + ceil(33*425/10000) = 33 + 2
	req.Equal("35", totals[domain.Address("0xda1")].String())
}
