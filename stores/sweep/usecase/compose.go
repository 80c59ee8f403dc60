package usecase

import (
	"math/big"

	xabi "github.com/x-xyz/sweeper/base/abi"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/settlement"
)

// composeBatches partitions encoded orders into consecutive groups of at
// most maxBatchSize, preserving price-ascending order.
func composeBatches(orders []*settlement.BatchOrder, maxBatchSize int) []*settlement.Batch {
	if maxBatchSize <= 0 {
		maxBatchSize = 1
	}

	batches := []*settlement.Batch{}
	for start := 0; start < len(orders); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(orders) {
			end = len(orders)
		}
		group := orders[start:end]
		if len(group) == 0 {
			continue
		}
		batches = append(batches, &settlement.Batch{
			Orders: group,
			Status: settlement.BatchStatusBuilt,
		})
	}
	return batches
}

// gatewayCalls builds the bulk-call parameter list for one batch. An
// absent or zero payment token falls back to defaultCurrency; value stays
// zero since payment flows through the allowance pull.
func gatewayCalls(batch *settlement.Batch, defaultCurrency domain.Address) []xabi.GatewayCall {
	calls := make([]xabi.GatewayCall, 0, len(batch.Orders))
	for _, o := range batch.Orders {
		currency := o.Order.Currency
		if currency.IsEmpty() || currency.IsZero() {
			currency = defaultCurrency
		}
		calls = append(calls, xabi.GatewayCall{
			Data:     o.Encoded,
			Currency: toCommon(currency),
			Value:    new(big.Int),
		})
	}
	return calls
}

// currencyTotals sums price plus fee per payment token over the batch.
func currencyTotals(batch *settlement.Batch, defaultCurrency domain.Address) map[domain.Address]*big.Int {
	totals := map[domain.Address]*big.Int{}
	for _, o := range batch.Orders {
		currency := o.Order.Currency
		if currency.IsEmpty() || currency.IsZero() {
			currency = defaultCurrency
		}
		currency = currency.ToLower()
		total, ok := totals[currency]
		if !ok {
			total = new(big.Int)
			totals[currency] = total
		}
		total.Add(total, o.SettlePrice)
		total.Add(total, settlement.FeeOf(o.SettlePrice, o.Order.FeeBps))
	}
	return totals
}
