package usecase

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/settlement"
)

// display conversions assume the 18-decimal payment tokens the gateway
// settles in
const nativeDecimals = -18

func weiToNative(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, nativeDecimals)
}

// Preview quotes a sweep without spending. It runs the same filter and
// price calculator as Execute so the quote predicts execution cost.
func (im *impl) Preview(c ctx.Ctx, req *settlement.PreviewRequest) (*settlement.Quote, error) {
	if _, ok := im.cfg.Clients[req.ChainId]; !ok {
		return nil, domain.ErrUnsupportedChain
	}

	quantity := req.Quantity
	if im.cfg.MaxQuantity > 0 && quantity > im.cfg.MaxQuantity {
		quantity = im.cfg.MaxQuantity
	}

	ceiling, err := parseCeiling(req.PriceCeiling)
	if err != nil {
		return nil, err
	}

	orders, rejections, err := im.candidates(c, req.ChainId, req.Collection, quantity, ceiling)
	if err != nil {
		return nil, err
	}

	totalCost := new(big.Int)
	prices := make([]decimal.Decimal, 0, len(orders))
	for _, o := range orders {
		prices = append(prices, weiToNative(o.SettlePrice))
		totalCost.Add(totalCost, o.SettlePrice)
		totalCost.Add(totalCost, settlement.FeeOf(o.SettlePrice, o.Order.FeeBps))
	}

	gasPrice, err := im.cfg.GasPrice.GasPrice(c, req.ChainId)
	if err != nil {
		return nil, err
	}
	gasUnits := im.cfg.BaseGas + im.cfg.PerOrderGas*uint64(len(orders))
	gasEstimate := new(big.Int).Mul(new(big.Int).SetUint64(gasUnits), gasPrice)

	total := weiToNative(totalCost)
	average := decimal.Zero
	if len(prices) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(prices))))
	}

	return &settlement.Quote{
		Available:    len(orders),
		Prices:       prices,
		TotalCost:    total,
		AveragePrice: average,
		GasEstimate:  weiToNative(gasEstimate),
		GrandTotal:   total.Add(weiToNative(gasEstimate)),
		Rejections:   rejections,
	}, nil
}
