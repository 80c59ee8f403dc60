package settlement

import (
	"math/big"

	"github.com/x-xyz/sweeper/domain"
)

// SettlePriceAt computes the price of a declining (or rising) auction at
// the given moment. The gateway contract recomputes this curve on chain
// and reverts on any divergence, so the math here is integer only with
// truncating division.
//
//	duration = endTime - startTime
//	elapsed  = clamp(min(now, endTime) - startTime, >= 0)
//	price    = basePrice + (endPrice - basePrice) * elapsed / duration
//
// A zero or negative window yields the base price. The result is floored
// at zero.
func SettlePriceAt(basePrice, endPrice *big.Int, startTime, endTime, now int64) *big.Int {
	duration := endTime - startTime
	if duration <= 0 {
		return new(big.Int).Set(basePrice)
	}

	at := now
	if at > endTime {
		at = endTime
	}
	elapsed := at - startTime
	if elapsed < 0 {
		elapsed = 0
	}

	diff := new(big.Int).Sub(endPrice, basePrice)
	diff.Mul(diff, big.NewInt(elapsed))
	diff.Quo(diff, big.NewInt(duration))

	price := new(big.Int).Add(basePrice, diff)
	if price.Sign() < 0 {
		return new(big.Int)
	}
	return price
}

// SettlePriceOf parses the string-form prices and times carried by a
// listing and delegates to SettlePriceAt.
func SettlePriceOf(basePrice, endPrice, startTime, endTime string, now int64) (*big.Int, error) {
	base, ok := new(big.Int).SetString(basePrice, 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	end, ok := new(big.Int).SetString(endPrice, 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	start, ok := new(big.Int).SetString(startTime, 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	stop, ok := new(big.Int).SetString(endTime, 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	return SettlePriceAt(base, end, start.Int64(), stop.Int64(), now), nil
}
