package spendlimit

import (
	"math/big"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
)

// UseCase enforces the per-user daily spend cap.
type UseCase interface {
	// Authorize returns domain.ErrDailyLimitExceeded when the user's
	// confirmed spend for the current day plus amount exceeds their cap.
	Authorize(ctx ctx.Ctx, user domain.Address, amount *big.Int) error
}
