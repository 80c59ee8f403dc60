package usecase

import (
	"math/big"
	"time"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/ledger"
	"github.com/x-xyz/sweeper/domain/spendlimit"
)

var timeNow = time.Now

type SpendLimitUseCaseCfg struct {
	Ledger ledger.UseCase
	// wei; applied when the user has no cap of their own
	DefaultCap *big.Int
	// per-user overrides, keyed by lowercased address
	Caps map[domain.Address]*big.Int
}

type impl struct {
	ledger     ledger.UseCase
	defaultCap *big.Int
	caps       map[domain.Address]*big.Int
}

func New(cfg *SpendLimitUseCaseCfg) spendlimit.UseCase {
	return &impl{
		ledger:     cfg.Ledger,
		defaultCap: cfg.DefaultCap,
		caps:       cfg.Caps,
	}
}

func (im *impl) capFor(user domain.Address) *big.Int {
	if override, ok := im.caps[user.ToLower()]; ok {
		return override
	}
	return im.defaultCap
}

// Authorize sums the user's confirmed spend since the start of the
// current UTC day and rejects when the proposal would break the cap.
func (im *impl) Authorize(c ctx.Ctx, user domain.Address, amount *big.Int) error {
	limit := im.capFor(user)
	if limit == nil || limit.Sign() <= 0 {
		return nil
	}

	dayStart := timeNow().UTC().Truncate(24 * time.Hour)
	spent, err := im.ledger.ConfirmedSpendSince(c, user, dayStart)
	if err != nil {
		return err
	}

	proposed := new(big.Int).Add(spent, amount)
	if proposed.Cmp(limit) > 0 {
		c.WithFields(log.Fields{
			"user":     user,
			"spent":    spent.String(),
			"amount":   amount.String(),
			"dailyCap": limit.String(),
		}).Warn("daily spend cap exceeded")
		return domain.ErrDailyLimitExceeded
	}
	return nil
}
