package usecase

import (
	"math/big"
	"time"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/ledger"
)

type LedgerUseCaseCfg struct {
	Repo ledger.Repo
	// most recent records kept per user, 0 disables pruning
	Retention int32
}

type impl struct {
	repo      ledger.Repo
	retention int32
}

func New(cfg *LedgerUseCaseCfg) ledger.UseCase {
	return &impl{
		repo:      cfg.Repo,
		retention: cfg.Retention,
	}
}

func (im *impl) Append(c ctx.Ctx, record *ledger.Record) error {
	if err := im.repo.Insert(c, record); err != nil {
		return err
	}
	if err := im.prune(c, record.User); err != nil {
		// retention is best effort, the new record is already durable
		c.WithFields(log.Fields{
			"user": record.User,
			"err":  err,
		}).Warn("ledger prune failed")
	}
	return nil
}

func (im *impl) prune(c ctx.Ctx, user domain.Address) error {
	if im.retention <= 0 {
		return nil
	}

	kept, err := im.repo.FindAll(c,
		ledger.WithUser(user),
		ledger.WithSort("-createdAt"),
		ledger.WithPagination(0, im.retention),
	)
	if err != nil {
		return err
	}
	if int32(len(kept)) < im.retention {
		return nil
	}

	oldest := kept[len(kept)-1]
	return im.repo.RemoveAll(c,
		ledger.WithUser(user),
		ledger.WithCreatedAtLT(oldest.CreatedAt),
	)
}

func (im *impl) Finalize(c ctx.Ctx, id ledger.RecordId, status ledger.Status, gasFee *big.Int) error {
	now := time.Now()
	patchable := ledger.RecordPatchable{
		Status:    &status,
		UpdatedAt: &now,
	}
	if gasFee != nil {
		fee := gasFee.String()
		patchable.GasFee = &fee
	}
	return im.repo.Update(c, id, patchable)
}

func (im *impl) History(c ctx.Ctx, user domain.Address, limit int32) ([]*ledger.Record, error) {
	return im.repo.FindAll(c,
		ledger.WithUser(user),
		ledger.WithSort("-createdAt"),
		ledger.WithPagination(0, limit),
	)
}

func (im *impl) ConfirmedSpendSince(c ctx.Ctx, user domain.Address, since time.Time) (*big.Int, error) {
	records, err := im.repo.FindAll(c,
		ledger.WithUser(user),
		ledger.WithStatus(ledger.StatusConfirmed),
		ledger.WithCreatedAtGT(since),
	)
	if err != nil {
		return nil, err
	}

	total := new(big.Int)
	for _, r := range records {
		total.Add(total, r.Spent())
	}
	return total, nil
}
