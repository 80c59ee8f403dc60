package usecase

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/x-xyz/sweeper/base/backoff"
	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
)

// waitReceipt polls at a fixed interval up to the configured attempt
// count. A transaction with no receipt by then is reported as
// domain.ErrConfirmationTimeout, not retried forever.
func (im *impl) waitReceipt(c ctx.Ctx, client domain.EthClientRepo, hash common.Hash) (*types.Receipt, error) {
	b := backoff.NewConstant(im.cfg.PollInterval)
	for i := 0; i < im.cfg.MaxAttempts; i++ {
		if err := b.Backoff(c); err != nil {
			return nil, err
		}
		receipt, err := client.TransactionReceipt(c, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
	}
	return nil, domain.ErrConfirmationTimeout
}
