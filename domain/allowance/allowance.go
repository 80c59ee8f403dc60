package allowance

import (
	"math/big"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/wallet"
)

// Outcome reports what Ensure did. Approved is false when the existing
// allowance already covered the requirement.
type Outcome struct {
	Approved  bool
	TxHash    domain.TxHash
	Allowance *big.Int
}

// UseCase manages erc20 allowances toward the settlement gateway.
// Approvals are for the exact required amount, never unlimited.
type UseCase interface {
	Check(ctx ctx.Ctx, chainId domain.ChainId, token, owner, spender domain.Address) (*big.Int, error)
	Ensure(ctx ctx.Ctx, chainId domain.ChainId, token, spender domain.Address, signer wallet.Signer, required *big.Int) (*Outcome, error)
}
