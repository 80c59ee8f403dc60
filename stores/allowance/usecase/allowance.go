package usecase

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	xabi "github.com/x-xyz/sweeper/base/abi"
	"github.com/x-xyz/sweeper/base/backoff"
	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/allowance"
	"github.com/x-xyz/sweeper/domain/wallet"
	"github.com/x-xyz/sweeper/service/gasprice"
)

const approveGasLimit = uint64(60000)

type AllowanceUseCaseCfg struct {
	Clients  map[domain.ChainId]domain.EthClientRepo
	GasPrice gasprice.Service
	// approve receipt polling
	PollInterval time.Duration
	MaxAttempts  int
}

type impl struct {
	clients      map[domain.ChainId]domain.EthClientRepo
	gasPrice     gasprice.Service
	pollInterval time.Duration
	maxAttempts  int
}

func New(cfg *AllowanceUseCaseCfg) allowance.UseCase {
	return &impl{
		clients:      cfg.Clients,
		gasPrice:     cfg.GasPrice,
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxAttempts,
	}
}

func (im *impl) Check(c ctx.Ctx, chainId domain.ChainId, token, owner, spender domain.Address) (*big.Int, error) {
	client, ok := im.clients[chainId]
	if !ok {
		return nil, domain.ErrUnsupportedChain
	}

	data, err := xabi.Erc20ABI.Pack("allowance", common.HexToAddress(string(owner)), common.HexToAddress(string(spender)))
	if err != nil {
		return nil, err
	}

	to := common.HexToAddress(string(token))
	out, err := client.CallContract(c, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		c.WithFields(log.Fields{
			"chainId": chainId,
			"token":   token,
			"owner":   owner,
			"err":     err,
		}).Error("allowance call failed")
		return nil, err
	}

	vals, err := xabi.Erc20ABI.Unpack("allowance", out)
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

// Ensure is read-then-maybe-write: a no-op when the current allowance
// already covers required, otherwise an approval for exactly required
// followed by a confirming re-read.
func (im *impl) Ensure(c ctx.Ctx, chainId domain.ChainId, token, spender domain.Address, signer wallet.Signer, required *big.Int) (*allowance.Outcome, error) {
	client, ok := im.clients[chainId]
	if !ok {
		return nil, domain.ErrUnsupportedChain
	}

	owner := signer.Address()
	current, err := im.Check(c, chainId, token, owner, spender)
	if err != nil {
		return nil, err
	}
	if current.Cmp(required) >= 0 {
		return &allowance.Outcome{Approved: false, Allowance: current}, nil
	}

	nonce, err := client.PendingNonceAt(c, common.HexToAddress(string(owner)))
	if err != nil {
		return nil, err
	}
	price, err := im.gasPrice.GasPrice(c, chainId)
	if err != nil {
		return nil, err
	}
	data, err := xabi.Erc20ABI.Pack("approve", common.HexToAddress(string(spender)), required)
	if err != nil {
		return nil, err
	}

	to := common.HexToAddress(string(token))
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    new(big.Int),
		Gas:      approveGasLimit,
		GasPrice: price,
		Data:     data,
	})
	signed, err := signer.SignTx(tx, big.NewInt(int64(chainId)))
	if err != nil {
		return nil, err
	}

	if err := client.SendTransaction(c, signed); err != nil {
		c.WithFields(log.Fields{
			"chainId": chainId,
			"token":   token,
			"err":     err,
		}).Error("approve submission failed")
		return nil, err
	}
	txHash := domain.TxHash(signed.Hash().Hex())
	c.WithFields(log.Fields{
		"chainId":  chainId,
		"token":    token,
		"spender":  spender,
		"required": required.String(),
		"txHash":   txHash,
	}).Info("approval submitted")

	receipt, err := im.waitMined(c, client, signed.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		c.WithFields(log.Fields{
			"chainId": chainId,
			"txHash":  txHash,
		}).Error("approval reverted")
		return nil, domain.ErrApprovalFailed
	}

	// confirm the write took effect before any settlement trusts it
	after, err := im.Check(c, chainId, token, owner, spender)
	if err != nil {
		return nil, err
	}
	if after.Cmp(required) < 0 {
		return nil, domain.ErrApprovalFailed
	}

	return &allowance.Outcome{Approved: true, TxHash: txHash, Allowance: after}, nil
}

func (im *impl) waitMined(c ctx.Ctx, client domain.EthClientRepo, hash common.Hash) (*types.Receipt, error) {
	b := backoff.NewConstant(im.pollInterval)
	for i := 0; i < im.maxAttempts; i++ {
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

// RequiredFor sums price plus fee over the batch and pads one wei to
// absorb rounding on chain.
func RequiredFor(batchCost *big.Int) *big.Int {
	return new(big.Int).Add(batchCost, domain.Big1)
}
