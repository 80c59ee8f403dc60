package usecase

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	xabi "github.com/x-xyz/sweeper/base/abi"
	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/base/metrics"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/allowance"
	"github.com/x-xyz/sweeper/domain/ledger"
	"github.com/x-xyz/sweeper/domain/listing"
	"github.com/x-xyz/sweeper/domain/settlement"
	"github.com/x-xyz/sweeper/domain/spendlimit"
	"github.com/x-xyz/sweeper/domain/wallet"
	"github.com/x-xyz/sweeper/service/gasprice"
)

var timeNow = time.Now

// GatewayCfg describes the settlement gateway on one chain.
type GatewayCfg struct {
	Address domain.Address
	// used when a listing's payment token is the zero address
	DefaultCurrency domain.Address
}

type SweepUseCaseCfg struct {
	Clients    map[domain.ChainId]domain.EthClientRepo
	Gateways   map[domain.ChainId]GatewayCfg
	Source     listing.SourceRepo
	Filter     listing.UseCase
	Allowance  allowance.UseCase
	SpendLimit spendlimit.UseCase
	Ledger     ledger.UseCase
	Wallets    wallet.Provider
	GasPrice   gasprice.Service
	Metrics    metrics.Service

	// orders per gateway transaction
	MaxBatchSize int
	// hard cap on requested quantity per sweep
	MaxQuantity int
	// marketplace fee default when the listing omits its own
	FeeBps int64
	// listings pulled from the order book per sweep
	FetchLimit int
	// gas estimate = BaseGas + PerOrderGas per order
	BaseGas     uint64
	PerOrderGas uint64
	// receipt polling
	PollInterval time.Duration
	MaxAttempts  int
}

type impl struct {
	cfg *SweepUseCaseCfg
	met metrics.Service

	// wallets with a sweep between submission and terminal state
	guardMu sync.Mutex
	guarded map[domain.Address]struct{}
}

func New(cfg *SweepUseCaseCfg) settlement.UseCase {
	return &impl{
		cfg:     cfg,
		met:     cfg.Metrics,
		guarded: map[domain.Address]struct{}{},
	}
}

func toCommon(a domain.Address) common.Address {
	return common.HexToAddress(string(a))
}

// acquire takes the wallet's exclusion guard, failing fast when another
// sweep holds it.
func (im *impl) acquire(wallet domain.Address) error {
	im.guardMu.Lock()
	defer im.guardMu.Unlock()

	key := wallet.ToLower()
	if _, held := im.guarded[key]; held {
		return domain.ErrSweepInProgress
	}
	im.guarded[key] = struct{}{}
	return nil
}

func (im *impl) release(wallet domain.Address) {
	im.guardMu.Lock()
	defer im.guardMu.Unlock()
	delete(im.guarded, wallet.ToLower())
}

// candidates fetches, filters and encodes up to quantity listings,
// pricing each at a single shared timestamp.
func (im *impl) candidates(c ctx.Ctx, chainId domain.ChainId, collection domain.Address, quantity int, ceiling *big.Int) ([]*settlement.BatchOrder, []*listing.Rejection, error) {
	raw, err := im.cfg.Source.Listings(c, chainId, collection, im.cfg.FetchLimit)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, domain.ErrNothingToSweep
	}

	kept, rejections, err := im.cfg.Filter.Settlable(c, raw, ceiling)
	if err != nil {
		return nil, rejections, err
	}

	now := timeNow().Unix()
	orders := []*settlement.BatchOrder{}
	for _, l := range kept {
		if len(orders) == quantity {
			break
		}

		order, err := settlement.OrderFromListing(l, im.cfg.FeeBps)
		if err != nil {
			c.WithFields(log.Fields{
				"tokenId": l.TokenId,
				"err":     err,
			}).Warn("undecodable listing skipped")
			continue
		}
		price := settlement.SettlePriceAt(order.BasePrice, order.EndPrice, order.StartTime.Int64(), order.EndTime.Int64(), now)

		bo, err := settlement.EncodeListing(c, l, price, "", im.cfg.FeeBps)
		if err != nil {
			c.WithFields(log.Fields{
				"tokenId": l.TokenId,
				"err":     err,
			}).Warn("unencodable listing skipped")
			continue
		}
		if bo.HashMismatch {
			im.met.BumpSum("sweep.encode.hash_mismatch", 1)
		}
		orders = append(orders, bo)
	}

	if len(orders) == 0 {
		return nil, rejections, domain.ErrNothingToSweep
	}
	return orders, rejections, nil
}

// Execute runs a sweep to its terminal state: filter, encode, batch,
// approve, submit and confirm, ledgering every submitted batch. The
// wallet guard is held for the whole run.
func (im *impl) Execute(c ctx.Ctx, req *settlement.ExecuteRequest) (*settlement.Result, error) {
	client, ok := im.cfg.Clients[req.ChainId]
	if !ok {
		return nil, domain.ErrUnsupportedChain
	}
	gateway, ok := im.cfg.Gateways[req.ChainId]
	if !ok {
		return nil, domain.ErrUnsupportedChain
	}

	signer, err := im.cfg.Wallets.Signer(req.Wallet)
	if err != nil {
		return nil, err
	}

	if err := im.acquire(req.Wallet); err != nil {
		return nil, err
	}
	defer im.release(req.Wallet)

	quantity := req.Quantity
	if im.cfg.MaxQuantity > 0 && quantity > im.cfg.MaxQuantity {
		quantity = im.cfg.MaxQuantity
	}

	ceiling, err := parseCeiling(req.PriceCeiling)
	if err != nil {
		return nil, err
	}

	orders, _, err := im.candidates(c, req.ChainId, req.Collection, quantity, ceiling)
	if err != nil {
		return nil, err
	}

	planned := new(big.Int)
	for _, o := range orders {
		planned.Add(planned, o.SettlePrice)
		planned.Add(planned, settlement.FeeOf(o.SettlePrice, o.Order.FeeBps))
	}
	if err := im.cfg.SpendLimit.Authorize(c, req.User, planned); err != nil {
		return nil, err
	}

	attempt := &settlement.Attempt{
		Id:           uuid.New().String(),
		ChainId:      req.ChainId,
		Collection:   req.Collection.ToLower(),
		User:         req.User.ToLower(),
		Wallet:       req.Wallet.ToLower(),
		Quantity:     req.Quantity,
		PriceCeiling: ceiling,
		Batches:      composeBatches(orders, im.cfg.MaxBatchSize),
		Status:       settlement.AttemptStatusPending,
		TotalSpent:   new(big.Int),
		GasSpent:     new(big.Int),
		CreatedAt:    timeNow(),
	}
	c = ctx.WithValue(c, "attemptId", attempt.Id)

	for i, batch := range attempt.Batches {
		halt, err := im.settleBatch(c, client, gateway, signer, attempt, batch)
		if err != nil {
			// nothing was submitted for this batch
			c.WithFields(log.Fields{
				"batch": i,
				"err":   err,
			}).Error("batch aborted before submission")
			if attempt.Status == settlement.AttemptStatusPending && len(attempt.Purchased) == 0 {
				return nil, err
			}
			attempt.Reason = err.Error()
			break
		}
		if halt {
			c.WithFields(log.Fields{
				"batch":  i,
				"status": batch.Status,
			}).Warn("halting remaining batches")
			break
		}
	}

	im.finishAttempt(attempt)
	return im.result(attempt), nil
}

// settleBatch runs one batch through allowance, submission and
// confirmation. halt reports whether later batches must not run.
func (im *impl) settleBatch(c ctx.Ctx, client domain.EthClientRepo, gateway GatewayCfg, signer wallet.Signer, attempt *settlement.Attempt, batch *settlement.Batch) (halt bool, err error) {
	totals := currencyTotals(batch, gateway.DefaultCurrency)
	for currency, total := range totals {
		balance, err := im.erc20BalanceOf(c, client, currency, signer.Address())
		if err != nil {
			return false, err
		}
		if balance.Cmp(total) < 0 {
			c.WithFields(log.Fields{
				"currency": currency,
				"balance":  balance.String(),
				"needed":   total.String(),
			}).Error("wallet balance below batch cost")
			return false, domain.ErrInsufficientBalance
		}

		required := new(big.Int).Add(total, domain.Big1)
		if _, err := im.cfg.Allowance.Ensure(c, attempt.ChainId, currency, gateway.Address, signer, required); err != nil {
			return false, err
		}
	}

	txHash, gasPrice, err := im.submit(c, client, gateway, signer, attempt.ChainId, batch)
	if err != nil {
		return false, err
	}
	batch.TxHash = txHash
	batch.Status = settlement.BatchStatusSubmitted

	record := im.recordFor(attempt, batch)
	if err := im.cfg.Ledger.Append(c, record); err != nil {
		c.WithFields(log.Fields{
			"txHash": txHash,
			"err":    err,
		}).Error("ledger append failed")
	}

	receipt, err := im.waitReceipt(c, client, common.HexToHash(string(txHash)))
	if err == domain.ErrConfirmationTimeout {
		// may still confirm later out-of-band; reported, not retried
		batch.Status = settlement.BatchStatusUnconfirmed
		im.finalize(c, record, ledger.StatusFailed, nil)
		return true, nil
	} else if err != nil {
		return true, err
	}

	gasFee := new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), gasPrice)
	attempt.GasSpent.Add(attempt.GasSpent, gasFee)

	if receipt.Status != types.ReceiptStatusSuccessful {
		batch.Status = settlement.BatchStatusReverted
		im.finalize(c, record, ledger.StatusFailed, gasFee)
		c.WithFields(log.Fields{
			"txHash": txHash,
		}).Error("batch reverted")
		return true, nil
	}

	batch.Status = settlement.BatchStatusConfirmed
	batch.GasFee = gasFee
	im.finalize(c, record, ledger.StatusConfirmed, gasFee)

	attempt.TotalSpent.Add(attempt.TotalSpent, batch.Cost())
	for _, o := range batch.Orders {
		attempt.Purchased = append(attempt.Purchased, o.TokenId)
	}
	return false, nil
}

func (im *impl) submit(c ctx.Ctx, client domain.EthClientRepo, gateway GatewayCfg, signer wallet.Signer, chainId domain.ChainId, batch *settlement.Batch) (domain.TxHash, *big.Int, error) {
	data, err := xabi.PackSettleBulk(gatewayCalls(batch, gateway.DefaultCurrency))
	if err != nil {
		return "", nil, err
	}

	nonce, err := client.PendingNonceAt(c, toCommon(signer.Address()))
	if err != nil {
		return "", nil, err
	}
	price, err := im.cfg.GasPrice.GasPrice(c, chainId)
	if err != nil {
		return "", nil, err
	}

	to := toCommon(gateway.Address)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    new(big.Int),
		Gas:      im.cfg.BaseGas + im.cfg.PerOrderGas*uint64(len(batch.Orders)),
		GasPrice: price,
		Data:     data,
	})
	signed, err := signer.SignTx(tx, big.NewInt(int64(chainId)))
	if err != nil {
		return "", nil, err
	}

	if err := client.SendTransaction(c, signed); err != nil {
		return "", nil, err
	}

	// the hash comes from our own signed payload, never from a receipt
	txHash := domain.TxHash(signed.Hash().Hex())
	c.WithFields(log.Fields{
		"txHash": txHash,
		"orders": len(batch.Orders),
	}).Info("batch submitted")
	return txHash, price, nil
}

func (im *impl) erc20BalanceOf(c ctx.Ctx, client domain.EthClientRepo, token, owner domain.Address) (*big.Int, error) {
	data, err := xabi.Erc20ABI.Pack("balanceOf", toCommon(owner))
	if err != nil {
		return nil, err
	}
	to := toCommon(token)
	out, err := client.CallContract(c, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	vals, err := xabi.Erc20ABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, err
	}
	return vals[0].(*big.Int), nil
}

func (im *impl) recordFor(attempt *settlement.Attempt, batch *settlement.Batch) *ledger.Record {
	tokenIds := make([]domain.TokenId, 0, len(batch.Orders))
	for _, o := range batch.Orders {
		tokenIds = append(tokenIds, o.TokenId)
	}
	amount := batch.Cost().String()
	now := timeNow()
	return &ledger.Record{
		TxHash:     batch.TxHash,
		ChainId:    attempt.ChainId,
		User:       attempt.User,
		Wallet:     attempt.Wallet,
		Collection: attempt.Collection,
		TokenIds:   tokenIds,
		Amount:     &amount,
		Status:     ledger.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (im *impl) finalize(c ctx.Ctx, record *ledger.Record, status ledger.Status, gasFee *big.Int) {
	if err := im.cfg.Ledger.Finalize(c, record.ToId(), status, gasFee); err != nil {
		c.WithFields(log.Fields{
			"txHash": record.TxHash,
			"err":    err,
		}).Error("ledger finalize failed")
	}
}

func (im *impl) finishAttempt(attempt *settlement.Attempt) {
	confirmed := 0
	for _, b := range attempt.Batches {
		if b.Status == settlement.BatchStatusConfirmed {
			confirmed++
		}
	}
	switch {
	case confirmed == len(attempt.Batches):
		attempt.Status = settlement.AttemptStatusConfirmed
	case confirmed > 0:
		attempt.Status = settlement.AttemptStatusPartial
	default:
		attempt.Status = settlement.AttemptStatusFailed
	}
	if attempt.Reason == "" && attempt.Status != settlement.AttemptStatusConfirmed {
		for _, b := range attempt.Batches {
			switch b.Status {
			case settlement.BatchStatusReverted:
				attempt.Reason = domain.ErrBatchReverted.Error()
			case settlement.BatchStatusUnconfirmed:
				attempt.Reason = domain.ErrConfirmationTimeout.Error()
			}
		}
	}
}

func (im *impl) result(attempt *settlement.Attempt) *settlement.Result {
	return &settlement.Result{
		AttemptId:  attempt.Id,
		Status:     attempt.Status,
		Requested:  attempt.Quantity,
		Purchased:  attempt.Purchased,
		TotalSpent: weiToNative(attempt.TotalSpent),
		GasSpent:   weiToNative(attempt.GasSpent),
		Reason:     attempt.Reason,
	}
}

func parseCeiling(s *string) (*big.Int, error) {
	if s == nil || len(*s) == 0 {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(*s, 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	return v, nil
}
