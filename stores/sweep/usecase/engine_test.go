package usecase

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/metrics"
	"github.com/x-xyz/sweeper/base/ptr"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/allowance"
	mAllowance "github.com/x-xyz/sweeper/domain/allowance/mocks"
	"github.com/x-xyz/sweeper/domain/ledger"
	mLedger "github.com/x-xyz/sweeper/domain/ledger/mocks"
	"github.com/x-xyz/sweeper/domain/listing"
	mListing "github.com/x-xyz/sweeper/domain/listing/mocks"
	mDomain "github.com/x-xyz/sweeper/domain/mocks"
	"github.com/x-xyz/sweeper/domain/settlement"
	mSpendlimit "github.com/x-xyz/sweeper/domain/spendlimit/mocks"
	"github.com/x-xyz/sweeper/domain/wallet"
	mGasprice "github.com/x-xyz/sweeper/service/gasprice/mocks"
)

const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const (
	gatewayAddr = domain.Address("0x6a7e000000000000000000000000000000000009")
	wethAddr    = domain.Address("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
	collection  = domain.Address("0xabcd000000000000000000000000000000000001")
	user        = domain.Address("0x00aa000000000000000000000000000000000011")
)

// fixed-price listing at 1000 wei; fee at 425 bps adds 43 wei
func sweepListing(tokenId domain.TokenId) *listing.Listing {
	return &listing.Listing{
		ChainId:    1,
		Collection: collection,
		TokenId:    tokenId,
		Seller:     "0xff00000000000000000000000000000000000002",
		BasePrice:  "1000",
		EndPrice:   "1000",
		StartTime:  "1700000000",
		EndTime:    "1999999999",
		Signature:  ptr.String("0xdeadbeef"),
		Status:     listing.StatusActive,
	}
}

type engineSuite struct {
	suite.Suite
	client     *mDomain.EthClientRepo
	source     *mListing.SourceRepo
	filter     *mListing.UseCase
	allowance  *mAllowance.UseCase
	spendLimit *mSpendlimit.UseCase
	ledger     *mLedger.UseCase
	gasPrice   *mGasprice.Service
	im         *impl
	req        *settlement.ExecuteRequest
}

func (s *engineSuite) SetupTest() {
	metrics.UseLogClient()

	s.client = &mDomain.EthClientRepo{}
	s.source = &mListing.SourceRepo{}
	s.filter = &mListing.UseCase{}
	s.allowance = &mAllowance.UseCase{}
	s.spendLimit = &mSpendlimit.UseCase{}
	s.ledger = &mLedger.UseCase{}
	s.gasPrice = &mGasprice.Service{}

	wallets, err := wallet.NewKeyring([]string{devKey})
	s.Require().NoError(err)
	signer, err := wallet.NewKeyedSigner(devKey)
	s.Require().NoError(err)

	s.im = New(&SweepUseCaseCfg{
		Clients: map[domain.ChainId]domain.EthClientRepo{1: s.client},
		Gateways: map[domain.ChainId]GatewayCfg{
			1: {Address: gatewayAddr, DefaultCurrency: wethAddr},
		},
		Source:       s.source,
		Filter:       s.filter,
		Allowance:    s.allowance,
		SpendLimit:   s.spendLimit,
		Ledger:       s.ledger,
		Wallets:      wallets,
		GasPrice:     s.gasPrice,
		Metrics:      metrics.New("sweep"),
		MaxBatchSize: 20,
		MaxQuantity:  50,
		FeeBps:       425,
		FetchLimit:   50,
		BaseGas:      100000,
		PerOrderGas:  150000,
		PollInterval: time.Millisecond,
		MaxAttempts:  2,
	}).(*impl)

	s.req = &settlement.ExecuteRequest{
		ChainId:    1,
		Collection: collection,
		User:       user,
		Wallet:     signer.Address(),
		Quantity:   2,
	}
}

func (s *engineSuite) TearDownTest() {
	s.client.AssertExpectations(s.T())
	s.source.AssertExpectations(s.T())
	s.filter.AssertExpectations(s.T())
	s.allowance.AssertExpectations(s.T())
	s.spendLimit.AssertExpectations(s.T())
	s.ledger.AssertExpectations(s.T())
	s.gasPrice.AssertExpectations(s.T())
}

func (s *engineSuite) stubCandidates(listings []*listing.Listing) {
	s.source.On("Listings", mock.Anything, domain.ChainId(1), collection, 50).Return(listings, nil).Once()
	s.filter.On("Settlable", mock.Anything, listings, mock.Anything).Return(listings, []*listing.Rejection{}, nil).Once()
}

func bigStr(v *big.Int, want string) bool {
	return v != nil && v.String() == want
}

func encodeUint(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func (s *engineSuite) TestExecuteConfirmed() {
	s.stubCandidates([]*listing.Listing{sweepListing("1"), sweepListing("2")})

	// planned spend covers both prices plus marketplace fees
	s.spendLimit.On("Authorize", mock.Anything, user, mock.MatchedBy(func(v *big.Int) bool {
		return bigStr(v, "2086")
	})).Return(nil).Once()

	// balanceOf answers comfortably above the batch total
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).
		Return(encodeUint(big.NewInt(1000000)), nil).Once()
	s.allowance.On("Ensure", mock.Anything, domain.ChainId(1), wethAddr, gatewayAddr, mock.Anything,
		mock.MatchedBy(func(v *big.Int) bool { return bigStr(v, "2087") })).
		Return(&allowance.Outcome{Approved: false}, nil).Once()

	s.client.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(7), nil).Once()
	s.gasPrice.On("GasPrice", mock.Anything, domain.ChainId(1)).Return(big.NewInt(1000000000), nil).Once()
	s.client.On("SendTransaction", mock.Anything, mock.Anything).Return(nil).Once()

	s.ledger.On("Append", mock.Anything, mock.MatchedBy(func(r *ledger.Record) bool {
		return r.Status == ledger.StatusPending && r.Amount != nil && *r.Amount == "2086" &&
			r.User == user && len(r.TokenIds) == 2
	})).Return(nil).Once()

	s.client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful, GasUsed: 210000}, nil).Once()

	// 210000 gas at 1 gwei
	s.ledger.On("Finalize", mock.Anything, mock.Anything, ledger.StatusConfirmed,
		mock.MatchedBy(func(v *big.Int) bool { return bigStr(v, "210000000000000") })).
		Return(nil).Once()

	result, err := s.im.Execute(ctx.Background(), s.req)
	s.Require().NoError(err)
	s.Equal(settlement.AttemptStatusConfirmed, result.Status)
	s.Equal(2, result.Requested)
	s.Equal([]domain.TokenId{"1", "2"}, result.Purchased)
	s.True(result.TotalSpent.Equal(decimal.NewFromBigInt(big.NewInt(2086), -18)))
	s.True(result.GasSpent.Equal(decimal.NewFromBigInt(big.NewInt(210000000000000), -18)))
	s.Empty(result.Reason)

	// the guard must be free again once the sweep is terminal
	s.NoError(s.im.acquire(s.req.Wallet))
}

func (s *engineSuite) TestExecuteRevertedHaltsRemainingBatches() {
	s.im.cfg.MaxBatchSize = 1
	s.stubCandidates([]*listing.Listing{sweepListing("1"), sweepListing("2")})

	s.spendLimit.On("Authorize", mock.Anything, user, mock.Anything).Return(nil).Once()

	// only the first of the two batches ever reaches the chain
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).
		Return(encodeUint(big.NewInt(1000000)), nil).Once()
	s.allowance.On("Ensure", mock.Anything, domain.ChainId(1), wethAddr, gatewayAddr, mock.Anything, mock.Anything).
		Return(&allowance.Outcome{}, nil).Once()
	s.client.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(7), nil).Once()
	s.gasPrice.On("GasPrice", mock.Anything, domain.ChainId(1)).Return(big.NewInt(1000000000), nil).Once()
	s.client.On("SendTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	s.ledger.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	s.client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(&types.Receipt{Status: types.ReceiptStatusFailed, GasUsed: 180000}, nil).Once()
	s.ledger.On("Finalize", mock.Anything, mock.Anything, ledger.StatusFailed, mock.Anything).Return(nil).Once()

	result, err := s.im.Execute(ctx.Background(), s.req)
	s.Require().NoError(err)
	s.Equal(settlement.AttemptStatusFailed, result.Status)
	s.Empty(result.Purchased)
	s.Equal(domain.ErrBatchReverted.Error(), result.Reason)
	s.True(result.TotalSpent.IsZero())
	// gas burned by the revert still counts
	s.True(result.GasSpent.Equal(decimal.NewFromBigInt(big.NewInt(180000000000000), -18)))
}

func (s *engineSuite) TestExecutePartialWhenSecondBatchReverts() {
	s.im.cfg.MaxBatchSize = 1
	s.stubCandidates([]*listing.Listing{sweepListing("1"), sweepListing("2")})

	s.spendLimit.On("Authorize", mock.Anything, user, mock.Anything).Return(nil).Once()

	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).
		Return(encodeUint(big.NewInt(1000000)), nil).Times(2)
	s.allowance.On("Ensure", mock.Anything, domain.ChainId(1), wethAddr, gatewayAddr, mock.Anything, mock.Anything).
		Return(&allowance.Outcome{}, nil).Times(2)
	s.client.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(7), nil).Once()
	s.client.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(8), nil).Once()
	s.gasPrice.On("GasPrice", mock.Anything, domain.ChainId(1)).Return(big.NewInt(1000000000), nil).Times(2)
	s.client.On("SendTransaction", mock.Anything, mock.Anything).Return(nil).Times(2)
	s.ledger.On("Append", mock.Anything, mock.Anything).Return(nil).Times(2)

	s.client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful, GasUsed: 180000}, nil).Once()
	s.client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(&types.Receipt{Status: types.ReceiptStatusFailed, GasUsed: 180000}, nil).Once()
	s.ledger.On("Finalize", mock.Anything, mock.Anything, ledger.StatusConfirmed, mock.Anything).Return(nil).Once()
	s.ledger.On("Finalize", mock.Anything, mock.Anything, ledger.StatusFailed, mock.Anything).Return(nil).Once()

	result, err := s.im.Execute(ctx.Background(), s.req)
	s.Require().NoError(err)

	// the first batch's purchase survives the second batch's revert
	s.Equal(settlement.AttemptStatusPartial, result.Status)
	s.Equal([]domain.TokenId{"1"}, result.Purchased)
	s.Equal(domain.ErrBatchReverted.Error(), result.Reason)
	s.True(result.TotalSpent.Equal(decimal.NewFromBigInt(big.NewInt(1043), -18)))
}

func (s *engineSuite) TestExecuteConfirmationTimeout() {
	s.stubCandidates([]*listing.Listing{sweepListing("1")})

	s.spendLimit.On("Authorize", mock.Anything, user, mock.Anything).Return(nil).Once()
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).
		Return(encodeUint(big.NewInt(1000000)), nil).Once()
	s.allowance.On("Ensure", mock.Anything, domain.ChainId(1), wethAddr, gatewayAddr, mock.Anything, mock.Anything).
		Return(&allowance.Outcome{}, nil).Once()
	s.client.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(7), nil).Once()
	s.gasPrice.On("GasPrice", mock.Anything, domain.ChainId(1)).Return(big.NewInt(1000000000), nil).Once()
	s.client.On("SendTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	s.ledger.On("Append", mock.Anything, mock.Anything).Return(nil).Once()
	s.client.On("TransactionReceipt", mock.Anything, mock.Anything).
		Return(nil, ethereum.NotFound).Times(2)
	// a possibly still-mining batch is closed out as failed with no gas fee
	s.ledger.On("Finalize", mock.Anything, mock.Anything, ledger.StatusFailed, (*big.Int)(nil)).Return(nil).Once()

	result, err := s.im.Execute(ctx.Background(), s.req)
	s.Require().NoError(err)
	s.Equal(settlement.AttemptStatusFailed, result.Status)
	s.Equal(domain.ErrConfirmationTimeout.Error(), result.Reason)
	s.Empty(result.Purchased)
}

func (s *engineSuite) TestExecuteInsufficientBalance() {
	s.stubCandidates([]*listing.Listing{sweepListing("1")})
	s.spendLimit.On("Authorize", mock.Anything, user, mock.Anything).Return(nil).Once()
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).
		Return(encodeUint(big.NewInt(10)), nil).Once()

	_, err := s.im.Execute(ctx.Background(), s.req)
	s.Require().ErrorIs(err, domain.ErrInsufficientBalance)
}

func (s *engineSuite) TestExecuteDailyLimit() {
	s.stubCandidates([]*listing.Listing{sweepListing("1")})
	s.spendLimit.On("Authorize", mock.Anything, user, mock.Anything).
		Return(domain.ErrDailyLimitExceeded).Once()

	_, err := s.im.Execute(ctx.Background(), s.req)
	s.Require().ErrorIs(err, domain.ErrDailyLimitExceeded)
}

func (s *engineSuite) TestExecuteGuardsWallet() {
	s.Require().NoError(s.im.acquire(s.req.Wallet))
	defer s.im.release(s.req.Wallet)

	_, err := s.im.Execute(ctx.Background(), s.req)
	s.Require().ErrorIs(err, domain.ErrSweepInProgress)
}

func (s *engineSuite) TestExecuteUnsupportedChain() {
	s.req.ChainId = 5
	_, err := s.im.Execute(ctx.Background(), s.req)
	s.Require().ErrorIs(err, domain.ErrUnsupportedChain)
}

func (s *engineSuite) TestExecuteNothingToSweep() {
	s.source.On("Listings", mock.Anything, domain.ChainId(1), collection, 50).
		Return([]*listing.Listing{}, nil).Once()

	_, err := s.im.Execute(ctx.Background(), s.req)
	s.Require().ErrorIs(err, domain.ErrNothingToSweep)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(engineSuite))
}
