package usecase

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
	mDomain "github.com/x-xyz/sweeper/domain/mocks"
	"github.com/x-xyz/sweeper/domain/wallet"
	mGasprice "github.com/x-xyz/sweeper/service/gasprice/mocks"
)

const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const (
	token   = domain.Address("0x7043000000000000000000000000000000000001")
	spender = domain.Address("0x6a7e000000000000000000000000000000000002")
)

func encodeUint(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

type allowanceSuite struct {
	suite.Suite
	client   *mDomain.EthClientRepo
	gasPrice *mGasprice.Service
	signer   wallet.Signer
	im       *impl
}

func (s *allowanceSuite) SetupTest() {
	s.client = &mDomain.EthClientRepo{}
	s.gasPrice = &mGasprice.Service{}
	signer, err := wallet.NewKeyedSigner(devKey)
	s.Require().NoError(err)
	s.signer = signer
	s.im = New(&AllowanceUseCaseCfg{
		Clients:      map[domain.ChainId]domain.EthClientRepo{1: s.client},
		GasPrice:     s.gasPrice,
		PollInterval: time.Millisecond,
		MaxAttempts:  3,
	}).(*impl)
}

func (s *allowanceSuite) TearDownTest() {
	s.client.AssertExpectations(s.T())
	s.gasPrice.AssertExpectations(s.T())
}

func (s *allowanceSuite) TestCheck() {
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(encodeUint(big.NewInt(777)), nil).Once()

	got, err := s.im.Check(ctx.Background(), 1, token, s.signer.Address(), spender)
	s.Require().NoError(err)
	s.Equal("777", got.String())
}

func (s *allowanceSuite) TestCheckUnsupportedChain() {
	_, err := s.im.Check(ctx.Background(), 5, token, s.signer.Address(), spender)
	s.Require().ErrorIs(err, domain.ErrUnsupportedChain)
}

func (s *allowanceSuite) TestEnsureNoopWhenCovered() {
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(encodeUint(big.NewInt(1000)), nil).Once()

	outcome, err := s.im.Ensure(ctx.Background(), 1, token, spender, s.signer, big.NewInt(500))
	s.Require().NoError(err)
	s.False(outcome.Approved)
	s.Equal("1000", outcome.Allowance.String())
}

func (s *allowanceSuite) TestEnsureApproves() {
	// current allowance too low, then the post-approval re-read covers it
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(encodeUint(big.NewInt(0)), nil).Once()
	s.client.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(7), nil).Once()
	s.gasPrice.On("GasPrice", mock.Anything, domain.ChainId(1)).Return(big.NewInt(1000000000), nil).Once()

	var sentHash common.Hash
	s.client.On("SendTransaction", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		tx := args.Get(1).(*types.Transaction)
		sentHash = tx.Hash()
		s.Equal(uint64(7), tx.Nonce())
		s.Equal(string(token), domain.Address(tx.To().Hex()).ToLowerStr())
	}).Return(nil).Once()

	s.client.On("TransactionReceipt", mock.Anything, mock.Anything).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil).Once()
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(encodeUint(big.NewInt(501)), nil).Once()

	outcome, err := s.im.Ensure(ctx.Background(), 1, token, spender, s.signer, big.NewInt(500))
	s.Require().NoError(err)
	s.True(outcome.Approved)
	s.Equal(domain.TxHash(sentHash.Hex()), outcome.TxHash)
	s.Equal("501", outcome.Allowance.String())
}

func (s *allowanceSuite) TestEnsureApprovalReverted() {
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(encodeUint(big.NewInt(0)), nil).Once()
	s.client.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(7), nil).Once()
	s.gasPrice.On("GasPrice", mock.Anything, domain.ChainId(1)).Return(big.NewInt(1000000000), nil).Once()
	s.client.On("SendTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	s.client.On("TransactionReceipt", mock.Anything, mock.Anything).Return(&types.Receipt{Status: types.ReceiptStatusFailed}, nil).Once()

	_, err := s.im.Ensure(ctx.Background(), 1, token, spender, s.signer, big.NewInt(500))
	s.Require().ErrorIs(err, domain.ErrApprovalFailed)
}

func (s *allowanceSuite) TestEnsureReceiptTimeout() {
	s.client.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(encodeUint(big.NewInt(0)), nil).Once()
	s.client.On("PendingNonceAt", mock.Anything, mock.Anything).Return(uint64(7), nil).Once()
	s.gasPrice.On("GasPrice", mock.Anything, domain.ChainId(1)).Return(big.NewInt(1000000000), nil).Once()
	s.client.On("SendTransaction", mock.Anything, mock.Anything).Return(nil).Once()
	s.client.On("TransactionReceipt", mock.Anything, mock.Anything).Return(nil, ethereumNotFound{}).Times(3)

	_, err := s.im.Ensure(ctx.Background(), 1, token, spender, s.signer, big.NewInt(500))
	s.Require().ErrorIs(err, domain.ErrConfirmationTimeout)
}

type ethereumNotFound struct{}

func (ethereumNotFound) Error() string { return "not found" }

func TestRequiredFor(t *testing.T) {
	got := RequiredFor(big.NewInt(1000))
	if got.String() != "1001" {
		t.Fatalf("expected 1001, got %s", got)
	}
}

func TestAllowanceSuite(t *testing.T) {
	suite.Run(t, new(allowanceSuite))
}
