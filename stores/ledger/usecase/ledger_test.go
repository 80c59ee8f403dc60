package usecase

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/ptr"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/ledger"
	mLedger "github.com/x-xyz/sweeper/domain/ledger/mocks"
)

type ledgerSuite struct {
	suite.Suite
	repo *mLedger.Repo
	im   *impl
}

func (s *ledgerSuite) SetupTest() {
	s.repo = &mLedger.Repo{}
	s.im = New(&LedgerUseCaseCfg{Repo: s.repo, Retention: 3}).(*impl)
}

func (s *ledgerSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
}

func record(txHash domain.TxHash, amount string, status ledger.Status, createdAt time.Time) *ledger.Record {
	return &ledger.Record{
		TxHash:    txHash,
		ChainId:   1,
		User:      "0x111",
		Amount:    ptr.String(amount),
		Status:    status,
		CreatedAt: createdAt,
	}
}

func (s *ledgerSuite) TestAppendPrunes() {
	now := time.Now()
	rec := record("0xd", "400", ledger.StatusPending, now)

	s.repo.On("Insert", mock.Anything, rec).Return(nil).Once()
	s.repo.On("FindAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*ledger.Record{
		record("0xd", "400", ledger.StatusPending, now),
		record("0xc", "300", ledger.StatusConfirmed, now.Add(-time.Hour)),
		record("0xb", "200", ledger.StatusConfirmed, now.Add(-2*time.Hour)),
	}, nil).Once()
	s.repo.On("RemoveAll", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	s.Require().NoError(s.im.Append(ctx.Background(), rec))
}

func (s *ledgerSuite) TestAppendSkipsPruneUnderRetention() {
	rec := record("0xa", "100", ledger.StatusPending, time.Now())

	s.repo.On("Insert", mock.Anything, rec).Return(nil).Once()
	s.repo.On("FindAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*ledger.Record{rec}, nil).Once()

	s.Require().NoError(s.im.Append(ctx.Background(), rec))
}

func (s *ledgerSuite) TestFinalize() {
	id := ledger.RecordId{ChainId: 1, TxHash: "0xa"}

	s.repo.On("Update", mock.Anything, id, mock.MatchedBy(func(p ledger.RecordPatchable) bool {
		return p.Status != nil && *p.Status == ledger.StatusConfirmed &&
			p.GasFee != nil && *p.GasFee == "21000"
	})).Return(nil).Once()

	s.Require().NoError(s.im.Finalize(ctx.Background(), id, ledger.StatusConfirmed, big.NewInt(21000)))
}

func (s *ledgerSuite) TestConfirmedSpendSince() {
	since := time.Now().Truncate(24 * time.Hour)

	s.repo.On("FindAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*ledger.Record{
		record("0xa", "100", ledger.StatusConfirmed, time.Now()),
		record("0xb", "250", ledger.StatusConfirmed, time.Now()),
		// legacy column only
		{TxHash: "0xc", User: "0x111", SpentWei: ptr.String("50"), Status: ledger.StatusConfirmed, CreatedAt: time.Now()},
	}, nil).Once()

	total, err := s.im.ConfirmedSpendSince(ctx.Background(), "0x111", since)
	s.Require().NoError(err)
	s.Equal("400", total.String())
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(ledgerSuite))
}
