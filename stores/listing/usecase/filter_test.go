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
	"github.com/x-xyz/sweeper/domain/listing"
	mListing "github.com/x-xyz/sweeper/domain/listing/mocks"
)

type filterSuite struct {
	suite.Suite
	ghostSet *mListing.GhostSetRepo
	im       *impl
}

func (s *filterSuite) SetupTest() {
	s.ghostSet = &mListing.GhostSetRepo{}
	s.im = New(&ListingUseCaseCfg{GhostSet: s.ghostSet}).(*impl)
	timeNow = func() time.Time { return time.Unix(1700043200, 0) }
}

func (s *filterSuite) TearDownTest() {
	timeNow = time.Now
	s.ghostSet.AssertExpectations(s.T())
}

func (s *filterSuite) notGhosted() {
	s.ghostSet.On("Contains", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
}

func active(tokenId domain.TokenId, price string) *listing.Listing {
	return &listing.Listing{
		ChainId:      1,
		Collection:   "0xc01",
		TokenId:      tokenId,
		Seller:       "0x5e11e4",
		PaymentToken: "0x7043",
		BasePrice:    price,
		EndPrice:     price,
		StartTime:    "1700000000",
		EndTime:      "1700086400",
		Status:       listing.StatusActive,
	}
}

func (s *filterSuite) TestKeepsSettlableInOrder() {
	s.notGhosted()

	in := []*listing.Listing{active("1", "100"), active("2", "200"), active("3", "300")}
	kept, rejections, err := s.im.Settlable(ctx.Background(), in, nil)
	s.Require().NoError(err)
	s.Empty(rejections)
	s.Require().Len(kept, 3)
	s.Equal(domain.TokenId("1"), kept[0].TokenId)
	s.Equal(domain.TokenId("3"), kept[2].TokenId)
}

func (s *filterSuite) TestRejectReasons() {
	s.ghostSet.On("Contains", mock.Anything, domain.ChainId(1), domain.Address("0xc01"), domain.TokenId("ghost")).Return(true, nil)
	s.ghostSet.On("Contains", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	ghosted := active("ghost", "100")

	missing := active("2", "100")
	missing.BasePrice = ""

	zero := active("3", "0")

	sold := active("4", "100")
	sold.Status = listing.StatusSold

	nullSig := active("5", "100")
	nullSig.Signature = ptr.String("")

	over := active("6", "9000")

	good := active("7", "100")

	in := []*listing.Listing{ghosted, missing, zero, sold, nullSig, over, good}
	kept, rejections, err := s.im.Settlable(ctx.Background(), in, big.NewInt(1000))
	s.Require().NoError(err)
	s.Require().Len(kept, 1)
	s.Equal(domain.TokenId("7"), kept[0].TokenId)

	s.Require().Len(rejections, 6)
	expect := map[domain.TokenId]listing.RejectReason{
		"ghost": listing.RejectReasonGhosted,
		"2":     listing.RejectReasonMissingOrderData,
		"3":     listing.RejectReasonZeroPrice,
		"4":     listing.RejectReasonBadStatus,
		"5":     listing.RejectReasonNullSignature,
		"6":     listing.RejectReasonOverCeiling,
	}
	for _, r := range rejections {
		s.Equal(expect[r.TokenId], r.Reason, string(r.TokenId))
	}
}

func (s *filterSuite) TestAbsentSignatureIsAcceptable() {
	s.notGhosted()

	// field omitted entirely, not explicitly empty
	l := active("1", "100")
	l.Signature = nil

	kept, _, err := s.im.Settlable(ctx.Background(), []*listing.Listing{l}, nil)
	s.Require().NoError(err)
	s.Len(kept, 1)
}

func (s *filterSuite) TestCeilingUsesCurrentAuctionPrice() {
	s.notGhosted()

	// declining from 2000 to 1000 over the window, halfway through now
	l := active("1", "2000")
	l.EndPrice = "1000"

	kept, _, err := s.im.Settlable(ctx.Background(), []*listing.Listing{l}, big.NewInt(1500))
	s.Require().NoError(err)
	s.Len(kept, 1)
}

func (s *filterSuite) TestAllCandidatesStale() {
	s.ghostSet.On("Contains", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	in := []*listing.Listing{active("1", "100"), active("2", "200")}
	_, rejections, err := s.im.Settlable(ctx.Background(), in, nil)
	s.Require().ErrorIs(err, domain.ErrAllCandidatesStale)
	s.Len(rejections, 2)
}

func (s *filterSuite) TestEmptyInputIsNotStale() {
	kept, rejections, err := s.im.Settlable(ctx.Background(), nil, nil)
	s.Require().NoError(err)
	s.Empty(kept)
	s.Empty(rejections)
}

func TestFilterSuite(t *testing.T) {
	suite.Run(t, new(filterSuite))
}
