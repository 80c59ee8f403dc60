package settlement

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/ptr"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/listing"
)

func sampleListing() *listing.Listing {
	return &listing.Listing{
		ChainId:      1,
		Collection:   "0xAbCd000000000000000000000000000000000001",
		TokenId:      "42",
		Seller:       "0xFf00000000000000000000000000000000000002",
		PaymentToken: "0x0000000000000000000000000000000000000003",
		BasePrice:    "1000000000000000000",
		EndPrice:     "1000000000000000000",
		StartTime:    "1700000000",
		EndTime:      "1700086400",
		Signature:    ptr.String("0xdeadbeef"),
		Status:       listing.StatusActive,
	}
}

func TestOrderFromListing(t *testing.T) {
	req := require.New(t)

	order, err := OrderFromListing(sampleListing(), 425)
	req.NoError(err)
	req.Equal(OrderKindSell, order.Kind)
	req.Equal(domain.Address("0xabcd000000000000000000000000000000000001"), order.Item.Collection)
	req.Equal(domain.Address("0xff00000000000000000000000000000000000002"), order.Maker)
	req.Equal("42", order.Item.TokenId.String())
	req.Equal("0", order.Item.Amount.String())
	req.Equal("1700000000", order.StartTime.String())
	// expiration defaults to end time when absent
	req.Equal("1700086400", order.ExpirationTime.String())
	req.Equal("0", order.ExpectedState.String())
	req.Equal("0", order.Nonce.String())
	req.Equal("425", order.FeeBps.String())
}

func TestOrderFromListingDefaults(t *testing.T) {
	req := require.New(t)

	l := sampleListing()
	l.StartTime = ""
	l.Duration = ptr.String("86400")
	l.ExpectedState = ptr.String("7")
	l.Nonce = ptr.String("3")
	l.FeeBps = ptr.Int64(250)
	l.Kind = listing.KindOffer

	order, err := OrderFromListing(l, 425)
	req.NoError(err)
	req.Equal(OrderKindOffer, order.Kind)
	// start = end - duration
	req.Equal("1700000000", order.StartTime.String())
	req.Equal("7", order.ExpectedState.String())
	req.Equal("3", order.Nonce.String())
	req.Equal("250", order.FeeBps.String())
}

func TestOrderFromListingBadNumber(t *testing.T) {
	req := require.New(t)

	l := sampleListing()
	l.BasePrice = "1.5e18"
	_, err := OrderFromListing(l, 425)
	req.ErrorIs(err, domain.ErrInvalidNumberFormat)
}

func TestOrderEncodeDeterministic(t *testing.T) {
	req := require.New(t)

	order, err := OrderFromListing(sampleListing(), 425)
	req.NoError(err)

	a, err := order.Encode()
	req.NoError(err)
	b, err := order.Encode()
	req.NoError(err)
	req.Equal(a, b)

	hash, err := order.Hash()
	req.NoError(err)
	req.Equal(crypto.Keccak256(a), hash)
}

func TestEncodeListing(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	price := big.NewInt(1000)
	bo, err := EncodeListing(c, sampleListing(), price, "0x0000000000000000000000000000000000000000", 425)
	req.NoError(err)
	req.False(bo.HashMismatch)
	req.Equal(price, bo.SettlePrice)
	req.Equal([]byte{0xde, 0xad, 0xbe, 0xef}, bo.Signature)
	req.NotEmpty(bo.Encoded)
}

func TestEncodeListingHashMismatch(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	l := sampleListing()
	l.OrderHash = ptr.String("0x" + "11" + "22000000000000000000000000000000000000000000000000000000000000")
	bo, err := EncodeListing(c, l, big.NewInt(1000), "0x0000000000000000000000000000000000000000", 425)
	req.NoError(err)
	req.True(bo.HashMismatch)
}

func TestEncodeListingMatchingHash(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	l := sampleListing()
	order, err := OrderFromListing(l, 425)
	req.NoError(err)
	hash, err := order.Hash()
	req.NoError(err)
	l.OrderHash = ptr.String(hexutil.Encode(hash))

	bo, err := EncodeListing(c, l, big.NewInt(1000), "0x0000000000000000000000000000000000000000", 425)
	req.NoError(err)
	req.False(bo.HashMismatch)
}

func TestEncodeListingRawBytesVerbatim(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()

	l := sampleListing()
	l.RawSignedBytes = ptr.String("0x010203")
	bo, err := EncodeListing(c, l, big.NewInt(1000), "0x0000000000000000000000000000000000000000", 425)
	req.NoError(err)

	// the first dynamic argument of the payload is the raw bytes themselves
	blob, sig, err := unpackSettlePayload(bo.Encoded)
	req.NoError(err)
	req.Equal([]byte{0x01, 0x02, 0x03}, blob)
	req.Equal([]byte{0xde, 0xad, 0xbe, 0xef}, sig)
}

func unpackSettlePayload(payload []byte) ([]byte, []byte, error) {
	vals, err := settleArgs.Unpack(payload)
	if err != nil {
		return nil, nil, err
	}
	return vals[0].([]byte), vals[1].([]byte), nil
}

func TestBatchCost(t *testing.T) {
	req := require.New(t)

	order := &Order{FeeBps: big.NewInt(425)}
	batch := &Batch{
		Orders: []*BatchOrder{
			{Order: order, SettlePrice: big.NewInt(10000)},
			{Order: order, SettlePrice: big.NewInt(33)},
		},
		Status: BatchStatusBuilt,
	}
	// 10000 + 425 + 33 + ceil(33*425/10000=1.4025)=2
	req.Equal("10460", batch.Cost().String())
}
