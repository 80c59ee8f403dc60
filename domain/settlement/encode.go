package settlement

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/listing"
)

func init() {
	var err error
	uint8Ty, err = abi.NewType("uint8", "", nil)
	if err != nil {
		panic(err)
	}
	addressTy, err = abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	uintTy, err = abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	bytesTy, err = abi.NewType("bytes", "", nil)
	if err != nil {
		panic(err)
	}
	itemTy, err = abi.NewType("tuple", "", []abi.ArgumentMarshaling{
		{Name: "standard", Type: "uint8"},
		{Name: "collection", Type: "address"},
		{Name: "tokenId", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
	})
	if err != nil {
		panic(err)
	}

	orderArgs = abi.Arguments{
		{Type: addressTy}, // maker
		{Type: uint8Ty},   // kind
		{Type: itemTy},    // item
		{Type: addressTy}, // currency
		{Type: uintTy},    // startTime
		{Type: uintTy},    // endTime
		{Type: uintTy},    // basePrice
		{Type: uintTy},    // endPrice
		{Type: uintTy},    // expirationTime
		{Type: uintTy},    // expectedState
		{Type: uintTy},    // nonce
		{Type: uintTy},    // feeBps
	}
	settleArgs = abi.Arguments{
		{Type: bytesTy},   // encoded order
		{Type: bytesTy},   // maker signature
		{Type: uintTy},    // settle price
		{Type: addressTy}, // referral
	}
}

var (
	uint8Ty    abi.Type
	addressTy  abi.Type
	uintTy     abi.Type
	bytesTy    abi.Type
	itemTy     abi.Type
	orderArgs  abi.Arguments
	settleArgs abi.Arguments
)

type packedItem struct {
	Standard   uint8
	Collection common.Address
	TokenId    *big.Int
	Amount     *big.Int
}

// OrderFromListing rebuilds the canonical order struct from an upstream
// listing, applying the gateway's defaulting rules for fields the
// marketplace payload may omit.
func OrderFromListing(l *listing.Listing, defaultFeeBps int64) (*Order, error) {
	tokenId, err := bigFromStr(string(l.TokenId))
	if err != nil {
		return nil, err
	}
	basePrice, err := bigFromStr(l.BasePrice)
	if err != nil {
		return nil, err
	}
	endPrice, err := bigFromStr(l.EndPrice)
	if err != nil {
		return nil, err
	}
	endTime, err := bigFromStr(l.EndTime)
	if err != nil {
		return nil, err
	}

	startTime := new(big.Int)
	switch {
	case len(l.StartTime) > 0:
		if startTime, err = bigFromStr(l.StartTime); err != nil {
			return nil, err
		}
	case l.Duration != nil:
		duration, err := bigFromStr(*l.Duration)
		if err != nil {
			return nil, err
		}
		startTime.Sub(endTime, duration)
	default:
		// zero-length window, calculator falls back to base price
		startTime.Set(endTime)
	}

	expiration := new(big.Int).Set(endTime)
	if len(l.ExpirationTime) > 0 {
		if expiration, err = bigFromStr(l.ExpirationTime); err != nil {
			return nil, err
		}
	}

	expectedState, err := bigFromOpt(l.ExpectedState)
	if err != nil {
		return nil, err
	}
	nonce, err := bigFromOpt(l.Nonce)
	if err != nil {
		return nil, err
	}

	feeBps := big.NewInt(defaultFeeBps)
	if l.FeeBps != nil {
		feeBps = big.NewInt(*l.FeeBps)
	}

	kind := OrderKindSell
	if l.Kind == listing.KindOffer {
		kind = OrderKindOffer
	}

	return &Order{
		Maker: l.Seller.ToLower(),
		Kind:  kind,
		Item: Item{
			Standard:   AssetStandardErc721,
			Collection: l.Collection.ToLower(),
			TokenId:    tokenId,
			Amount:     new(big.Int),
		},
		Currency:       l.PaymentToken.ToLower(),
		StartTime:      startTime,
		EndTime:        endTime,
		BasePrice:      basePrice,
		EndPrice:       endPrice,
		ExpirationTime: expiration,
		ExpectedState:  expectedState,
		Nonce:          nonce,
		FeeBps:         feeBps,
	}, nil
}

// Encode packs the order into the gateway's tuple layout.
func (o *Order) Encode() ([]byte, error) {
	return orderArgs.Pack(
		common.HexToAddress(string(o.Maker)),
		uint8(o.Kind),
		packedItem{
			Standard:   uint8(o.Item.Standard),
			Collection: common.HexToAddress(string(o.Item.Collection)),
			TokenId:    o.Item.TokenId,
			Amount:     o.Item.Amount,
		},
		common.HexToAddress(string(o.Currency)),
		o.StartTime,
		o.EndTime,
		o.BasePrice,
		o.EndPrice,
		o.ExpirationTime,
		o.ExpectedState,
		o.Nonce,
		o.FeeBps,
	)
}

// Hash is the keccak256 of the packed order.
func (o *Order) Hash() ([]byte, error) {
	encoded, err := o.Encode()
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(encoded), nil
}

// EncodeListing turns a filtered listing into one batch-ready order.
// When the listing carries raw pre-signed bytes they are used verbatim
// as the order payload, since re-encoding risks drifting from what the
// maker actually signed. An upstream order hash that disagrees with our
// own encoding is logged and flagged, not treated as an error.
func EncodeListing(c ctx.Ctx, l *listing.Listing, settlePrice *big.Int, referral domain.Address, defaultFeeBps int64) (*BatchOrder, error) {
	order, err := OrderFromListing(l, defaultFeeBps)
	if err != nil {
		return nil, err
	}

	orderBlob, err := order.Encode()
	if err != nil {
		return nil, err
	}

	mismatch := false
	if l.OrderHash != nil && len(*l.OrderHash) > 0 {
		upstream, err := hexutil.Decode(*l.OrderHash)
		if err != nil {
			c.WithFields(log.Fields{"orderHash": *l.OrderHash, "err": err}).Warn("undecodable upstream order hash")
			mismatch = true
		} else if !bytes.Equal(upstream, crypto.Keccak256(orderBlob)) {
			c.WithFields(log.Fields{
				"collection": l.Collection,
				"tokenId":    l.TokenId,
				"orderHash":  *l.OrderHash,
			}).Warn("order hash mismatch against own encoding")
			mismatch = true
		}
	}

	if l.RawSignedBytes != nil && len(*l.RawSignedBytes) > 0 {
		if orderBlob, err = hexutil.Decode(*l.RawSignedBytes); err != nil {
			return nil, err
		}
	}

	signature := []byte{}
	if l.Signature != nil && len(*l.Signature) > 0 {
		if signature, err = hexutil.Decode(*l.Signature); err != nil {
			return nil, err
		}
	}

	payload, err := settleArgs.Pack(orderBlob, signature, settlePrice, common.HexToAddress(string(referral)))
	if err != nil {
		return nil, err
	}

	return &BatchOrder{
		Order:        order,
		TokenId:      l.TokenId,
		Signature:    signature,
		SettlePrice:  settlePrice,
		Referral:     referral,
		Encoded:      payload,
		HashMismatch: mismatch,
	}, nil
}

func bigFromStr(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, domain.ErrInvalidNumberFormat
	}
	return v, nil
}

func bigFromOpt(s *string) (*big.Int, error) {
	if s == nil || len(*s) == 0 {
		return new(big.Int), nil
	}
	return bigFromStr(*s)
}
