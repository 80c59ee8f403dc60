package listing

import (
	"math/big"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSold      Status = "sold"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

type Kind string

const (
	KindSell  Kind = "sell"
	KindOffer Kind = "offer"
)

// Listing is a seller-signed off-chain offer as the marketplace read API
// returns it. Numeric fields are base-10 strings since every one of them
// ends up inside an ABI encoding that must match the seller's signature
// bit for bit. Optional fields are pointers: the upstream API sometimes
// omits a field entirely, which carries different meaning than sending it
// empty (signature especially, see the filter).
type Listing struct {
	ChainId      domain.ChainId `json:"chainId"`
	Collection   domain.Address `json:"collection"`
	TokenId      domain.TokenId `json:"tokenId"`
	Seller       domain.Address `json:"seller"`
	PaymentToken domain.Address `json:"paymentToken"`
	BasePrice    string         `json:"basePrice"`
	EndPrice     string         `json:"endPrice"`
	// unix timestamps in string form
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	ExpirationTime string `json:"expirationTime"`
	// seconds; some upstream payloads carry duration instead of startTime
	Duration      *string `json:"duration,omitempty"`
	ExpectedState *string `json:"expectedState,omitempty"`
	Nonce         *string `json:"nonce,omitempty"`
	FeeBps        *int64  `json:"feeBps,omitempty"`
	Signature     *string `json:"signature,omitempty"`
	OrderHash     *string `json:"orderHash,omitempty"`
	// the exact bytes the seller signed, when the marketplace exposes them
	RawSignedBytes *string `json:"rawSignedBytes,omitempty"`
	Status         Status  `json:"status"`
	Kind           Kind    `json:"kind,omitempty"`
}

func (l *Listing) LowerCase() {
	l.Collection = l.Collection.ToLower()
	l.Seller = l.Seller.ToLower()
	l.PaymentToken = l.PaymentToken.ToLower()
}

// HasSignature reports whether a usable signature is present. An absent
// field is acceptable, the upstream omits rather than nulls it for some
// collections; an explicitly empty one is not.
func (l *Listing) HasSignature() bool {
	return l.Signature == nil || len(*l.Signature) > 0
}

type RejectReason string

const (
	RejectReasonGhosted          RejectReason = "ghosted"
	RejectReasonMissingOrderData RejectReason = "missingOrderData"
	RejectReasonZeroPrice        RejectReason = "zeroPrice"
	RejectReasonBadStatus        RejectReason = "badStatus"
	RejectReasonNullSignature    RejectReason = "nullSignature"
	RejectReasonOverCeiling      RejectReason = "overCeiling"
)

type Rejection struct {
	TokenId domain.TokenId `json:"tokenId"`
	Reason  RejectReason   `json:"reason"`
}

// SourceRepo reads listings from the marketplace API, cheapest first.
type SourceRepo interface {
	Listings(ctx ctx.Ctx, chainId domain.ChainId, collection domain.Address, limit int) ([]*Listing, error)
}

// GhostSetRepo is the append-only set of asset ids known to be stale on
// chain even though the marketplace still serves them. Shared across
// instances; population is decoupled from settlement.
type GhostSetRepo interface {
	Add(ctx ctx.Ctx, chainId domain.ChainId, collection domain.Address, tokenIds ...domain.TokenId) error
	Contains(ctx ctx.Ctx, chainId domain.ChainId, collection domain.Address, tokenId domain.TokenId) (bool, error)
	All(ctx ctx.Ctx, chainId domain.ChainId, collection domain.Address) ([]domain.TokenId, error)
}

// UseCase filters raw listings down to the settlable subset.
type UseCase interface {
	// Settlable keeps the listings worth attempting, in the input's
	// price-ascending order, and reports one rejection per dropped
	// candidate. Returns domain.ErrAllCandidatesStale when a non-empty
	// input filters down to nothing.
	Settlable(ctx ctx.Ctx, listings []*Listing, priceCeiling *big.Int) ([]*Listing, []*Rejection, error)
}
