package settlement

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/listing"
)

type OrderKind uint8

const (
	OrderKindSell  OrderKind = 0
	OrderKindOffer OrderKind = 1
)

type AssetStandard uint8

const (
	AssetStandardErc721  AssetStandard = 0
	AssetStandardErc1155 AssetStandard = 1
)

// Item is the single asset line of an order. Amount stays 0 for
// single-unit erc721 transfers, matching the gateway's convention.
type Item struct {
	Standard   AssetStandard
	Collection domain.Address
	TokenId    *big.Int
	Amount     *big.Int
}

// Order is the canonical on-chain order structure rebuilt from a Listing.
// Every numeric field is a big integer; a float anywhere in here would
// break the signature check on chain.
type Order struct {
	Maker          domain.Address
	Kind           OrderKind
	Item           Item
	Currency       domain.Address
	StartTime      *big.Int
	EndTime        *big.Int
	BasePrice      *big.Int
	EndPrice       *big.Int
	ExpirationTime *big.Int
	ExpectedState  *big.Int
	Nonce          *big.Int
	FeeBps         *big.Int
}

type BatchStatus string

const (
	BatchStatusBuilt       BatchStatus = "built"
	BatchStatusSubmitted   BatchStatus = "submitted"
	BatchStatusConfirmed   BatchStatus = "confirmed"
	BatchStatusReverted    BatchStatus = "reverted"
	BatchStatusUnconfirmed BatchStatus = "unconfirmed"
)

// BatchOrder pairs one order with everything its gateway call entry needs.
type BatchOrder struct {
	Order       *Order
	TokenId     domain.TokenId
	Signature   []byte
	SettlePrice *big.Int
	Referral    domain.Address
	// the settle payload; built from raw signed bytes verbatim when the
	// listing carried them
	Encoded      []byte
	HashMismatch bool
}

// Batch is one gateway transaction's worth of orders.
type Batch struct {
	Orders []*BatchOrder
	Status BatchStatus
	TxHash domain.TxHash
	// gasUsed * effectiveGasPrice in wei, known after confirmation
	GasFee *big.Int
}

// Cost sums settle price plus marketplace fee over the batch's orders.
func (b *Batch) Cost() *big.Int {
	total := new(big.Int)
	for _, o := range b.Orders {
		total.Add(total, o.SettlePrice)
		total.Add(total, FeeOf(o.SettlePrice, o.Order.FeeBps))
	}
	return total
}

// FeeOf is ceil(price * feeBps / 10000).
func FeeOf(price, feeBps *big.Int) *big.Int {
	fee := new(big.Int).Mul(price, feeBps)
	fee.Add(fee, new(big.Int).Sub(domain.Big10000, domain.Big1))
	return fee.Div(fee, domain.Big10000)
}

type AttemptStatus string

const (
	AttemptStatusPending   AttemptStatus = "pending"
	AttemptStatusConfirmed AttemptStatus = "confirmed"
	AttemptStatusPartial   AttemptStatus = "partial"
	AttemptStatusFailed    AttemptStatus = "failed"
)

// Attempt is one user-initiated sweep from preview through terminal state.
type Attempt struct {
	Id           string
	ChainId      domain.ChainId
	Collection   domain.Address
	User         domain.Address
	Wallet       domain.Address
	Quantity     int
	PriceCeiling *big.Int
	Batches      []*Batch
	Status       AttemptStatus
	Purchased    []domain.TokenId
	// wei
	TotalSpent *big.Int
	GasSpent   *big.Int
	Reason     string
	CreatedAt  time.Time
}

type PreviewRequest struct {
	ChainId    domain.ChainId `json:"chainId" validate:"required"`
	Collection domain.Address `json:"collection" validate:"required"`
	User       domain.Address `json:"user" validate:"required"`
	Wallet     domain.Address `json:"wallet" validate:"required"`
	Quantity   int            `json:"quantity" validate:"required,gt=0"`
	// wei, base-10
	PriceCeiling *string `json:"priceCeiling,omitempty"`
}

// Quote is the user-facing cost estimate. Display values are in the
// payment token's native unit.
type Quote struct {
	Available    int                  `json:"available"`
	Prices       []decimal.Decimal    `json:"prices"`
	TotalCost    decimal.Decimal      `json:"totalCost"`
	AveragePrice decimal.Decimal      `json:"averagePrice"`
	GasEstimate  decimal.Decimal      `json:"gasEstimate"`
	GrandTotal   decimal.Decimal      `json:"grandTotal"`
	Rejections   []*listing.Rejection `json:"rejections,omitempty"`
}

type ExecuteRequest struct {
	ChainId    domain.ChainId `json:"chainId" validate:"required"`
	Collection domain.Address `json:"collection" validate:"required"`
	User       domain.Address `json:"user" validate:"required"`
	Wallet     domain.Address `json:"wallet" validate:"required"`
	Quantity   int            `json:"quantity" validate:"required,gt=0"`
	// wei, base-10
	PriceCeiling *string `json:"priceCeiling,omitempty"`
}

// Result is the terminal outcome of an executed sweep: what was actually
// purchased, what was actually spent, and why anything fell short.
type Result struct {
	AttemptId  string           `json:"attemptId"`
	Status     AttemptStatus    `json:"status"`
	Requested  int              `json:"requested"`
	Purchased  []domain.TokenId `json:"purchased"`
	TotalSpent decimal.Decimal  `json:"totalSpent"`
	GasSpent   decimal.Decimal  `json:"gasSpent"`
	Reason     string           `json:"reason,omitempty"`
}

// UseCase is the sweep settlement engine.
type UseCase interface {
	Preview(ctx ctx.Ctx, req *PreviewRequest) (*Quote, error)
	Execute(ctx ctx.Ctx, req *ExecuteRequest) (*Result, error)
}
