package ledger

import (
	"math/big"
	"time"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Record is the durable outcome of one submitted sweep batch, keyed by
// transaction hash. Amount supersedes the legacy SpentWei column; old
// records may carry either, so readers must accept both.
type Record struct {
	TxHash     domain.TxHash    `json:"txHash" bson:"txHash"`
	ChainId    domain.ChainId   `json:"chainId" bson:"chainId"`
	User       domain.Address   `json:"user" bson:"user"`
	Wallet     domain.Address   `json:"wallet" bson:"wallet"`
	Collection domain.Address   `json:"collection" bson:"collection"`
	TokenIds   []domain.TokenId `json:"tokenIds" bson:"tokenIds"`
	// wei, base-10
	Amount *string `json:"amount,omitempty" bson:"amount,omitempty"`
	// deprecated spend column kept for pre-migration records
	SpentWei *string `json:"spentWei,omitempty" bson:"spentWei,omitempty"`
	// gasUsed * effectiveGasPrice in wei
	GasFee    *string   `json:"gasFee,omitempty" bson:"gasFee,omitempty"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type RecordId struct {
	ChainId domain.ChainId `bson:"chainId"`
	TxHash  domain.TxHash  `bson:"txHash"`
}

type RecordPatchable struct {
	Status    *Status    `bson:"status,omitempty"`
	GasFee    *string    `bson:"gasFee,omitempty"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty"`
}

func (r *Record) ToId() RecordId {
	return RecordId{ChainId: r.ChainId, TxHash: r.TxHash}
}

// Spent returns the record's spend in wei, honoring whichever column the
// record carries.
func (r *Record) Spent() *big.Int {
	col := r.Amount
	if col == nil {
		col = r.SpentWei
	}
	if col == nil {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(*col, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

type FindAllOptions struct {
	ChainId     *domain.ChainId
	User        *domain.Address
	Wallet      *domain.Address
	Collection  *domain.Address
	Status      *Status
	CreatedAtGT *time.Time
	CreatedAtLT *time.Time
	Offset      *int32
	Limit       *int32
	Sort        *string
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithChainId(chainId domain.ChainId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.ChainId = &chainId
		return nil
	}
}

func WithUser(user domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		user = user.ToLower()
		options.User = &user
		return nil
	}
}

func WithWallet(wallet domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		wallet = wallet.ToLower()
		options.Wallet = &wallet
		return nil
	}
}

func WithCollection(collection domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		collection = collection.ToLower()
		options.Collection = &collection
		return nil
	}
}

func WithStatus(status Status) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Status = &status
		return nil
	}
}

func WithCreatedAtGT(t time.Time) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.CreatedAtGT = &t
		return nil
	}
}

func WithCreatedAtLT(t time.Time) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.CreatedAtLT = &t
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSort(sort string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Sort = &sort
		return nil
	}
}

type Repo interface {
	FindAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Record, error)
	FindOne(ctx ctx.Ctx, id RecordId) (*Record, error)
	Count(ctx ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Insert(ctx ctx.Ctx, record *Record) error
	Update(ctx ctx.Ctx, id RecordId, patchable RecordPatchable) error
	RemoveAll(ctx ctx.Ctx, opts ...FindAllOptionsFunc) error
}

type UseCase interface {
	// Append writes the record for a freshly submitted batch and prunes
	// the owner's history down to the retention limit.
	Append(ctx ctx.Ctx, record *Record) error
	// Finalize is the confirmation monitor's terminal write.
	Finalize(ctx ctx.Ctx, id RecordId, status Status, gasFee *big.Int) error
	History(ctx ctx.Ctx, user domain.Address, limit int32) ([]*Record, error)
	// ConfirmedSpendSince sums confirmed spend for the daily cap check.
	ConfirmedSpendSince(ctx ctx.Ctx, user domain.Address, since time.Time) (*big.Int, error)
}
