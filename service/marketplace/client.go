package marketplace

import (
	"errors"
	"net/http"
	"time"

	bCtx "github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/listing"
)

var (
	ErrStatusCodeNotOk = errors.New("http.status != 200")
)

// Client reads active listings from the marketplace's order book API.
// It satisfies listing.SourceRepo.
type Client interface {
	Listings(ctx bCtx.Ctx, chainId domain.ChainId, collection domain.Address, limit int) ([]*listing.Listing, error)
}

type ClientCfg struct {
	HttpClient http.Client
	Timeout    time.Duration
	Apikey     string
	// primary first, backups after; tried in order per request
	Endpoints []string
	// minimum gap between upstream calls, shared across callers
	MinSpacing time.Duration
}

type ListingsResp struct {
	Listings []*listing.Listing `json:"listings"`
}
