package usecase

import (
	"math/big"
	"time"

	"github.com/viney-shih/goroutines"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/listing"
	"github.com/x-xyz/sweeper/domain/settlement"
)

var timeNow = time.Now

// concurrent ghost set lookups per Settlable call
const ghostLookupWorkers = 10

type ListingUseCaseCfg struct {
	GhostSet listing.GhostSetRepo
}

type impl struct {
	ghostSet listing.GhostSetRepo
}

func New(cfg *ListingUseCaseCfg) listing.UseCase {
	return &impl{
		ghostSet: cfg.GhostSet,
	}
}

// Settlable walks the candidates in their given price-ascending order and
// keeps the ones worth submitting. Pure over the input plus the ghost
// set; the only clock read is the single timestamp taken up front.
func (im *impl) Settlable(c ctx.Ctx, listings []*listing.Listing, priceCeiling *big.Int) ([]*listing.Listing, []*listing.Rejection, error) {
	kept := []*listing.Listing{}
	rejections := []*listing.Rejection{}
	now := timeNow().Unix()

	ghosted, err := im.ghostLookups(c, listings)
	if err != nil {
		return nil, nil, err
	}

	for i, l := range listings {
		if reason := im.judge(l, ghosted[i], priceCeiling, now); reason != nil {
			rejections = append(rejections, &listing.Rejection{TokenId: l.TokenId, Reason: *reason})
			continue
		}
		kept = append(kept, l)
	}

	if len(listings) > 0 && len(kept) == 0 {
		c.WithFields(log.Fields{
			"candidates": len(listings),
			"rejected":   len(rejections),
		}).Warn("every candidate filtered out")
		return nil, rejections, domain.ErrAllCandidatesStale
	}

	return kept, rejections, nil
}

type ghostLookup struct {
	idx     int
	ghosted bool
}

// ghostLookups fans the per-listing set membership reads out over a
// bounded worker pool; each one is a network roundtrip.
func (im *impl) ghostLookups(c ctx.Ctx, listings []*listing.Listing) ([]bool, error) {
	ghosted := make([]bool, len(listings))
	if len(listings) == 0 {
		return ghosted, nil
	}

	b := goroutines.NewBatch(ghostLookupWorkers, goroutines.WithBatchSize(len(listings)))
	defer b.Close()
	for i := range listings {
		idx := i
		b.Queue(func() (interface{}, error) {
			l := listings[idx]
			ok, err := im.ghostSet.Contains(c, l.ChainId, l.Collection, l.TokenId)
			if err != nil {
				return nil, err
			}
			return ghostLookup{idx, ok}, nil
		})
	}
	b.QueueComplete()

	var firstErr error
	for r := range b.Results() {
		if err := r.Error(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		v := r.Value().(ghostLookup)
		ghosted[v.idx] = v.ghosted
	}
	return ghosted, firstErr
}

func (im *impl) judge(l *listing.Listing, ghosted bool, priceCeiling *big.Int, now int64) *listing.RejectReason {
	if ghosted {
		return reject(listing.RejectReasonGhosted)
	}

	if len(l.TokenId) == 0 || len(l.BasePrice) == 0 || len(l.EndPrice) == 0 || len(l.EndTime) == 0 || l.Seller.IsEmpty() {
		return reject(listing.RejectReasonMissingOrderData)
	}

	switch l.Status {
	case listing.StatusSold, listing.StatusCancelled, listing.StatusExpired:
		return reject(listing.RejectReasonBadStatus)
	}

	if !l.HasSignature() {
		return reject(listing.RejectReasonNullSignature)
	}

	order, err := settlement.OrderFromListing(l, 0)
	if err != nil {
		return reject(listing.RejectReasonMissingOrderData)
	}
	price := settlement.SettlePriceAt(order.BasePrice, order.EndPrice, order.StartTime.Int64(), order.EndTime.Int64(), now)
	if price.Sign() == 0 {
		return reject(listing.RejectReasonZeroPrice)
	}

	if priceCeiling != nil && price.Cmp(priceCeiling) > 0 {
		return reject(listing.RejectReasonOverCeiling)
	}

	return nil
}

func reject(r listing.RejectReason) *listing.RejectReason {
	return &r
}
