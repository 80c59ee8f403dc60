package repository

import (
	"sync"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/listing"
)

// inmemGhostSet backs single-instance deployments and tests. Not shared
// across processes, use the redis set in production.
type inmemGhostSet struct {
	mu   sync.RWMutex
	sets map[string]map[domain.TokenId]struct{}
}

func NewInmemGhostSet() listing.GhostSetRepo {
	return &inmemGhostSet{sets: map[string]map[domain.TokenId]struct{}{}}
}

func (r *inmemGhostSet) Add(c ctx.Ctx, chainId domain.ChainId, collection domain.Address, tokenIds ...domain.TokenId) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ghostKey(chainId, collection)
	set, ok := r.sets[key]
	if !ok {
		set = map[domain.TokenId]struct{}{}
		r.sets[key] = set
	}
	for _, id := range tokenIds {
		set[id] = struct{}{}
	}
	return nil
}

func (r *inmemGhostSet) Contains(c ctx.Ctx, chainId domain.ChainId, collection domain.Address, tokenId domain.TokenId) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.sets[ghostKey(chainId, collection)]
	if !ok {
		return false, nil
	}
	_, ok = set[tokenId]
	return ok, nil
}

func (r *inmemGhostSet) All(c ctx.Ctx, chainId domain.ChainId, collection domain.Address) ([]domain.TokenId, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.sets[ghostKey(chainId, collection)]
	ids := make([]domain.TokenId, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}
