package repository

import (
	"fmt"

	"github.com/gomodule/redigo/redis"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/base/metrics"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/listing"
)

// redisGhostSet keeps the stale-listing token set in redis so every
// instance sees the same exclusions.
type redisGhostSet struct {
	pool *redis.Pool
	met  metrics.Service
}

func NewRedisGhostSet(pool *redis.Pool, met metrics.Service) listing.GhostSetRepo {
	return &redisGhostSet{pool: pool, met: met}
}

func ghostKey(chainId domain.ChainId, collection domain.Address) string {
	return fmt.Sprintf("ghost:%d:%s", chainId, collection.ToLowerStr())
}

func (r *redisGhostSet) Add(c ctx.Ctx, chainId domain.ChainId, collection domain.Address, tokenIds ...domain.TokenId) error {
	if len(tokenIds) == 0 {
		return nil
	}
	defer r.met.BumpTime("time", "func", "ghostset.add").End()

	conn, err := r.pool.GetContext(c)
	if err != nil {
		return err
	}
	defer conn.Close()

	args := make([]interface{}, 0, len(tokenIds)+1)
	args = append(args, ghostKey(chainId, collection))
	for _, id := range tokenIds {
		args = append(args, string(id))
	}
	if _, err := conn.Do("SADD", args...); err != nil {
		c.WithFields(log.Fields{
			"chainId":    chainId,
			"collection": collection,
			"err":        err,
		}).Error("ghost set SADD failed")
		return err
	}
	return nil
}

func (r *redisGhostSet) Contains(c ctx.Ctx, chainId domain.ChainId, collection domain.Address, tokenId domain.TokenId) (bool, error) {
	defer r.met.BumpTime("time", "func", "ghostset.contains").End()

	conn, err := r.pool.GetContext(c)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	ok, err := redis.Bool(conn.Do("SISMEMBER", ghostKey(chainId, collection), string(tokenId)))
	if err != nil {
		c.WithFields(log.Fields{
			"chainId":    chainId,
			"collection": collection,
			"tokenId":    tokenId,
			"err":        err,
		}).Error("ghost set SISMEMBER failed")
		return false, err
	}
	return ok, nil
}

func (r *redisGhostSet) All(c ctx.Ctx, chainId domain.ChainId, collection domain.Address) ([]domain.TokenId, error) {
	defer r.met.BumpTime("time", "func", "ghostset.all").End()

	conn, err := r.pool.GetContext(c)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	members, err := redis.Strings(conn.Do("SMEMBERS", ghostKey(chainId, collection)))
	if err != nil {
		c.WithFields(log.Fields{
			"chainId":    chainId,
			"collection": collection,
			"err":        err,
		}).Error("ghost set SMEMBERS failed")
		return nil, err
	}

	ids := make([]domain.TokenId, 0, len(members))
	for _, m := range members {
		ids = append(ids, domain.TokenId(m))
	}
	return ids, nil
}
