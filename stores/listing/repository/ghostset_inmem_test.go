package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/domain"
)

func TestInmemGhostSet(t *testing.T) {
	req := require.New(t)
	c := ctx.Background()
	collection := domain.Address("0xabc")

	set := NewInmemGhostSet()

	ok, err := set.Contains(c, 1, collection, "1")
	req.NoError(err)
	req.False(ok)

	req.NoError(set.Add(c, 1, collection, "1", "2"))

	ok, err = set.Contains(c, 1, collection, "1")
	req.NoError(err)
	req.True(ok)

	// scoped per chain and collection
	ok, err = set.Contains(c, 5, collection, "1")
	req.NoError(err)
	req.False(ok)

	all, err := set.All(c, 1, collection)
	req.NoError(err)
	req.Len(all, 2)
}
