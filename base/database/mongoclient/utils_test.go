package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/sweeper/base/ptr"
)

func TestMakeBsonM(t *testing.T) {
	req := require.New(t)

	type record struct {
		TxHash string   `bson:"txHash"`
		Status string   `bson:"status,omitempty"`
		GasFee *float64 `bson:"gasFee,omitempty"`
	}

	m, err := MakeBsonM(&record{TxHash: "0xabc", GasFee: ptr.Float64(0.1)})
	req.NoError(err)
	req.Equal(bson.M{"txHash": "0xabc", "gasFee": 0.1}, m)

	m, err = MakeBsonM(record{Status: "confirmed"})
	req.NoError(err)
	req.Equal(bson.M{"status": "confirmed"}, m)
}
