package domain

import (
	"math/big"
	"strconv"
	"strings"
)

var (
	Big0     = big.NewInt(0)
	Big1     = big.NewInt(1)
	Big10000 = big.NewInt(10000)
)

type ChainId int32

// ToChainId parses a chain id path or query parameter.
func ToChainId(s string) (ChainId, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v <= 0 {
		return 0, ErrInvalidChainId
	}
	return ChainId(v), nil
}

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerPtr() *Address {
	res := a.ToLower()
	return &res
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

func (a Address) IsZero() bool {
	return a.ToLower() == EmptyAddress
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

type BlockNumber uint64

type TxHash string

func (h TxHash) ToLower() TxHash {
	return TxHash(strings.ToLower(string(h)))
}

type OrderHash string

func (h OrderHash) ToLower() OrderHash {
	return OrderHash(strings.ToLower(string(h)))
}

// Table names a mongo collection
type Table string

const (
	TableLedgerRecords Table = "ledger_records"
)

// ToBigInt parses base-10 integer strings, rejecting anything that would
// lose precision on its way into an ABI encoding.
func ToBigInt(nums []string) ([]*big.Int, error) {
	var bns []*big.Int
	for _, n := range nums {
		bn, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, ErrInvalidNumberFormat
		}
		bns = append(bns, bn)
	}
	return bns, nil
}

var ChainIdWrappedNativeMap map[ChainId]Address = map[ChainId]Address{
	// eth
	1: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
	// goerli
	5: "0xb4fbf271143f4fbf7b91a5ded31805e42b2208d6",
	// bsc
	56: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c",
	// fantom
	250: "0x21be370d5312f44cb42ce377bc9b8a0cef1a4c83",
}
