package abi

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// GatewayABI is the settlement gateway's bulk entry point. Each call entry
// carries one order's encoded settle payload, the currency the buyer pays
// in, and the native value attached to that entry (always zero here, the
// gateway pulls payment through the ERC-20 allowance).
var GatewayABI abi.ABI

var gatewayABI = `[{"type":"function","name":"settleBulk","constant":false,"stateMutability":"payable","payable":true,"inputs":[{"type":"tuple[]","name":"calls","components":[{"type":"bytes","name":"data"},{"type":"address","name":"currency"},{"type":"uint256","name":"value"}]}],"outputs":[]},{"type":"event","anonymous":false,"name":"OrderSettled","inputs":[{"type":"bytes32","name":"orderHash","indexed":true},{"type":"address","name":"maker","indexed":true},{"type":"address","name":"taker","indexed":true},{"type":"uint256","name":"price"}]}]`

func init() {
	_abi, err := abi.JSON(strings.NewReader(gatewayABI))
	if err != nil {
		panic("Failed to parse gateway abi")
	}
	GatewayABI = _abi
}

// GatewayCall is one entry of settleBulk's calls array.
type GatewayCall struct {
	Data     []byte         `abi:"data"`
	Currency common.Address `abi:"currency"`
	Value    *big.Int       `abi:"value"`
}

// PackSettleBulk builds the gateway call data for one batch.
func PackSettleBulk(calls []GatewayCall) ([]byte, error) {
	return GatewayABI.Pack("settleBulk", calls)
}
