package abi

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var Erc20ABI abi.ABI

var erc20ABI = `[{"type":"function","name":"balanceOf","constant":true,"stateMutability":"view","payable":false,"inputs":[{"type":"address","name":"owner"}],"outputs":[{"type":"uint256"}]},{"type":"function","name":"allowance","constant":true,"stateMutability":"view","payable":false,"inputs":[{"type":"address","name":"owner"},{"type":"address","name":"spender"}],"outputs":[{"type":"uint256"}]},{"type":"function","name":"approve","constant":false,"stateMutability":"nonpayable","payable":false,"inputs":[{"type":"address","name":"spender"},{"type":"uint256","name":"amount"}],"outputs":[{"type":"bool"}]},{"type":"function","name":"decimals","constant":true,"stateMutability":"view","payable":false,"inputs":[],"outputs":[{"type":"uint8"}]}]`

func init() {
	_abi, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic("Failed to parse erc20 abi")
	}
	Erc20ABI = _abi
}
