package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/sweeper/domain"
)

// well-known anvil/hardhat dev key, not a secret
const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestNewKeyedSigner(t *testing.T) {
	req := require.New(t)

	signer, err := NewKeyedSigner(devKey)
	req.NoError(err)
	req.Equal(domain.Address("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"), signer.Address())

	signer2, err := NewKeyedSigner("0x" + devKey)
	req.NoError(err)
	req.Equal(signer.Address(), signer2.Address())

	_, err = NewKeyedSigner("not-a-key")
	req.Error(err)
}

func TestSignTx(t *testing.T) {
	req := require.New(t)

	signer, err := NewKeyedSigner(devKey)
	req.NoError(err)

	chainId := big.NewInt(1)
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    0,
		To:       &common.Address{},
		Value:    big.NewInt(0),
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
	signed, err := signer.SignTx(tx, chainId)
	req.NoError(err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainId), signed)
	req.NoError(err)
	req.Equal(string(signer.Address()), domain.Address(sender.Hex()).ToLowerStr())
}

func TestKeyring(t *testing.T) {
	req := require.New(t)

	ring, err := NewKeyring([]string{devKey})
	req.NoError(err)

	// lookup is case insensitive
	signer, err := ring.Signer("0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	req.NoError(err)
	req.NotNil(signer)

	_, err = ring.Signer("0x0000000000000000000000000000000000000001")
	req.ErrorIs(err, domain.ErrNoWalletKey)
}
