package wallet

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/xerrors"

	"github.com/x-xyz/sweeper/domain"
)

// Signer signs settlement and approval transactions for one hot wallet.
type Signer interface {
	Address() domain.Address
	SignTx(tx *types.Transaction, chainId *big.Int) (*types.Transaction, error)
}

// Provider resolves the signer for a wallet address. Returns
// domain.ErrNoWalletKey when the wallet's key is not loaded.
type Provider interface {
	Signer(wallet domain.Address) (Signer, error)
}

type keyedSigner struct {
	key     *ecdsa.PrivateKey
	address domain.Address
}

// NewKeyedSigner builds a signer from a hex-encoded private key.
func NewKeyedSigner(hexKey string) (Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, xerrors.Errorf("parsing wallet key: %w", err)
	}
	return &keyedSigner{
		key:     key,
		address: domain.Address(crypto.PubkeyToAddress(key.PublicKey).Hex()).ToLower(),
	}, nil
}

func (s *keyedSigner) Address() domain.Address {
	return s.address
}

func (s *keyedSigner) SignTx(tx *types.Transaction, chainId *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainId), s.key)
}

type keyring struct {
	signers map[domain.Address]Signer
}

// NewKeyring loads hex private keys and indexes the resulting signers by
// their derived address.
func NewKeyring(hexKeys []string) (Provider, error) {
	signers := map[domain.Address]Signer{}
	for _, hexKey := range hexKeys {
		signer, err := NewKeyedSigner(hexKey)
		if err != nil {
			return nil, err
		}
		signers[signer.Address()] = signer
	}
	return &keyring{signers: signers}, nil
}

func (k *keyring) Signer(wallet domain.Address) (Signer, error) {
	signer, ok := k.signers[wallet.ToLower()]
	if !ok {
		return nil, domain.ErrNoWalletKey
	}
	return signer, nil
}
