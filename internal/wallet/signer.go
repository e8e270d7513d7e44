package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrInvalidSignature covers malformed signatures and signatures that
	// do not recover to the expected address.
	ErrInvalidSignature = errors.New("wallet: invalid signature")
)

// Signer holds an ECDSA key and produces EIP-191 personal-sign signatures,
// the same scheme browser wallets use for message signing.
type Signer struct {
	key *ecdsa.PrivateKey
}

func NewSignerFromHex(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &Signer{key: key}, nil
}

func NewSigner(key *ecdsa.PrivateKey) *Signer {
	return &Signer{key: key}
}

func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *Signer) PrivateKey() *ecdsa.PrivateKey {
	return s.key
}

// SignMessage signs msg with the EIP-191 "\x19Ethereum Signed Message"
// prefix and returns a 0x-prefixed 65-byte signature with V in {27,28}.
func (s *Signer) SignMessage(msg string) (string, error) {
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}
	sig[64] += 27
	return "0x" + hex.EncodeToString(sig), nil
}

// RecoverAddress returns the address that produced an EIP-191 signature
// over msg.
func RecoverAddress(msg, sigHex string) (common.Address, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil || len(sig) != 65 {
		return common.Address{}, ErrInvalidSignature
	}

	// Accept both {0,1} and {27,28} recovery ids.
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return common.Address{}, ErrInvalidSignature
	}

	normalized := make([]byte, 65)
	copy(normalized, sig[:64])
	normalized[64] = v

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(msg)), normalized)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify checks that sigHex over msg recovers to addr.
func Verify(msg, sigHex string, addr common.Address) error {
	recovered, err := RecoverAddress(msg, sigHex)
	if err != nil {
		return err
	}
	if recovered != addr {
		return ErrInvalidSignature
	}
	return nil
}

// ValidAddress reports whether s has the shape of a hex address. Used as a
// fast-fail before any transaction is submitted.
func ValidAddress(s string) bool {
	return common.IsHexAddress(s)
}
