package signer

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Safe signature types are encoded in the V byte: 27/28 for a signature over the Safe
// transaction hash itself, 31/32 for an eth_sign signature over its prefixed message hash.
const (
	safeECDSAVOffset   = 27
	safeEthSignVOffset = 31
)

// SignSafeHash signs a Safe transaction or message hash with g and returns a signature the Safe
// accepts as an ECDSA owner signature.
func SignSafeHash(g Generator, hash common.Hash) ([]byte, error) {
	sig, err := g.SignHash(hash.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to sign safe hash %s: %w", hash.Hex(), err)
	}

	return withVOffset(sig, safeECDSAVOffset)
}

// EthSignSafeHash signs the eth_sign prefixed form of hash and encodes it as a Safe eth_sign
// signature.
func EthSignSafeHash(g Generator, hash common.Hash) ([]byte, error) {
	sig, err := g.SignHash(accounts.TextHash(hash.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to eth_sign safe hash %s: %w", hash.Hex(), err)
	}

	return withVOffset(sig, safeEthSignVOffset)
}

func withVOffset(sig []byte, offset byte) ([]byte, error) {
	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("signature has %d bytes, want %d", len(sig), crypto.SignatureLength)
	}

	out := make([]byte, len(sig))
	copy(out, sig)
	if out[64] < 27 {
		out[64] += offset
	} else {
		out[64] += offset - 27
	}

	return out, nil
}
