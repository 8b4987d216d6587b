package signer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	zkAccounts "github.com/zksync-sdk/zksync2-go/accounts"
	zkTypes "github.com/zksync-sdk/zksync2-go/types"
)

// ZkSyncGenerator creates zksync2-go signers for a chain.
type ZkSyncGenerator interface {
	Generate(chainID *big.Int) (zkAccounts.Signer, error)
}

var (
	_ ZkSyncGenerator = (*zkFromRaw)(nil)
	_ ZkSyncGenerator = (*zkRandom)(nil)
	_ ZkSyncGenerator = (*zkFromKMS)(nil)
)

// ZkSyncFromRaw returns a generator for a hex encoded private key.
func ZkSyncFromRaw(privKey string) ZkSyncGenerator {
	return &zkFromRaw{privKey: privKey}
}

type zkFromRaw struct {
	privKey string
}

func (g *zkFromRaw) Generate(chainID *big.Int) (zkAccounts.Signer, error) {
	return zkAccounts.NewECDSASignerFromRawPrivateKey(common.FromHex(g.privKey), chainID)
}

// ZkSyncRandom returns a generator creating a signer over a fresh random key.
func ZkSyncRandom() ZkSyncGenerator {
	return &zkRandom{}
}

type zkRandom struct{}

func (g *zkRandom) Generate(chainID *big.Int) (zkAccounts.Signer, error) {
	return zkAccounts.NewRandomBaseSigner(chainID)
}

// ZkSyncFromKMS returns a generator whose signers sign EIP-712 typed data with a KMS key.
func ZkSyncFromKMS(cfg KMSConfig) (ZkSyncGenerator, error) {
	s, err := NewKMSSigner(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create KMS signer: %w", err)
	}

	return ZkSyncFromKMSSigner(s), nil
}

// ZkSyncFromKMSSigner returns a generator over an existing KMSSigner.
func ZkSyncFromKMSSigner(s *KMSSigner) ZkSyncGenerator {
	return &zkFromKMS{signer: s}
}

type zkFromKMS struct {
	signer *KMSSigner
}

func (g *zkFromKMS) Generate(chainID *big.Int) (zkAccounts.Signer, error) {
	addr, err := g.signer.GetAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to get address from KMS signer: %w", err)
	}

	return &typedDataSigner{address: addr, chainID: chainID, signHash: g.signer.SignHash}, nil
}

// typedDataSigner is a zkSync signer without local key material. Only typed data signing is
// supported, which is what the wallet uses for EIP-712 transactions.
type typedDataSigner struct {
	address  common.Address
	chainID  *big.Int
	signHash func([]byte) ([]byte, error)
}

func (s *typedDataSigner) PrivateKey() *ecdsa.PrivateKey {
	return nil
}

func (s *typedDataSigner) Address() common.Address {
	return s.address
}

func (s *typedDataSigner) ChainID() *big.Int {
	return s.chainID
}

func (s *typedDataSigner) SignMessage(_ context.Context, _ []byte) ([]byte, error) {
	return nil, errors.New("SignMessage not implemented")
}

func (s *typedDataSigner) SignTransaction(_ context.Context, _ *zkTypes.Transaction) ([]byte, error) {
	return nil, errors.New("SignTransaction not implemented")
}

// SignTypedData signs keccak256("\x19\x01" || domainSeparator || hashStruct(message)) and
// returns the signature with V in {27, 28}.
func (s *typedDataSigner) SignTypedData(_ context.Context, typedData *apitypes.TypedData) ([]byte, error) {
	hash, err := TypedDataHash(typedData)
	if err != nil {
		return nil, err
	}

	sig, err := s.signHash(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to sign hash of typed data: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}

	return sig, nil
}

// TypedDataHash returns the EIP-712 digest of typedData.
func TypedDataHash(typedData *apitypes.TypedData) ([]byte, error) {
	domain, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to get hash of typed data domain: %w", err)
	}

	dataHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to get hash of typed message: %w", err)
	}

	return crypto.Keccak256([]byte{0x19, 0x01}, domain, dataHash), nil
}
