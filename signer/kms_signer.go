package signer

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	kmslib "github.com/aws/aws-sdk-go/service/kms"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// KMSSigner signs EVM transactions and hashes with an AWS KMS secp256k1 key.
type KMSSigner struct {
	client KMSClient
	keyID  string

	mu     sync.Mutex
	pubKey *ecdsa.PublicKey
}

// NewKMSSigner creates a signer for the key described by cfg.
func NewKMSSigner(cfg KMSConfig) (*KMSSigner, error) {
	client, err := NewKMSClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize KMS client: %w", err)
	}

	return NewKMSSignerWithClient(client, cfg.KeyID), nil
}

// NewKMSSignerWithClient creates a signer for keyID over an existing KMS client.
func NewKMSSignerWithClient(client KMSClient, keyID string) *KMSSigner {
	return &KMSSigner{client: client, keyID: keyID}
}

// GetECDSAPublicKey returns the public key of the KMS key. The key is fetched once and cached.
func (s *KMSSigner) GetECDSAPublicKey() (*ecdsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pubKey != nil {
		return s.pubKey, nil
	}

	out, err := s.client.GetPublicKey(&kmslib.GetPublicKeyInput{
		KeyId: aws.String(s.keyID),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot get public key from KMS for KeyId=%s: %w", s.keyID, err)
	}

	var info spki
	if _, err = asn1.Unmarshal(out.PublicKey, &info); err != nil {
		return nil, fmt.Errorf("cannot parse asn1 public key for KeyId=%s: %w", s.keyID, err)
	}

	pubKey, err := crypto.UnmarshalPubkey(info.SubjectPublicKey.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cannot unmarshal public key bytes: %w", err)
	}
	s.pubKey = pubKey

	return pubKey, nil
}

// GetAddress returns the address of the KMS key.
func (s *KMSSigner) GetAddress() (common.Address, error) {
	pubKey, err := s.GetECDSAPublicKey()
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to get public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pubKey), nil
}

// GetTransactOpts returns transact options that sign with the KMS key on chainID.
func (s *KMSSigner) GetTransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	if chainID == nil {
		return nil, errors.New("chainID is required")
	}

	pubKey, err := s.GetECDSAPublicKey()
	if err != nil {
		return nil, err
	}

	return &bind.TransactOpts{
		From:    crypto.PubkeyToAddress(*pubKey),
		Signer:  s.signerFunc(chainID),
		Context: ctx,
	}, nil
}

// SignHash signs a 32 byte digest and returns a 65 byte [R || S || V] signature with V in {0, 1}.
func (s *KMSSigner) SignHash(hash []byte) ([]byte, error) {
	pubKey, err := s.GetECDSAPublicKey()
	if err != nil {
		return nil, err
	}

	return s.sign(pubKey, hash)
}

func (s *KMSSigner) signerFunc(chainID *big.Int) bind.SignerFn {
	txSigner := types.LatestSignerForChainID(chainID)

	return func(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
		pubKey, err := s.GetECDSAPublicKey()
		if err != nil {
			return nil, err
		}
		if address != crypto.PubkeyToAddress(*pubKey) {
			return nil, bind.ErrNotAuthorized
		}

		sig, err := s.sign(pubKey, txSigner.Hash(tx).Bytes())
		if err != nil {
			return nil, err
		}

		return tx.WithSignature(txSigner, sig)
	}
}

func (s *KMSSigner) sign(pubKey *ecdsa.PublicKey, hash []byte) ([]byte, error) {
	out, err := s.client.Sign(&kmslib.SignInput{
		KeyId:            aws.String(s.keyID),
		SigningAlgorithm: aws.String(kmslib.SigningAlgorithmSpecEcdsaSha256),
		MessageType:      aws.String(kmslib.MessageTypeDigest),
		Message:          hash,
	})
	if err != nil {
		return nil, fmt.Errorf("call to kms.Sign() failed: %w", err)
	}

	sig, err := kmsToEVMSig(out.Signature, crypto.FromECDSAPub(pubKey), hash)
	if err != nil {
		return nil, fmt.Errorf("failed to convert KMS signature to Ethereum signature: %w", err)
	}

	return sig, nil
}

var (
	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Div(secp256k1N, big.NewInt(2))
)

// kmsToEVMSig converts a DER encoded KMS signature into a 65 byte EVM signature. S is
// normalised to the lower half of the curve order (EIP-2).
func kmsToEVMSig(kmsSig, pubKeyBytes, hash []byte) ([]byte, error) {
	var sig ecdsaSig
	if _, err := asn1.Unmarshal(kmsSig, &sig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal KMS signature: %w", err)
	}

	sBytes := sig.S.Bytes
	sInt := new(big.Int).SetBytes(sBytes)
	if sInt.Cmp(secp256k1HalfN) > 0 {
		sBytes = new(big.Int).Sub(secp256k1N, sInt).Bytes()
	}

	return recoverEVMSignature(pubKeyBytes, hash, sig.R.Bytes, sBytes)
}

// recoverEVMSignature picks the recovery id that recovers wantPubKey from [r || s].
func recoverEVMSignature(wantPubKey, hash, r, s []byte) ([]byte, error) {
	rs := append(padTo32Bytes(r), padTo32Bytes(s)...)

	for _, v := range []byte{0, 1} {
		sig := append(bytes.Clone(rs), v)
		got, err := crypto.Ecrecover(hash, sig)
		if err != nil {
			return nil, fmt.Errorf("failed to recover signature with v=%d: %w", v, err)
		}
		if bytes.Equal(got, wantPubKey) {
			return sig, nil
		}
	}

	return nil, errors.New("cannot reconstruct public key from sig")
}

func padTo32Bytes(b []byte) []byte {
	b = bytes.TrimLeft(b, "\x00")
	if len(b) >= 32 {
		return b
	}

	return append(make([]byte, 32-len(b)), b...)
}
