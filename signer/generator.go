// Package signer builds the transactors and zkSync signers the adapters send transactions with,
// from a raw private key, a random key or an AWS KMS key.
package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// Generator creates *bind.TransactOpts for a chain and signs arbitrary 32 byte hashes with the
// same key. Signatures are 65 bytes [R || S || V] with V in {0, 1}.
type Generator interface {
	Generate(chainID *big.Int) (*bind.TransactOpts, error)
	SignHash(hash []byte) ([]byte, error)
}

var (
	_ Generator = (*fromRaw)(nil)
	_ Generator = (*random)(nil)
	_ Generator = (*fromKMS)(nil)
)

type generatorOptions struct {
	gasLimit uint64
}

// Option configures a Generator.
type Option func(*generatorOptions)

// WithGasLimit fixes the gas limit of generated transactors. Zero leaves estimation to the
// client library.
func WithGasLimit(gasLimit uint64) Option {
	return func(o *generatorOptions) {
		o.gasLimit = gasLimit
	}
}

func applyOptions(opts []Option) generatorOptions {
	o := generatorOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// FromRaw returns a generator for a hex encoded private key, with or without 0x prefix.
func FromRaw(privKey string, opts ...Option) Generator {
	return &fromRaw{privKey: privKey, opts: applyOptions(opts)}
}

type fromRaw struct {
	privKey string
	opts    generatorOptions
}

func (g *fromRaw) key() (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(trimHexPrefix(g.privKey))
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key to ECDSA: %w", err)
	}

	return key, nil
}

func (g *fromRaw) Generate(chainID *big.Int) (*bind.TransactOpts, error) {
	key, err := g.key()
	if err != nil {
		return nil, err
	}

	return newKeyedTransactor(key, chainID, g.opts)
}

func (g *fromRaw) SignHash(hash []byte) ([]byte, error) {
	key, err := g.key()
	if err != nil {
		return nil, err
	}

	return signWithKey(key, hash)
}

// Random returns a generator over a random key. The key is created on first use and reused by
// every later call.
func Random(opts ...Option) Generator {
	return &random{opts: applyOptions(opts)}
}

type random struct {
	opts generatorOptions

	once sync.Once
	key  *ecdsa.PrivateKey
	err  error
}

func (g *random) load() (*ecdsa.PrivateKey, error) {
	g.once.Do(func() {
		g.key, g.err = crypto.GenerateKey()
		if g.err != nil {
			g.err = fmt.Errorf("failed to generate random private key: %w", g.err)
		}
	})

	return g.key, g.err
}

func (g *random) Generate(chainID *big.Int) (*bind.TransactOpts, error) {
	key, err := g.load()
	if err != nil {
		return nil, err
	}

	return newKeyedTransactor(key, chainID, g.opts)
}

func (g *random) SignHash(hash []byte) ([]byte, error) {
	key, err := g.load()
	if err != nil {
		return nil, err
	}

	return signWithKey(key, hash)
}

// FromKMS returns a generator signing with the KMS key described by cfg.
func FromKMS(cfg KMSConfig, opts ...Option) (Generator, error) {
	s, err := NewKMSSigner(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create KMS signer: %w", err)
	}

	return FromKMSSigner(s, opts...), nil
}

// FromKMSSigner returns a generator over an existing KMSSigner.
func FromKMSSigner(s *KMSSigner, opts ...Option) Generator {
	return &fromKMS{signer: s, opts: applyOptions(opts)}
}

type fromKMS struct {
	signer *KMSSigner
	opts   generatorOptions
}

func (g *fromKMS) Generate(chainID *big.Int) (*bind.TransactOpts, error) {
	transactor, err := g.signer.GetTransactOpts(context.Background(), chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transact opts from KMS signer: %w", err)
	}
	if g.opts.gasLimit > 0 {
		transactor.GasLimit = g.opts.gasLimit
	}

	return transactor, nil
}

func (g *fromKMS) SignHash(hash []byte) ([]byte, error) {
	return g.signer.SignHash(hash)
}

func newKeyedTransactor(key *ecdsa.PrivateKey, chainID *big.Int, o generatorOptions) (*bind.TransactOpts, error) {
	transactor, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	if o.gasLimit > 0 {
		transactor.GasLimit = o.gasLimit
	}

	return transactor, nil
}

func signWithKey(key *ecdsa.PrivateKey, hash []byte) ([]byte, error) {
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign hash: %w", err)
	}

	return sig, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}

	return s
}
