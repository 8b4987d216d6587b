// Package evmbase holds the read path and contract binding shared by the backend adapters. The
// backends differ only in how a write is sent and in the shape of the returned result.
package evmbase

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

// Client is the go-ethereum compatible client every backend reads through. *ethclient.Client,
// simulated.Client and rpcclient.MultiClient all satisfy it.
type Client interface {
	bind.ContractBackend
	bind.DeployBackend
	ethereum.TransactionReader
	ethereum.ChainIDReader
	ethereum.ChainStateReader
}

// Base implements the read-only half of adapter.EthAdapter on top of a Client.
type Base struct {
	Name   string
	Client Client
	Lggr   logger.Logger
	// From is the signer address, zero when the adapter is read-only.
	From common.Address
}

// NewBase returns a Base, defaulting to a no-op logger.
func NewBase(name string, client Client, from common.Address, lggr logger.Logger) Base {
	if lggr == nil {
		lggr = logger.Nop()
	}

	return Base{Name: name, Client: client, Lggr: lggr.Named(name), From: from}
}

func (b Base) Backend() string {
	return b.Name
}

func (b Base) GetChainID(ctx context.Context) (*big.Int, error) {
	id, err := b.Client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get chain id: %w", b.Name, err)
	}

	return id, nil
}

func (b Base) GetNetwork(ctx context.Context) (adapter.Network, error) {
	id, err := b.GetChainID(ctx)
	if err != nil {
		return adapter.Network{}, err
	}

	return adapter.NetworkFromChainID(id), nil
}

func (b Base) GetTransaction(ctx context.Context, hash common.Hash) (*types.Transaction, error) {
	b.Lggr.Debugw("dispatch", "op", "GetTransaction", "hash", hash.Hex())

	tx, _, err := b.Client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get transaction %s: %w", b.Name, hash.Hex(), err)
	}

	return tx, nil
}

func (b Base) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := b.Client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get balance of %s: %w", b.Name, addr.Hex(), err)
	}

	return bal, nil
}

func (b Base) GetNonce(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := b.Client.NonceAt(ctx, addr, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get nonce of %s: %w", b.Name, addr.Hex(), err)
	}

	return nonce, nil
}

func (b Base) GetContractCode(ctx context.Context, addr common.Address) ([]byte, error) {
	code, err := b.Client.CodeAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get code at %s: %w", b.Name, addr.Hex(), err)
	}

	return code, nil
}

func (b Base) IsContractDeployed(ctx context.Context, addr common.Address) (bool, error) {
	code, err := b.GetContractCode(ctx, addr)
	if err != nil {
		return false, err
	}

	return len(code) > 0, nil
}

func (b Base) GetSignerAddress() (common.Address, bool) {
	return b.From, b.From != (common.Address{})
}

// WaitMinedWithInterval polls for the receipt of txHash every tick until it is found or ctx is
// done. It is used where only the hash of a sent transaction is known.
func WaitMinedWithInterval(
	ctx context.Context, tick time.Duration, b bind.DeployBackend, txHash common.Hash,
) (*types.Receipt, error) {
	queryTicker := time.NewTicker(tick)
	defer queryTicker.Stop()
	for {
		receipt, err := b.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-queryTicker.C:
		}
	}
}
