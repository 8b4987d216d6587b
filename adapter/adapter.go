// Package adapter defines the backend independent surface used to talk to Safe contracts.
//
// An [EthAdapter] is produced by one of the backend packages (geth, seth, zksync) or by the
// backend selection facade. Every adapter resolves contract descriptors into [Contract] values
// with the same behaviour regardless of the client library underneath.
package adapter

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/smartcontractkit/safe-adapters/contracts"
)

var (
	// ErrNoSigner is returned by write operations on an adapter built without a signer.
	ErrNoSigner = errors.New("adapter has no signer configured")
	// ErrInvalidClient is returned when a client handle cannot back an adapter.
	ErrInvalidClient = errors.New("client handle does not match backend")
)

// EthAdapter is the contract interaction interface shared by every backend.
type EthAdapter interface {
	// Backend returns the identifier of the wrapped client library.
	Backend() string

	// GetNetwork returns the chain the client is connected to.
	GetNetwork(ctx context.Context) (Network, error)
	// GetChainID returns the chain id reported by the client.
	GetChainID(ctx context.Context) (*big.Int, error)
	// GetTransaction fetches a transaction by hash.
	GetTransaction(ctx context.Context, hash common.Hash) (*types.Transaction, error)
	// GetBalance returns the latest balance of addr in wei.
	GetBalance(ctx context.Context, addr common.Address) (*big.Int, error)
	// GetNonce returns the latest nonce of addr.
	GetNonce(ctx context.Context, addr common.Address) (uint64, error)
	// GetContractCode returns the runtime code deployed at addr.
	GetContractCode(ctx context.Context, addr common.Address) ([]byte, error)
	// IsContractDeployed reports whether any code is deployed at addr.
	IsContractDeployed(ctx context.Context, addr common.Address) (bool, error)
	// GetSignerAddress returns the address transactions are sent from, if a signer is set.
	GetSignerAddress() (common.Address, bool)

	// Contract resolves a contract binding at an address.
	Contract(desc contracts.Descriptor, addr common.Address) (Contract, error)
	// Deploy creates a new instance of a deployable descriptor.
	Deploy(ctx context.Context, desc contracts.Descriptor, args ...any) (common.Address, TransactionResult, error)
	// WaitForReceipt resolves a transaction result produced by this adapter into a receipt.
	WaitForReceipt(ctx context.Context, res TransactionResult) (*types.Receipt, error)
}

// Contract is a descriptor bound to an address through an adapter.
type Contract interface {
	Address() common.Address
	Descriptor() contracts.Descriptor

	// Call executes a read-only method and returns its decoded outputs.
	Call(ctx context.Context, method string, args ...any) ([]any, error)
	// Transact signs and sends a transaction invoking method.
	Transact(ctx context.Context, method string, args ...any) (TransactionResult, error)
	// EstimateGas estimates the gas needed to execute method from the signer address.
	EstimateGas(ctx context.Context, method string, args ...any) (uint64, error)
	// Encode returns the ABI encoded calldata of method.
	Encode(method string, args ...any) ([]byte, error)
}
