// Package geth adapts go-ethereum clients and bindings to adapter.EthAdapter.
//
// Writes return a TransactionResult carrying a [TransactionResponse], whose Wait method blocks on
// bind.WaitMined.
package geth

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/adapter/internal/evmbase"
	"github.com/smartcontractkit/safe-adapters/contracts"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

// Name is the backend identifier of this adapter.
const Name = "geth"

// Client is the go-ethereum client the adapter wraps, e.g. *ethclient.Client,
// simulated.Client or *rpcclient.MultiClient.
type Client = evmbase.Client

var _ adapter.EthAdapter = (*Adapter)(nil)

// Adapter implements adapter.EthAdapter with go-ethereum bindings.
type Adapter struct {
	evmbase.Base

	transactor *bind.TransactOpts
}

// Option configures an Adapter.
type Option func(*options)

type options struct {
	transactor *bind.TransactOpts
	lggr       logger.Logger
}

// WithTransactor sets the signer used for writes and deployments.
func WithTransactor(opts *bind.TransactOpts) Option {
	return func(o *options) {
		o.transactor = opts
	}
}

// WithLogger sets the logger.
func WithLogger(lggr logger.Logger) Option {
	return func(o *options) {
		o.lggr = lggr
	}
}

// New returns an adapter over client.
func New(client Client, opts ...Option) *Adapter {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var from common.Address
	if o.transactor != nil {
		from = o.transactor.From
	}

	return &Adapter{
		Base:       evmbase.NewBase(Name, client, from, o.lggr),
		transactor: o.transactor,
	}
}

func (a *Adapter) Contract(desc contracts.Descriptor, addr common.Address) (adapter.Contract, error) {
	return a.BindContract(desc, addr, evmbase.TransactorSend(a.transactor, a.wrap)), nil
}

func (a *Adapter) Deploy(
	ctx context.Context, desc contracts.Descriptor, args ...any,
) (common.Address, adapter.TransactionResult, error) {
	return a.Base.Deploy(ctx, a.transactor, desc, a.wrap, args...)
}

func (a *Adapter) WaitForReceipt(ctx context.Context, res adapter.TransactionResult) (*types.Receipt, error) {
	return adapter.WaitReceipt(ctx, res)
}

func (a *Adapter) wrap(_ context.Context, tx *types.Transaction) adapter.TransactionResult {
	return adapter.TransactionResult{
		Hash:     tx.Hash(),
		Response: &TransactionResponse{Transaction: tx, backend: a.Client},
	}
}

// TransactionResponse is a sent transaction that can be waited on.
type TransactionResponse struct {
	*types.Transaction

	backend bind.DeployBackend
}

// Wait blocks until the transaction is mined and returns its receipt.
func (r *TransactionResponse) Wait(ctx context.Context) (*types.Receipt, error) {
	return bind.WaitMined(ctx, r.backend, r.Transaction)
}
