// Package seth adapts the chainlink-testing-framework seth client to adapter.EthAdapter.
//
// Calls and transactions go through the go-ethereum client embedded in seth. Once a transaction
// is mined it is decoded by seth, and the outcome is delivered as a single Confirmation on the
// Events channel of the TransactionResult.
package seth

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/smartcontractkit/chainlink-testing-framework/seth"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/adapter/internal/evmbase"
	"github.com/smartcontractkit/safe-adapters/contracts"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

// Name is the backend identifier of this adapter.
const Name = "seth"

// TxDecoder decodes a transaction once it is mined. *seth.Client implements it.
type TxDecoder interface {
	DecodeTx(tx *types.Transaction) (*seth.DecodedTransaction, error)
}

// ABIRegistry receives the ABIs of bound contracts so the decoder can name their methods and
// events. *seth.ContractStore implements it.
type ABIRegistry interface {
	AddABI(name string, contractABI abi.ABI)
}

var _ adapter.EthAdapter = (*Adapter)(nil)

// Adapter implements adapter.EthAdapter on top of seth.
type Adapter struct {
	evmbase.Base

	decoder    TxDecoder
	registry   ABIRegistry
	transactor *bind.TransactOpts
}

// Option configures an Adapter.
type Option func(*options)

type options struct {
	transactor *bind.TransactOpts
	lggr       logger.Logger
}

// WithTransactor sets the signer used for writes and deployments. seth clients built in read-only
// mode hold no keys so the signer is supplied separately.
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

// New returns an adapter over c. c must come from a seth builder: the decoder needs both the
// underlying ethclient and the network config.
func New(c *seth.Client, opts ...Option) (*Adapter, error) {
	switch {
	case c == nil || c.Client == nil:
		return nil, fmt.Errorf("%w: seth client has no underlying ethclient", adapter.ErrInvalidClient)
	case c.Cfg == nil || c.Cfg.Network == nil:
		return nil, fmt.Errorf("%w: seth client has no network config", adapter.ErrInvalidClient)
	}

	var registry ABIRegistry
	if c.ContractStore != nil {
		registry = c.ContractStore
	}

	return NewWithDecoder(c.Client, c, registry, opts...), nil
}

// NewWithDecoder builds an adapter from the parts of a seth client. registry may be nil.
func NewWithDecoder(client evmbase.Client, decoder TxDecoder, registry ABIRegistry, opts ...Option) *Adapter {
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
		decoder:    decoder,
		registry:   registry,
		transactor: o.transactor,
	}
}

func (a *Adapter) Contract(desc contracts.Descriptor, addr common.Address) (adapter.Contract, error) {
	a.register(desc)

	return a.BindContract(desc, addr, evmbase.TransactorSend(a.transactor, a.confirm)), nil
}

func (a *Adapter) Deploy(
	ctx context.Context, desc contracts.Descriptor, args ...any,
) (common.Address, adapter.TransactionResult, error) {
	a.register(desc)

	return a.Base.Deploy(ctx, a.transactor, desc, a.confirm, args...)
}

func (a *Adapter) WaitForReceipt(ctx context.Context, res adapter.TransactionResult) (*types.Receipt, error) {
	return adapter.WaitReceipt(ctx, res)
}

// ABIName is the name a descriptor's ABI is registered under in seth.
func ABIName(desc contracts.Descriptor) string {
	return fmt.Sprintf("%s_v%s", desc.Type, desc.Version.String())
}

func (a *Adapter) register(desc contracts.Descriptor) {
	if a.registry == nil {
		return
	}
	a.registry.AddABI(ABIName(desc), desc.ABI())
}

// confirm starts waiting for tx in the background and returns a result whose Events channel
// receives exactly one Confirmation before being closed.
func (a *Adapter) confirm(ctx context.Context, tx *types.Transaction) adapter.TransactionResult {
	events := make(chan adapter.Confirmation, 1)

	go func() {
		defer close(events)
		events <- a.awaitDecoded(ctx, tx)
	}()

	return adapter.TransactionResult{Hash: tx.Hash(), Events: events}
}

func (a *Adapter) awaitDecoded(ctx context.Context, tx *types.Transaction) adapter.Confirmation {
	receipt, err := bind.WaitMined(ctx, a.Client, tx)
	if err != nil {
		return adapter.Confirmation{Err: fmt.Errorf("%s: wait for %s: %w", Name, tx.Hash().Hex(), err)}
	}

	decoded, err := a.decoder.DecodeTx(tx)
	if decoded != nil && decoded.Receipt != nil {
		receipt = decoded.Receipt
	}
	if err != nil {
		a.Lggr.Warnw("transaction decoded with error", "hash", tx.Hash().Hex(), "err", err)

		return adapter.Confirmation{Receipt: receipt, Err: fmt.Errorf("%s: decode %s: %w", Name, tx.Hash().Hex(), err)}
	}

	return adapter.Confirmation{Receipt: receipt}
}
