// Package zksync adapts the zksync2-go public and wallet clients to adapter.EthAdapter.
//
// Reads go through the public client. Writes are sent by the wallet client and return a
// TransactionResult whose Wait function resolves the zkSync receipt, normalised to the embedded
// go-ethereum receipt.
package zksync

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	zkAccounts "github.com/zksync-sdk/zksync2-go/accounts"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/adapter/internal/evmbase"
	"github.com/smartcontractkit/safe-adapters/contracts"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

// Name is the backend identifier of this adapter.
const Name = "zksync"

// receiptPollInterval is used when no zkSync client is available to wait for receipts.
const receiptPollInterval = 500 * time.Millisecond

var _ adapter.EthAdapter = (*Adapter)(nil)

// Adapter implements adapter.EthAdapter with zksync2-go.
type Adapter struct {
	evmbase.Base

	zk     ReceiptWaiter
	wallet WalletClient
}

// Option configures an Adapter.
type Option func(*options)

type options struct {
	lggr logger.Logger
}

// WithLogger sets the logger.
func WithLogger(lggr logger.Logger) Option {
	return func(o *options) {
		o.lggr = lggr
	}
}

// New returns an adapter over kc. kc.Public is required.
func New(kc KeyedClient, opts ...Option) (*Adapter, error) {
	if kc.Public == nil {
		return nil, fmt.Errorf("%w: zksync keyed client has no public client", adapter.ErrInvalidClient)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var from common.Address
	if kc.Wallet != nil {
		from = kc.Wallet.Address()
	}

	return &Adapter{
		Base:   evmbase.NewBase(Name, kc.Public, from, o.lggr),
		zk:     kc.ZkSync,
		wallet: kc.Wallet,
	}, nil
}

func (a *Adapter) Contract(desc contracts.Descriptor, addr common.Address) (adapter.Contract, error) {
	var send evmbase.SendFunc
	if a.wallet != nil {
		send = a.send
	}

	return a.BindContract(desc, addr, send), nil
}

// Deploy creates desc through the zkSync contract deployer. The descriptor must carry bytecode
// compiled for zkSync. The call blocks until the deployment is mined because the address is only
// known from the receipt; the returned result carries the resolved receipt.
func (a *Adapter) Deploy(
	ctx context.Context, desc contracts.Descriptor, args ...any,
) (common.Address, adapter.TransactionResult, error) {
	if a.wallet == nil {
		return common.Address{}, adapter.TransactionResult{}, adapter.ErrNoSigner
	}
	if !desc.Deployable() {
		return common.Address{}, adapter.TransactionResult{}, fmt.Errorf("%s: %w", desc, contracts.ErrNotDeployable)
	}

	calldata, err := desc.Pack("", args...)
	if err != nil {
		return common.Address{}, adapter.TransactionResult{}, err
	}

	a.Lggr.Debugw("dispatch", "op", "Deploy", "contract", desc.String())

	hash, err := a.wallet.DeployWithCreate(&zkAccounts.TransactOpts{Context: ctx}, zkAccounts.CreateTransaction{
		Bytecode: desc.Bytecode(),
		Calldata: calldata,
	})
	if err != nil {
		return common.Address{}, adapter.TransactionResult{}, fmt.Errorf("%s: deploy %s: %w", Name, desc, err)
	}

	receipt, err := a.waitFunc(hash)(ctx)
	if err != nil {
		return common.Address{}, adapter.TransactionResult{}, err
	}

	return receipt.ContractAddress, adapter.TransactionResult{Hash: hash, Receipt: receipt}, nil
}

func (a *Adapter) WaitForReceipt(ctx context.Context, res adapter.TransactionResult) (*types.Receipt, error) {
	return adapter.WaitReceipt(ctx, res)
}

func (a *Adapter) send(ctx context.Context, _ *bind.BoundContract, to common.Address, data []byte) (adapter.TransactionResult, error) {
	hash, err := a.wallet.SendTransaction(ctx, &zkAccounts.Transaction{
		To:   &to,
		Data: data,
	})
	if err != nil {
		return adapter.TransactionResult{}, err
	}

	return adapter.TransactionResult{Hash: hash, Wait: a.waitFunc(hash)}, nil
}

// waitFunc resolves the receipt of hash through the zkSync client, or by polling the public
// client when none is configured.
func (a *Adapter) waitFunc(hash common.Hash) func(ctx context.Context) (*types.Receipt, error) {
	return func(ctx context.Context) (*types.Receipt, error) {
		if a.zk == nil {
			return evmbase.WaitMinedWithInterval(ctx, receiptPollInterval, a.Client, hash)
		}

		zkReceipt, err := a.zk.WaitMined(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("%s: wait for %s: %w", Name, hash.Hex(), err)
		}

		return &zkReceipt.Receipt, nil
	}
}
