package evmbase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/contracts"
)

// WrapFunc turns a signed and sent transaction into the result shape of a backend.
type WrapFunc func(ctx context.Context, tx *types.Transaction) adapter.TransactionResult

// TransactorSend returns a SendFunc signing with a copy of opts bound to the call context. It
// returns nil when opts is nil so the contract is read-only.
func TransactorSend(opts *bind.TransactOpts, wrap WrapFunc) SendFunc {
	if opts == nil {
		return nil
	}

	return func(ctx context.Context, bound *bind.BoundContract, _ common.Address, data []byte) (adapter.TransactionResult, error) {
		tx, err := bound.RawTransact(withContext(ctx, opts), data)
		if err != nil {
			return adapter.TransactionResult{}, err
		}

		return wrap(ctx, tx), nil
	}
}

// Deploy creates desc with opts through go-ethereum's deployer and wraps the creation
// transaction.
func (b Base) Deploy(
	ctx context.Context, opts *bind.TransactOpts, desc contracts.Descriptor, wrap WrapFunc, args ...any,
) (common.Address, adapter.TransactionResult, error) {
	if opts == nil {
		return common.Address{}, adapter.TransactionResult{}, adapter.ErrNoSigner
	}
	if !desc.Deployable() {
		return common.Address{}, adapter.TransactionResult{}, fmt.Errorf("%s: %w", desc, contracts.ErrNotDeployable)
	}

	b.Lggr.Debugw("dispatch", "op", "Deploy", "contract", desc.String())

	addr, tx, _, err := bind.DeployContract(withContext(ctx, opts), desc.ABI(), desc.Bytecode(), b.Client, args...)
	if err != nil {
		return common.Address{}, adapter.TransactionResult{}, fmt.Errorf("%s: deploy %s: %w", b.Name, desc, err)
	}

	return addr, wrap(ctx, tx), nil
}

func withContext(ctx context.Context, opts *bind.TransactOpts) *bind.TransactOpts {
	cp := *opts
	cp.Context = ctx

	return &cp
}
