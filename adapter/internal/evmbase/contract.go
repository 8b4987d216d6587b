package evmbase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/contracts"
)

// SendFunc submits calldata to a contract and returns the backend specific result.
type SendFunc func(ctx context.Context, bound *bind.BoundContract, to common.Address, data []byte) (adapter.TransactionResult, error)

var _ adapter.Contract = (*Contract)(nil)

// Contract binds a descriptor to an address. Reads and gas estimation go through the Base
// client; writes are delegated to send. A nil send makes the contract read-only.
type Contract struct {
	base    Base
	desc    contracts.Descriptor
	address common.Address
	bound   *bind.BoundContract
	send    SendFunc
}

// BindContract resolves desc at addr.
func (b Base) BindContract(desc contracts.Descriptor, addr common.Address, send SendFunc) *Contract {
	b.Lggr.Debugw("binding contract", "contract", desc.String(), "address", addr.Hex())

	return &Contract{
		base:    b,
		desc:    desc,
		address: addr,
		bound:   bind.NewBoundContract(addr, desc.ABI(), b.Client, b.Client, b.Client),
		send:    send,
	}
}

func (c *Contract) Address() common.Address {
	return c.address
}

func (c *Contract) Descriptor() contracts.Descriptor {
	return c.desc
}

// Bound exposes the underlying go-ethereum binding.
func (c *Contract) Bound() *bind.BoundContract {
	return c.bound
}

func (c *Contract) Encode(method string, args ...any) ([]byte, error) {
	return c.desc.Pack(method, args...)
}

func (c *Contract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	c.base.Lggr.Debugw("dispatch", "op", "Call", "contract", c.desc.String(), "method", method)

	var out []any
	opts := &bind.CallOpts{Context: ctx, From: c.base.From}
	if err := c.bound.Call(opts, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s: call %s.%s at %s: %w", c.base.Name, c.desc.Type, method, c.address.Hex(), err)
	}

	return out, nil
}

func (c *Contract) EstimateGas(ctx context.Context, method string, args ...any) (uint64, error) {
	data, err := c.Encode(method, args...)
	if err != nil {
		return 0, err
	}

	gas, err := c.base.Client.EstimateGas(ctx, ethereum.CallMsg{
		From: c.base.From,
		To:   &c.address,
		Data: data,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: estimate gas %s.%s: %w", c.base.Name, c.desc.Type, method, err)
	}

	return gas, nil
}

func (c *Contract) Transact(ctx context.Context, method string, args ...any) (adapter.TransactionResult, error) {
	if c.send == nil {
		return adapter.TransactionResult{}, adapter.ErrNoSigner
	}

	data, err := c.Encode(method, args...)
	if err != nil {
		return adapter.TransactionResult{}, err
	}

	c.base.Lggr.Debugw("dispatch", "op", "Transact", "contract", c.desc.String(), "method", method)

	res, err := c.send(ctx, c.bound, c.address, data)
	if err != nil {
		return adapter.TransactionResult{}, fmt.Errorf("%s: transact %s.%s: %w", c.base.Name, c.desc.Type, method, err)
	}

	return res, nil
}
