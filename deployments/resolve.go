package deployments

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/contracts"
)

// Locate returns the address of tv on the chain the adapter is connected to.
func (b *Book) Locate(ctx context.Context, a adapter.EthAdapter, tv contracts.TypeAndVersion) (common.Address, error) {
	network, err := a.GetNetwork(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if !network.Known() {
		return common.Address{}, fmt.Errorf("%w: chain id %s has no chain selector", ErrInvalidChainSelector, network.ChainID)
	}

	return b.Address(network.Selector, tv)
}

// Resolve binds the recorded deployment of tv on the chain of the adapter.
func (b *Book) Resolve(ctx context.Context, a adapter.EthAdapter, tv contracts.TypeAndVersion) (adapter.Contract, error) {
	desc, err := contracts.GetByTypeAndVersion(tv)
	if err != nil {
		return nil, err
	}

	addr, err := b.Locate(ctx, a, tv)
	if err != nil {
		return nil, err
	}

	return a.Contract(desc, addr)
}
