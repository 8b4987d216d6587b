package adapter

import (
	"math/big"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

// Network describes the chain an adapter is connected to. Selector and Name are empty when the
// chain id is not registered in chain-selectors.
type Network struct {
	ChainID  *big.Int `json:"chainId" yaml:"chainId"`
	Selector uint64   `json:"selector,omitempty" yaml:"selector,omitempty"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
}

// NetworkFromChainID builds a Network and fills the selector and name for known EVM chains.
func NetworkFromChainID(chainID *big.Int) Network {
	n := Network{ChainID: new(big.Int).Set(chainID)}

	details, err := chainsel.GetChainDetailsByChainIDAndFamily(chainID.String(), chainsel.FamilyEVM)
	if err != nil {
		return n
	}
	n.Selector = details.ChainSelector
	n.Name = details.ChainName

	return n
}

// Known reports whether the chain is registered in chain-selectors.
func (n Network) Known() bool {
	return n.Selector != 0
}
