// Package network resolves the named networks the adapters are commonly pointed at into chain
// metadata and RPC URLs.
package network

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"

	chainsel "github.com/smartcontractkit/chain-selectors"
)

var (
	ErrUnknownNetwork = errors.New("unknown network")
	ErrMissingAPIKey  = errors.New("missing Infura API key")
)

// Network is a named EVM network.
type Network struct {
	Name    string
	ChainID uint64
	// infura is true when the RPC is hosted by Infura and needs an API key.
	infura bool
	// publicRPC is used when the network is not served through Infura.
	publicRPC string
}

var networks = map[string]Network{
	"mainnet":        {Name: "mainnet", ChainID: 1, infura: true},
	"goerli":         {Name: "goerli", ChainID: 5, infura: true},
	"sepolia":        {Name: "sepolia", ChainID: 11155111, infura: true},
	"gnosis":         {Name: "gnosis", ChainID: 100, publicRPC: "https://rpc.gnosischain.com"},
	"zksync":         {Name: "zksync", ChainID: 324, publicRPC: "https://mainnet.era.zksync.io"},
	"zksync-sepolia": {Name: "zksync-sepolia", ChainID: 300, publicRPC: "https://sepolia.era.zksync.dev"},
}

// Lookup returns the network registered under name. Names are case-insensitive.
func Lookup(name string) (Network, error) {
	n, ok := networks[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}

	return n, nil
}

// LookupByChainID returns the network with the given chain id.
func LookupByChainID(chainID uint64) (Network, error) {
	for _, n := range networks {
		if n.ChainID == chainID {
			return n, nil
		}
	}

	return Network{}, fmt.Errorf("%w: chain id %d", ErrUnknownNetwork, chainID)
}

// Names returns the registered network names in sorted order.
func Names() []string {
	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// ChainIDBig returns the chain id as a big.Int.
func (n Network) ChainIDBig() *big.Int {
	return new(big.Int).SetUint64(n.ChainID)
}

// Selector returns the chain-selectors selector of the network.
func (n Network) Selector() (uint64, error) {
	details, err := chainsel.GetChainDetailsByChainIDAndFamily(fmt.Sprint(n.ChainID), chainsel.FamilyEVM)
	if err != nil {
		return 0, fmt.Errorf("no chain selector for network %s: %w", n.Name, err)
	}

	return details.ChainSelector, nil
}

// IsZkSync reports whether the network runs the zkSync VM.
func (n Network) IsZkSync() bool {
	return n.ChainID == 324 || n.ChainID == 300
}

// RPCURL returns the RPC endpoint of the network. Infura hosted networks resolve to
// https://<network>.infura.io/v3/<infuraKey> and fail with ErrMissingAPIKey without a key.
func (n Network) RPCURL(infuraKey string) (string, error) {
	if !n.infura {
		return n.publicRPC, nil
	}
	if infuraKey == "" {
		return "", fmt.Errorf("%w for network %s", ErrMissingAPIKey, n.Name)
	}

	return fmt.Sprintf("https://%s.infura.io/v3/%s", n.Name, infuraKey), nil
}
