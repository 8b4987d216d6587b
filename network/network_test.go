package network_test

import (
	"testing"

	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/safe-adapters/network"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		giveName    string
		giveKey     string
		wantChainID uint64
		wantURL     string
		wantZkSync  bool
		wantErr     error
	}{
		{name: "mainnet", giveName: "mainnet", giveKey: "abc", wantChainID: 1, wantURL: "https://mainnet.infura.io/v3/abc"},
		{name: "sepolia case-insensitive", giveName: "Sepolia", giveKey: "abc", wantChainID: 11155111, wantURL: "https://sepolia.infura.io/v3/abc"},
		{name: "gnosis does not need a key", giveName: "gnosis", wantChainID: 100, wantURL: "https://rpc.gnosischain.com"},
		{name: "zksync", giveName: "zksync", wantChainID: 324, wantURL: "https://mainnet.era.zksync.io", wantZkSync: true},
		{name: "zksync sepolia", giveName: "zksync-sepolia", wantChainID: 300, wantURL: "https://sepolia.era.zksync.dev", wantZkSync: true},
		{name: "missing key", giveName: "goerli", wantErr: network.ErrMissingAPIKey},
		{name: "unknown", giveName: "moonbase", wantErr: network.ErrUnknownNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n, err := network.Lookup(tt.giveName)
			if err == nil {
				var url string
				url, err = n.RPCURL(tt.giveKey)
				if err == nil {
					assert.Equal(t, tt.wantURL, url)
				}
			}
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantChainID, n.ChainID)
			assert.Equal(t, tt.wantZkSync, n.IsZkSync())
			assert.Equal(t, int64(tt.wantChainID), n.ChainIDBig().Int64())
		})
	}
}

func TestNetwork_Selector(t *testing.T) {
	t.Parallel()

	n, err := network.Lookup("mainnet")
	require.NoError(t, err)

	sel, err := n.Selector()
	require.NoError(t, err)
	assert.Equal(t, chainsel.ETHEREUM_MAINNET.Selector, sel)

	n, err = network.LookupByChainID(chainsel.ETHEREUM_TESTNET_SEPOLIA.EvmChainID)
	require.NoError(t, err)
	assert.Equal(t, "sepolia", n.Name)

	_, err = network.LookupByChainID(42)
	require.ErrorIs(t, err, network.ErrUnknownNetwork)
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"gnosis", "goerli", "mainnet", "sepolia", "zksync", "zksync-sepolia"}, network.Names())
}
