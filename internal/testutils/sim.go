// Package testutils provides a simulated go-ethereum chain and helpers shared by the adapter
// tests.
package testutils

import (
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/eth/ethconfig"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/node"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/smartcontractkit/freeport"
	"github.com/stretchr/testify/require"
)

var (
	// SimChainID is the chain id of every simulated chain.
	SimChainID = params.AllDevChainProtocolChanges.ChainID

	prefundAmountWei = new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(params.Ether))
)

// SimClient wraps a simulated backend. It satisfies the go-ethereum client interface used by the
// adapters and also exposes block production.
type SimClient struct {
	mu sync.Mutex

	simulated.Client
	sim *simulated.Backend
	url string
}

// NewSimClient wraps sim. url is the HTTP RPC endpoint of the simulated node, empty when the
// node serves no HTTP.
func NewSimClient(t *testing.T, sim *simulated.Backend, url string) *SimClient {
	t.Helper()

	require.NotNil(t, sim, "simulated backend must not be nil")

	return &SimClient{
		sim:    sim,
		Client: sim.Client(),
		url:    url,
	}
}

// URL returns the HTTP RPC endpoint of the simulated node.
func (b *SimClient) URL() string {
	return b.url
}

// Commit seals a block with the pending transactions.
func (b *SimClient) Commit() common.Hash {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sim.Commit()
}

// EthClient returns an *ethclient.Client connected to the HTTP endpoint of the simulated node. It
// is what the seth and zksync clients expect to wrap.
func (b *SimClient) EthClient(t *testing.T) *ethclient.Client {
	t.Helper()

	return ethclient.NewClient(b.RPCClient(t))
}

// RPCClient dials the HTTP endpoint of the simulated node. The connection is closed when the
// test ends.
func (b *SimClient) RPCClient(t *testing.T) *rpc.Client {
	t.Helper()

	require.NotEmpty(t, b.url, "simulated node serves no HTTP endpoint")

	c, err := rpc.DialContext(t.Context(), b.url)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c
}

// SimChainConfig configures NewSimChain.
type SimChainConfig struct {
	// NumAdditionalAccounts is the number of funded accounts created next to the deployer.
	NumAdditionalAccounts uint
	// BlockTime enables automatic block production. Zero means blocks are only produced by
	// Commit.
	BlockTime time.Duration
}

// SimChain is a funded simulated chain.
type SimChain struct {
	Client   *SimClient
	Deployer *bind.TransactOpts
	Users    []*bind.TransactOpts
}

// NewSimChain starts a simulated chain with a funded deployer. The backend is closed when the
// test ends.
func NewSimChain(t *testing.T, cfg SimChainConfig) *SimChain {
	t.Helper()

	deployer := NewTransactor(t)
	genesis := types.GenesisAlloc{
		deployer.From: {Balance: prefundAmountWei},
	}

	users := make([]*bind.TransactOpts, 0, cfg.NumAdditionalAccounts)
	for range cfg.NumAdditionalAccounts {
		user := NewTransactor(t)
		users = append(users, user)
		genesis[user.From] = types.Account{Balance: prefundAmountWei}
	}

	port := freeport.GetOne(t)
	backend := simulated.NewBackend(genesis, simulated.WithBlockGasLimit(50000000), withHTTP(port))
	backend.Commit()
	t.Cleanup(func() {
		_ = backend.Close()
	})

	if cfg.BlockTime > 0 {
		startAutoMine(t, backend, cfg.BlockTime)
	}

	return &SimChain{
		Client:   NewSimClient(t, backend, fmt.Sprintf("http://127.0.0.1:%d", port)),
		Deployer: deployer,
		Users:    users,
	}
}

// withHTTP serves the eth, net and web3 namespaces of the simulated node over HTTP on port.
func withHTTP(port int) func(*node.Config, *ethconfig.Config) {
	return func(nodeConf *node.Config, _ *ethconfig.Config) {
		nodeConf.HTTPHost = "127.0.0.1"
		nodeConf.HTTPPort = port
		nodeConf.HTTPModules = []string{"eth", "net", "web3"}
		nodeConf.HTTPVirtualHosts = []string{"*"}
	}
}

// NewTransactor returns a transactor for a random key on the simulated chain id.
func NewTransactor(t *testing.T) *bind.TransactOpts {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	transactor, err := bind.NewKeyedTransactorWithChainID(key, SimChainID)
	require.NoError(t, err)

	return transactor
}

// startAutoMine commits a block every blockTime until the test is done.
func startAutoMine(t *testing.T, backend *simulated.Backend, blockTime time.Duration) {
	t.Helper()

	ctx := t.Context()
	ticker := time.NewTicker(blockTime)
	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				backend.Commit()
			case <-ctx.Done():
				return
			}
		}
	}()
}
