package geth_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/adapter/geth"
	"github.com/smartcontractkit/safe-adapters/contracts"
	"github.com/smartcontractkit/safe-adapters/internal/testutils"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

func TestAdapter_ReadOnly(t *testing.T) {
	t.Parallel()

	chain := testutils.NewSimChain(t, testutils.SimChainConfig{})
	a := geth.New(chain.Client, geth.WithLogger(logger.Test(t)))

	assert.Equal(t, "geth", a.Backend())

	id, err := a.GetChainID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, testutils.SimChainID, id)

	network, err := a.GetNetwork(t.Context())
	require.NoError(t, err)
	assert.Equal(t, testutils.SimChainID.Int64(), network.ChainID.Int64())

	bal, err := a.GetBalance(t.Context(), chain.Deployer.From)
	require.NoError(t, err)
	assert.Positive(t, bal.Sign())

	nonce, err := a.GetNonce(t.Context(), chain.Deployer.From)
	require.NoError(t, err)
	assert.Zero(t, nonce)

	_, ok := a.GetSignerAddress()
	assert.False(t, ok)

	deployed, err := a.IsContractDeployed(t.Context(), chain.Deployer.From)
	require.NoError(t, err)
	assert.False(t, deployed)

	desc := contracts.MustGet(contracts.Safe, "1.3.0")
	c, err := a.Contract(desc, common.HexToAddress("0x01"))
	require.NoError(t, err)
	_, err = c.Transact(t.Context(), "approveHash", [32]byte{})
	require.ErrorIs(t, err, adapter.ErrNoSigner)

	_, _, err = a.Deploy(t.Context(), contracts.MustGet(contracts.SignMessageLib, "1.3.0"))
	require.ErrorIs(t, err, adapter.ErrNoSigner)
}

func TestAdapter_DeployAndResolve(t *testing.T) {
	t.Parallel()

	chain := testutils.NewSimChain(t, testutils.SimChainConfig{BlockTime: 50 * time.Millisecond})
	a := geth.New(chain.Client, geth.WithTransactor(chain.Deployer), geth.WithLogger(logger.Test(t)))

	signer, ok := a.GetSignerAddress()
	require.True(t, ok)
	assert.Equal(t, chain.Deployer.From, signer)

	desc := contracts.MustGet(contracts.SignMessageLib, "1.3.0")
	addr, res, err := a.Deploy(t.Context(), desc)
	require.NoError(t, err)
	require.NotNil(t, res.Response, "geth results carry a response object")

	receipt, err := a.WaitForReceipt(t.Context(), res)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, addr, receipt.ContractAddress)

	tx, err := a.GetTransaction(t.Context(), res.Hash)
	require.NoError(t, err)
	assert.Equal(t, res.Hash, tx.Hash())

	c, err := a.Contract(desc, addr)
	require.NoError(t, err)
	assert.Equal(t, addr, c.Address())
	assert.Equal(t, desc.TypeAndVersion, c.Descriptor().TypeAndVersion)

	deployed, err := a.IsContractDeployed(t.Context(), c.Address())
	require.NoError(t, err)
	assert.True(t, deployed)
}

func TestAdapter_CallAndTransact(t *testing.T) {
	t.Parallel()

	chain := testutils.NewSimChain(t, testutils.SimChainConfig{BlockTime: 50 * time.Millisecond})
	a := geth.New(chain.Client, geth.WithTransactor(chain.Deployer))

	desc := testutils.StubDescriptor(t, contracts.Safe, "1.3.0")
	addr, res, err := a.Deploy(t.Context(), desc)
	require.NoError(t, err)
	_, err = a.WaitForReceipt(t.Context(), res)
	require.NoError(t, err)

	c, err := a.Contract(desc, addr)
	require.NoError(t, err)

	out, err := c.Call(t.Context(), "getThreshold")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, big.NewInt(1), out[0])

	out, err = c.Call(t.Context(), "isOwner", chain.Deployer.From)
	require.NoError(t, err)
	assert.Equal(t, true, out[0])

	gas, err := c.EstimateGas(t.Context(), "approveHash", [32]byte{1})
	require.NoError(t, err)
	assert.Positive(t, gas)

	res, err = c.Transact(t.Context(), "approveHash", [32]byte{1})
	require.NoError(t, err)
	receipt, err := adapter.WaitReceipt(t.Context(), res)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, res.Hash, receipt.TxHash)

	_, err = c.Call(t.Context(), "noSuchMethod")
	require.ErrorContains(t, err, "noSuchMethod")

	_, err = c.Encode("approveHash", "not bytes32")
	require.ErrorContains(t, err, "failed to pack Safe.approveHash")
}

func TestAdapter_DeployNotDeployable(t *testing.T) {
	t.Parallel()

	chain := testutils.NewSimChain(t, testutils.SimChainConfig{})
	a := geth.New(chain.Client, geth.WithTransactor(chain.Deployer))

	_, _, err := a.Deploy(t.Context(), contracts.MustGet(contracts.Safe, "1.3.0"))
	require.ErrorIs(t, err, contracts.ErrNotDeployable)
}
