package testutils

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/safe-adapters/contracts"
)

// StubBytecode is creation code for a contract whose runtime answers every call with the 32 byte
// word 1. Any uint256, bool, address or bytes32 return value therefore decodes to 1/true.
var StubBytecode = common.FromHex(
	// init: CODECOPY(0, 12, 10) RETURN(0, 10)
	"600a600c600039600a6000f3" +
		// runtime: MSTORE(0, 1) RETURN(0, 32)
		"600160005260206000f3",
)

// StubDescriptor returns the real ABI of contract type t at version with StubBytecode as its
// creation code, so the ABI can be deployed and exercised on a simulated chain.
func StubDescriptor(t *testing.T, ct contracts.ContractType, version string) contracts.Descriptor {
	t.Helper()

	orig, err := contracts.Get(ct, version)
	require.NoError(t, err)

	desc, err := contracts.NewDescriptor(orig.TypeAndVersion, orig.RawABI(), StubBytecode)
	require.NoError(t, err)

	return desc
}

// DeployStub deploys StubBytecode from the chain deployer and waits until it is mined.
func (c *SimChain) DeployStub(t *testing.T) common.Address {
	t.Helper()

	addr, tx, _, err := bind.DeployContract(c.Deployer, abi.ABI{}, StubBytecode, c.Client)
	require.NoError(t, err)
	c.Client.Commit()

	receipt, err := bind.WaitMined(t.Context(), c.Client, tx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), receipt.Status)

	return addr
}
