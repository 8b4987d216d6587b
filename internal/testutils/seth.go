package testutils

import (
	"sync"
	"testing"

	"github.com/smartcontractkit/chainlink-testing-framework/seth"
	"github.com/stretchr/testify/require"
)

// sethBuildMu serialises seth client construction, which (re)initialises seth's package logger.
var sethBuildMu sync.Mutex

// BuildSeth runs build while no other seth client is being built by this package.
func BuildSeth(t *testing.T, build func() (*seth.Client, error)) *seth.Client {
	t.Helper()

	sethBuildMu.Lock()
	defer sethBuildMu.Unlock()

	c, err := build()
	require.NoError(t, err)

	return c
}

// SethClient builds a read-only seth client on the HTTP endpoint of the chain.
func (c *SimChain) SethClient(t *testing.T) *seth.Client {
	t.Helper()

	return BuildSeth(t, func() (*seth.Client, error) {
		return seth.NewClientBuilder().
			WithRpcUrl(c.Client.URL()).
			WithGethWrappersFolders([]string{}).
			WithTracing(seth.TracingLevel_None, []string{seth.TraceOutput_Console}).
			WithReadOnlyMode().
			Build()
	})
}
