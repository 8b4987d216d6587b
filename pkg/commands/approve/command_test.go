package approve

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/adapter/geth"
	"github.com/smartcontractkit/safe-adapters/config"
	"github.com/smartcontractkit/safe-adapters/internal/testutils"
	"github.com/smartcontractkit/safe-adapters/pkg/commands/flags"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

func newRoot(t *testing.T, dial DialFunc) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	root := &cobra.Command{Use: "root", SilenceUsage: true, SilenceErrors: true}
	flags.AddConnectionFlags(root)
	root.AddCommand(NewCommand(Config{Logger: logger.Test(t), Dial: dial}))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	return root, &out
}

func TestNewCommand(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{})

	assert.Equal(t, "approve-hash", cmd.Use)
	for _, name := range []string{"safe", "hash", "version"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestApproveHash_OnSimulatedChain(t *testing.T) {
	t.Parallel()

	chain := testutils.NewSimChain(t, testutils.SimChainConfig{BlockTime: 50 * time.Millisecond})
	safe := chain.DeployStub(t)
	hash := common.HexToHash("0x5afe")

	root, out := newRoot(t, func(context.Context, config.Config, logger.Logger) (adapter.EthAdapter, error) {
		return geth.New(chain.Client, geth.WithTransactor(chain.Deployer)), nil
	})
	root.SetArgs([]string{
		"approve-hash",
		"--config", filepath.Join(t.TempDir(), "missing.yml"),
		"--safe", safe.Hex(),
		"--hash", hash.Hex(),
	})
	require.NoError(t, root.ExecuteContext(t.Context()))

	var got Result
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "geth", got.Backend)
	assert.Equal(t, safe.Hex(), got.Safe)
	assert.Equal(t, hash.Hex(), got.Hash)
	assert.Equal(t, uint64(1), got.Status)
	assert.NotZero(t, got.Block)
	assert.NotEmpty(t, got.Transaction)
}

func TestApproveHash_Errors(t *testing.T) {
	t.Parallel()

	validSafe := common.HexToAddress("0x00000000000000000000000000000000000005af").Hex()
	validHash := common.HexToHash("0x01").Hex()
	errDial := errors.New("dial failed")

	tests := []struct {
		name     string
		giveArgs []string
		wantErr  string
	}{
		{
			name:     "missing safe",
			giveArgs: []string{"--hash", validHash},
			wantErr:  `required flag(s) "safe" not set`,
		},
		{
			name:     "missing hash",
			giveArgs: []string{"--safe", validSafe},
			wantErr:  `required flag(s) "hash" not set`,
		},
		{
			name:     "invalid safe",
			giveArgs: []string{"--safe", "0x1234", "--hash", validHash},
			wantErr:  "invalid safe address",
		},
		{
			name:     "short hash",
			giveArgs: []string{"--safe", validSafe, "--hash", "0x1234"},
			wantErr:  "want 32 bytes",
		},
		{
			name:     "unknown version",
			giveArgs: []string{"--safe", validSafe, "--hash", validHash, "-v", "0.9.0"},
			wantErr:  "contract not found",
		},
		{
			name:     "dial error",
			giveArgs: []string{"--safe", validSafe, "--hash", validHash},
			wantErr:  errDial.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root, _ := newRoot(t, func(context.Context, config.Config, logger.Logger) (adapter.EthAdapter, error) {
				return nil, errDial
			})
			root.SetArgs(append([]string{
				"approve-hash", "--config", filepath.Join(t.TempDir(), "missing.yml"),
			}, tt.giveArgs...))

			require.ErrorContains(t, root.ExecuteContext(t.Context()), tt.wantErr)
		})
	}
}
