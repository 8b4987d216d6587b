package inspect

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/config"
	"github.com/smartcontractkit/safe-adapters/contracts"
	"github.com/smartcontractkit/safe-adapters/deployments"
	"github.com/smartcontractkit/safe-adapters/pkg/commands/flags"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

type fakeContract struct {
	adapter.Contract

	addr    common.Address
	desc    contracts.Descriptor
	outputs map[string][]any
}

func (f *fakeContract) Address() common.Address          { return f.addr }
func (f *fakeContract) Descriptor() contracts.Descriptor { return f.desc }

func (f *fakeContract) Call(_ context.Context, method string, _ ...any) ([]any, error) {
	out, ok := f.outputs[method]
	if !ok {
		return nil, errors.New("execution reverted")
	}

	return out, nil
}

type fakeAdapter struct {
	adapter.EthAdapter

	chainID  int64
	deployed bool
	outputs  map[string][]any
}

func (f *fakeAdapter) Backend() string { return "fake" }

func (f *fakeAdapter) GetNetwork(context.Context) (adapter.Network, error) {
	return adapter.NetworkFromChainID(big.NewInt(f.chainID)), nil
}

func (f *fakeAdapter) IsContractDeployed(context.Context, common.Address) (bool, error) {
	return f.deployed, nil
}

func (f *fakeAdapter) Contract(desc contracts.Descriptor, addr common.Address) (adapter.Contract, error) {
	return &fakeContract{addr: addr, desc: desc, outputs: f.outputs}, nil
}

var owner = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func safeOutputs() map[string][]any {
	return map[string][]any{
		"VERSION":      {"1.3.0"},
		"getOwners":    {[]common.Address{owner}},
		"getThreshold": {big.NewInt(1)},
		"nonce":        {big.NewInt(7)},
	}
}

func runInspect(t *testing.T, a adapter.EthAdapter, args ...string) (*Report, error) {
	t.Helper()

	root := &cobra.Command{Use: "root", SilenceUsage: true, SilenceErrors: true}
	flags.AddConnectionFlags(root)
	root.AddCommand(NewCommand(Config{
		Logger: logger.Test(t),
		Deps: &Deps{
			Dial: func(context.Context, config.Config, logger.Logger) (adapter.EthAdapter, error) {
				return a, nil
			},
		},
	}))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append([]string{
		"inspect", "--config", filepath.Join(t.TempDir(), "missing.yml"),
	}, args...))

	if err := root.ExecuteContext(t.Context()); err != nil {
		return nil, err
	}

	var report Report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &report))

	return &report, nil
}

func TestNewCommand(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{})

	assert.Equal(t, "inspect", cmd.Use)
	for _, name := range []string{"type", "version", "address"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "Safe", cmd.Flags().Lookup("type").DefValue)
	assert.Equal(t, contracts.DefaultVersion, cmd.Flags().Lookup("version").DefValue)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	explicit := common.HexToAddress("0x00000000000000000000000000000000000005af")

	tests := []struct {
		name        string
		giveAdapter *fakeAdapter
		giveArgs    []string
		want        Report
		wantErr     string
	}{
		{
			name:        "safe from the default book",
			giveAdapter: &fakeAdapter{chainID: 1, deployed: true, outputs: safeOutputs()},
			want: Report{
				Backend:  "fake",
				Contract: "Safe 1.3.0",
				Address:  "0xd9Db270c1B5E3Bd161E8c8503c55cEABeE709552",
				Deployed: true,
				Safe: &SafeState{
					Version:   "1.3.0",
					Owners:    []string{owner.Hex()},
					Threshold: "1",
					Nonce:     "7",
				},
			},
		},
		{
			name:        "explicit address",
			giveAdapter: &fakeAdapter{chainID: 1, deployed: true, outputs: safeOutputs()},
			giveArgs:    []string{"--address", explicit.Hex(), "-t", "SafeL2"},
			want: Report{
				Backend:  "fake",
				Contract: "SafeL2 1.3.0",
				Address:  explicit.Hex(),
				Deployed: true,
				Safe: &SafeState{
					Version:   "1.3.0",
					Owners:    []string{owner.Hex()},
					Threshold: "1",
					Nonce:     "7",
				},
			},
		},
		{
			name:        "not deployed skips the safe state",
			giveAdapter: &fakeAdapter{chainID: 1},
			want: Report{
				Backend:  "fake",
				Contract: "Safe 1.3.0",
				Address:  "0xd9Db270c1B5E3Bd161E8c8503c55cEABeE709552",
			},
		},
		{
			name:        "non safe contract",
			giveAdapter: &fakeAdapter{chainID: 1, deployed: true},
			giveArgs:    []string{"-t", "MultiSend", "-v", "1.4.1"},
			want: Report{
				Backend:  "fake",
				Contract: "MultiSend 1.4.1",
				Address:  "0x38869bf66a61cF6bDB996A6aE40D5853Fd43B526",
				Deployed: true,
			},
		},
		{
			name:        "unknown chain",
			giveAdapter: &fakeAdapter{chainID: 987654321},
			wantErr:     "has no chain selector",
		},
		{
			name:        "unknown contract version",
			giveAdapter: &fakeAdapter{chainID: 1},
			giveArgs:    []string{"-v", "9.9.9"},
			wantErr:     "contract not found",
		},
		{
			name:        "invalid address",
			giveAdapter: &fakeAdapter{chainID: 1},
			giveArgs:    []string{"--address", "0x1234"},
			wantErr:     "invalid address",
		},
		{
			name:        "safe state read fails",
			giveAdapter: &fakeAdapter{chainID: 1, deployed: true},
			wantErr:     "execution reverted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := runInspect(t, tt.giveAdapter, tt.giveArgs...)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.want.Backend, got.Backend)
			assert.Equal(t, tt.want.Contract, got.Contract)
			assert.Equal(t, tt.want.Address, got.Address)
			assert.Equal(t, tt.want.Deployed, got.Deployed)
			assert.Equal(t, tt.want.Safe, got.Safe)
			assert.Equal(t, "ethereum-mainnet", got.Network.Name)
			assert.Equal(t, 0, got.Network.ChainID.Cmp(big.NewInt(1)))
		})
	}
}

func TestInspect_CustomBook(t *testing.T) {
	t.Parallel()

	book := deployments.NewBook()
	safe := common.HexToAddress("0x00000000000000000000000000000000000000f1")
	tv := contracts.MustTypeAndVersion(contracts.Safe, "1.4.1")
	require.NoError(t, book.SaveDefault(tv, safe.Hex()))

	cfg := Config{Logger: logger.Test(t), Deps: &Deps{Book: func() *deployments.Book { return book }}}
	cfg.deps()

	report, err := inspect(t.Context(), cfg, &fakeAdapter{chainID: 1}, tv, "")
	require.NoError(t, err)
	assert.Equal(t, safe.Hex(), report.Address)
	assert.False(t, report.Deployed)
	assert.Nil(t, report.Safe)
}
