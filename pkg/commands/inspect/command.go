package inspect

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/bindings"
	"github.com/smartcontractkit/safe-adapters/contracts"
	"github.com/smartcontractkit/safe-adapters/pkg/commands/flags"
)

// Report is the YAML document printed by the inspect command.
type Report struct {
	Backend  string          `yaml:"backend"`
	Network  adapter.Network `yaml:"network"`
	Contract string          `yaml:"contract"`
	Address  string          `yaml:"address"`
	Deployed bool            `yaml:"deployed"`
	Safe     *SafeState      `yaml:"safe,omitempty"`
}

// SafeState is the on-chain state of an inspected Safe.
type SafeState struct {
	Version   string   `yaml:"version"`
	Owners    []string `yaml:"owners"`
	Threshold string   `yaml:"threshold"`
	Nonce     string   `yaml:"nonce"`
}

// NewCommand creates the inspect command.
//
// Usage:
//
//	rootCmd.AddCommand(inspect.NewCommand(inspect.Config{Logger: lggr}))
func NewCommand(cfg Config) *cobra.Command {
	cfg.deps()

	var (
		contractType string
		version      string
		address      string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Resolve a Safe contract on the configured network",
		Long: "Resolves a contract type and version through the configured backend and prints the network, " +
			"its address and whether it is deployed. For Safe singletons and proxies the on-chain state is " +
			"printed as well.",
		Example: "  safe-adapter inspect -n sepolia -t SafeProxyFactory -v 1.4.1\n" +
			"  safe-adapter inspect --rpc-url http://localhost:8545 -t Safe --address 0x...",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appCfg, err := flags.LoadConfig(cmd)
			if err != nil {
				return err
			}

			tv, err := contracts.NewTypeAndVersion(contracts.ContractType(contractType), version)
			if err != nil {
				return err
			}

			a, err := cfg.Deps.Dial(cmd.Context(), *appCfg, cfg.Logger)
			if err != nil {
				return err
			}

			report, err := inspect(cmd.Context(), cfg, a, tv, address)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(report)
			if err != nil {
				return fmt.Errorf("failed to marshal report: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)

			return err
		},
	}

	cmd.Flags().StringVarP(&contractType, "type", "t", string(contracts.Safe), "Contract type")
	cmd.Flags().StringVarP(&version, "version", "v", contracts.DefaultVersion, "Contract version")
	cmd.Flags().StringVar(&address, "address", "", "Contract address, defaults to the known deployment")

	return cmd
}

func inspect(
	ctx context.Context, cfg Config, a adapter.EthAdapter, tv contracts.TypeAndVersion, address string,
) (*Report, error) {
	network, err := a.GetNetwork(ctx)
	if err != nil {
		return nil, err
	}

	desc, err := contracts.GetByTypeAndVersion(tv)
	if err != nil {
		return nil, err
	}

	var addr common.Address
	if address != "" {
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("invalid address %q", address)
		}
		addr = common.HexToAddress(address)
	} else if addr, err = cfg.Deps.Book().Locate(ctx, a, tv); err != nil {
		return nil, err
	}

	cfg.Logger.Debugw("inspecting contract", "contract", tv.String(), "address", addr.Hex())

	deployed, err := a.IsContractDeployed(ctx, addr)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Backend:  a.Backend(),
		Network:  network,
		Contract: tv.String(),
		Address:  addr.Hex(),
		Deployed: deployed,
	}
	if !deployed || (tv.Type != contracts.Safe && tv.Type != contracts.SafeL2) {
		return report, nil
	}

	c, err := a.Contract(desc, addr)
	if err != nil {
		return nil, err
	}
	if report.Safe, err = readSafe(ctx, c); err != nil {
		return nil, err
	}

	return report, nil
}

func readSafe(ctx context.Context, c adapter.Contract) (*SafeState, error) {
	safe, err := bindings.NewSafe(c)
	if err != nil {
		return nil, err
	}

	version, err := safe.Version(ctx)
	if err != nil {
		return nil, err
	}
	owners, err := safe.GetOwners(ctx)
	if err != nil {
		return nil, err
	}
	threshold, err := safe.GetThreshold(ctx)
	if err != nil {
		return nil, err
	}
	nonce, err := safe.Nonce(ctx)
	if err != nil {
		return nil, err
	}

	state := &SafeState{
		Version:   version,
		Owners:    make([]string, 0, len(owners)),
		Threshold: bigString(threshold),
		Nonce:     bigString(nonce),
	}
	for _, o := range owners {
		state.Owners = append(state.Owners, o.Hex())
	}

	return state, nil
}

// bigString formats nil as zero.
func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}

	return v.String()
}
