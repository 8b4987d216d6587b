// Package catalog provides the CLI command listing the embedded contract descriptors.
package catalog

import (
	"errors"
	"fmt"

	chainsel "github.com/smartcontractkit/chain-selectors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/safe-adapters/contracts"
	"github.com/smartcontractkit/safe-adapters/deployments"
)

// Entry describes one embedded contract version.
type Entry struct {
	Type       string `yaml:"type"`
	Version    string `yaml:"version"`
	Deployable bool   `yaml:"deployable"`
	Address    string `yaml:"address,omitempty"`
}

// NewCommand creates the contracts command.
func NewCommand() *cobra.Command {
	var (
		contractType string
		showABI      bool
	)

	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "List the supported contract types and versions",
		Long: "Lists every embedded contract descriptor with its canonical deployment address. With --abi and " +
			"a single --type the embedded ABI of each version is printed instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showABI && contractType == "" {
				return errors.New("--abi requires --type")
			}

			var entries []Entry
			book := deployments.DefaultBook()

			for _, d := range contracts.All() {
				if contractType != "" && string(d.Type) != contractType {
					continue
				}
				if showABI {
					fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", d, d.RawABI())
					continue
				}

				e := Entry{Type: string(d.Type), Version: d.Version.String(), Deployable: d.Deployable()}
				if addr, err := book.Address(chainsel.ETHEREUM_MAINNET.Selector, d.TypeAndVersion); err == nil {
					e.Address = addr.Hex()
				}
				entries = append(entries, e)
			}

			if showABI {
				return nil
			}
			if len(entries) == 0 {
				return fmt.Errorf("%w: %q", contracts.ErrContractNotFound, contractType)
			}

			out, err := yaml.Marshal(entries)
			if err != nil {
				return fmt.Errorf("failed to marshal contracts: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)

			return err
		},
	}

	cmd.Flags().StringVarP(&contractType, "type", "t", "", "Only list this contract type")
	cmd.Flags().BoolVar(&showABI, "abi", false, "Print the embedded ABI JSON")

	return cmd
}
