// Package flags holds the connection flags shared by the CLI commands and the logic that merges
// them over the loaded configuration.
package flags

import (
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/safe-adapters/config"
)

const (
	Config    = "config"
	Backend   = "backend"
	Network   = "network"
	RPCURL    = "rpc-url"
	InfuraKey = "infura-key"
)

// DefaultConfigPath is read when --config is not given. A missing file falls back to the
// environment.
const DefaultConfigPath = "safe-adapter.yml"

// AddConnectionFlags registers the flags selecting backend and endpoint as persistent flags of
// cmd.
func AddConnectionFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringP(Config, "c", DefaultConfigPath, "Path to the YAML config file")
	f.StringP(Backend, "b", "", "Client library backend: geth, seth or zksync (overrides config)")
	f.StringP(Network, "n", "", "Named network (overrides config)")
	f.String(RPCURL, "", "RPC URL (overrides config and network)")
	f.String(InfuraKey, "", "Infura API key for hosted networks (overrides config)")
}

// LoadConfig loads the config file named by --config, the environment, and then applies the
// connection flags that were set explicitly. An explicit --network without --rpc-url drops the
// RPC URL loaded from the file or the environment, since that URL would otherwise win.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(Config)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		Backend:   &cfg.Backend,
		Network:   &cfg.Network,
		RPCURL:    &cfg.RPCURL,
		InfuraKey: &cfg.InfuraKey,
	}
	for name, field := range overrides {
		if !cmd.Flags().Changed(name) {
			continue
		}
		if *field, err = cmd.Flags().GetString(name); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed(Network) && !cmd.Flags().Changed(RPCURL) {
		cfg.RPCURL = ""
	}

	return cfg, nil
}
