package seth

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/smartcontractkit/chainlink-testing-framework/seth"
)

// NewSethClient builds a read-only seth client for rpcURL. When configFilePath is set the TOML
// file is loaded and the network matching chainID is selected; otherwise the client uses seth
// defaults, decodes with the geth wrappers found in gethWrapperDirs and traces reverted
// transactions.
func NewSethClient(
	rpcURL string,
	chainID uint64,
	gethWrapperDirs []string,
	configFilePath string,
) (*seth.Client, error) {
	if configFilePath != "" {
		cfg, err := ReadSethConfig(configFilePath)
		if err != nil {
			return nil, err
		}

		return seth.NewClientBuilderWithConfig(cfg).
			UseNetworkWithChainId(chainID).
			WithRpcUrl(rpcURL).
			WithReadOnlyMode().
			Build()
	}

	return seth.NewClientBuilder().
		WithRpcUrl(rpcURL).
		WithGethWrappersFolders(gethWrapperDirs).
		WithTracing(seth.TracingLevel_Reverted, []string{seth.TraceOutput_Console}).
		WithReadOnlyMode().
		Build()
}

// ReadSethConfig reads a seth TOML configuration file.
func ReadSethConfig(path string) (*seth.Config, error) {
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read seth config %s: %w", path, err)
	}

	var cfg seth.Config
	if err = toml.Unmarshal(d, &cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal seth config: %w", err)
	}

	return &cfg, nil
}
