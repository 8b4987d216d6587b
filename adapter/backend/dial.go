package backend

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	chainsel "github.com/smartcontractkit/chain-selectors"
	zkAccounts "github.com/zksync-sdk/zksync2-go/accounts"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/adapter/geth/rpcclient"
	"github.com/smartcontractkit/safe-adapters/adapter/seth"
	"github.com/smartcontractkit/safe-adapters/adapter/zksync"
	"github.com/smartcontractkit/safe-adapters/config"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
	"github.com/smartcontractkit/safe-adapters/signer"
)

// Dial connects to the endpoint described by cfg, builds the client handle of the configured
// backend with the configured signer and returns the adapter for it.
func Dial(ctx context.Context, cfg config.Config, lggr logger.Logger) (adapter.EthAdapter, error) {
	if lggr == nil {
		lggr = logger.Nop()
	}

	t, err := ParseType(cfg.Backend)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rpcURL, err := cfg.ResolveRPCURL()
	if err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to get chain id from %s: %w", rpcURL, err)
	}

	lggr.Infow("dialed RPC", "backend", t, "chainID", chainID.String())

	switch t {
	case Geth:
		transactor, err := transactorFor(cfg.Signer, chainID)
		if err != nil {
			client.Close()
			return nil, err
		}
		if len(cfg.RPCBackupURLs) == 0 {
			return New(t, client, WithTransactor(transactor), WithLogger(lggr))
		}
		client.Close()

		mc, err := dialMultiClient(lggr, chainID, rpcURL, cfg.RPCBackupURLs)
		if err != nil {
			return nil, err
		}

		return New(t, mc, WithTransactor(transactor), WithLogger(lggr))
	case Seth:
		client.Close()

		transactor, err := transactorFor(cfg.Signer, chainID)
		if err != nil {
			return nil, err
		}

		var (
			wrapperDirs []string
			configPath  string
		)
		if cfg.Seth != nil {
			wrapperDirs = cfg.Seth.GethWrapperDirs
			configPath = cfg.Seth.ConfigFilePath
		}
		sc, err := seth.NewSethClient(rpcURL, chainID.Uint64(), wrapperDirs, configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create seth client: %w", err)
		}

		return New(t, sc, WithTransactor(transactor), WithLogger(lggr))
	default: // ZkSync, ParseType admits nothing else.
		client.Close()

		gen, err := zkSyncGeneratorFor(cfg.Signer)
		if err != nil {
			return nil, err
		}

		var zkSigner zkAccounts.Signer
		if gen != nil {
			if zkSigner, err = gen.Generate(chainID); err != nil {
				return nil, fmt.Errorf("failed to create zkSync signer: %w", err)
			}
		}

		kc, err := zksync.DialKeyedClient(ctx, rpcURL, zkSigner)
		if err != nil {
			return nil, err
		}

		return New(t, kc, WithLogger(lggr))
	}
}

// GeneratorFor returns the transactor generator configured by cfg, or nil when no signer is
// configured.
func GeneratorFor(cfg config.SignerConfig) (signer.Generator, error) {
	switch {
	case cfg.KMS != nil && cfg.KMS.KeyID != "":
		return signer.FromKMS(kmsConfig(cfg.KMS))
	case cfg.PrivateKey != "":
		return signer.FromRaw(cfg.PrivateKey), nil
	default:
		return nil, nil
	}
}

func transactorFor(cfg config.SignerConfig, chainID *big.Int) (*bind.TransactOpts, error) {
	gen, err := GeneratorFor(cfg)
	if err != nil || gen == nil {
		return nil, err
	}

	transactor, err := gen.Generate(chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	return transactor, nil
}

func zkSyncGeneratorFor(cfg config.SignerConfig) (signer.ZkSyncGenerator, error) {
	switch {
	case cfg.KMS != nil && cfg.KMS.KeyID != "":
		return signer.ZkSyncFromKMS(kmsConfig(cfg.KMS))
	case cfg.PrivateKey != "":
		return signer.ZkSyncFromRaw(cfg.PrivateKey), nil
	default:
		return nil, nil
	}
}

func kmsConfig(c *config.KMSConfig) signer.KMSConfig {
	return signer.KMSConfig{KeyID: c.KeyID, KeyRegion: c.KeyRegion, AWSProfile: c.AWSProfile}
}

func dialMultiClient(lggr logger.Logger, chainID *big.Int, primary string, backups []string) (*rpcclient.MultiClient, error) {
	details, err := chainsel.GetChainDetailsByChainIDAndFamily(chainID.String(), chainsel.FamilyEVM)
	if err != nil {
		return nil, fmt.Errorf("no chain selector for chain id %s: %w", chainID, err)
	}

	rpcs := make([]rpcclient.RPC, 0, len(backups)+1)
	for i, url := range append([]string{primary}, backups...) {
		rpcs = append(rpcs, rpcclient.RPC{Name: fmt.Sprintf("rpc-%d", i), HTTPURL: url})
	}

	return rpcclient.NewMultiClient(lggr, rpcclient.RPCConfig{
		ChainSelector: details.ChainSelector,
		RPCs:          rpcs,
	})
}
