// Package approve provides the CLI command approving a Safe transaction hash on-chain.
package approve

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/adapter/backend"
	"github.com/smartcontractkit/safe-adapters/bindings"
	"github.com/smartcontractkit/safe-adapters/config"
	"github.com/smartcontractkit/safe-adapters/contracts"
	"github.com/smartcontractkit/safe-adapters/pkg/commands/flags"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

// ErrNoReceipt is returned when the transaction result resolves to no receipt.
var ErrNoReceipt = errors.New("transaction result carries no receipt")

// DialFunc connects the adapter described by the config.
type DialFunc func(ctx context.Context, cfg config.Config, lggr logger.Logger) (adapter.EthAdapter, error)

// Config configures the approve-hash command.
type Config struct {
	Logger logger.Logger
	// Dial connects the adapter. Default: backend.Dial
	Dial DialFunc
}

// Result is the YAML document printed after the approval is mined.
type Result struct {
	Backend     string `yaml:"backend"`
	Safe        string `yaml:"safe"`
	Hash        string `yaml:"hash"`
	Transaction string `yaml:"transaction"`
	Block       uint64 `yaml:"block"`
	Status      uint64 `yaml:"status"`
}

// NewCommand creates the approve-hash command. The signer comes from the config; the receipt
// wait is bounded by its confirm_timeout.
func NewCommand(cfg Config) *cobra.Command {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Dial == nil {
		cfg.Dial = backend.Dial
	}

	var (
		safeAddr string
		hash     string
		version  string
	)

	cmd := &cobra.Command{
		Use:   "approve-hash",
		Short: "Approve a Safe transaction hash from the configured signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !common.IsHexAddress(safeAddr) {
				return fmt.Errorf("invalid safe address %q", safeAddr)
			}
			h := common.FromHex(hash)
			if len(h) != common.HashLength {
				return fmt.Errorf("invalid hash %q: want %d bytes", hash, common.HashLength)
			}

			appCfg, err := flags.LoadConfig(cmd)
			if err != nil {
				return err
			}

			desc, err := contracts.Get(contracts.Safe, version)
			if err != nil {
				return err
			}

			a, err := cfg.Dial(cmd.Context(), *appCfg, cfg.Logger)
			if err != nil {
				return err
			}

			res, err := approve(cmd.Context(), a, desc, common.HexToAddress(safeAddr), common.BytesToHash(h), appCfg)
			if err != nil {
				return err
			}

			cfg.Logger.Infow("hash approved", "safe", res.Safe, "tx", res.Transaction)

			out, err := yaml.Marshal(res)
			if err != nil {
				return fmt.Errorf("failed to marshal result: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)

			return err
		},
	}

	cmd.Flags().StringVar(&safeAddr, "safe", "", "Safe address (required)")
	cmd.Flags().StringVar(&hash, "hash", "", "Safe transaction hash to approve (required)")
	cmd.Flags().StringVarP(&version, "version", "v", contracts.DefaultVersion, "Safe version")
	_ = cmd.MarkFlagRequired("safe")
	_ = cmd.MarkFlagRequired("hash")

	return cmd
}

func approve(
	ctx context.Context, a adapter.EthAdapter, desc contracts.Descriptor, addr common.Address, hash common.Hash, cfg *config.Config,
) (*Result, error) {
	c, err := a.Contract(desc, addr)
	if err != nil {
		return nil, err
	}
	safe, err := bindings.NewSafe(c)
	if err != nil {
		return nil, err
	}

	txRes, err := safe.ApproveHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	if cfg.ConfirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConfirmTimeout)
		defer cancel()
	}

	receipt, err := adapter.WaitReceipt(ctx, txRes)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for %s: %w", txRes.Hash.Hex(), err)
	}
	if receipt == nil {
		return nil, ErrNoReceipt
	}

	return &Result{
		Backend:     a.Backend(),
		Safe:        addr.Hex(),
		Hash:        hash.Hex(),
		Transaction: receipt.TxHash.Hex(),
		Block:       receipt.BlockNumber.Uint64(),
		Status:      receipt.Status,
	}, nil
}
