// Package commands provides the CLI commands of safe-adapter.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr)
//	root.AddCommand(cmds.Inspect(), cmds.Contracts(), cmds.ApproveHash())
//	flags.AddConnectionFlags(root)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/smartcontractkit/safe-adapters/pkg/commands/inspect"
//
//	root.AddCommand(inspect.NewCommand(inspect.Config{
//	    Logger: lggr,
//	    Deps:   &inspect.Deps{...}, // inject fakes for testing
//	}))
package commands

import (
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/safe-adapters/pkg/commands/approve"
	"github.com/smartcontractkit/safe-adapters/pkg/commands/catalog"
	"github.com/smartcontractkit/safe-adapters/pkg/commands/flags"
	"github.com/smartcontractkit/safe-adapters/pkg/commands/inspect"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// Root creates the safe-adapter root command with every subcommand and the connection flags.
func (c *Commands) Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "safe-adapter",
		Short:         "Interact with Safe contracts through interchangeable EVM client libraries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.AddConnectionFlags(root)
	root.AddCommand(c.Inspect(), c.Contracts(), c.ApproveHash())

	return root
}

// Inspect creates the inspect command.
func (c *Commands) Inspect() *cobra.Command {
	return inspect.NewCommand(inspect.Config{Logger: c.lggr})
}

// Contracts creates the contracts command.
func (c *Commands) Contracts() *cobra.Command {
	return catalog.NewCommand()
}

// ApproveHash creates the approve-hash command.
func (c *Commands) ApproveHash() *cobra.Command {
	return approve.NewCommand(approve.Config{Logger: c.lggr})
}
