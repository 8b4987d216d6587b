// Package inspect provides the CLI command resolving a Safe contract on a network.
package inspect

import (
	"context"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/adapter/backend"
	"github.com/smartcontractkit/safe-adapters/config"
	"github.com/smartcontractkit/safe-adapters/deployments"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

// DialFunc connects the adapter described by the config.
type DialFunc func(ctx context.Context, cfg config.Config, lggr logger.Logger) (adapter.EthAdapter, error)

// Deps holds the injectable dependencies of the inspect command. Nil fields use the production
// defaults.
type Deps struct {
	// Dial connects the adapter. Default: backend.Dial
	Dial DialFunc
	// Book provides the deployment addresses. Default: deployments.DefaultBook
	Book func() *deployments.Book
}

func (d *Deps) applyDefaults() {
	if d.Dial == nil {
		d.Dial = backend.Dial
	}
	if d.Book == nil {
		d.Book = deployments.DefaultBook
	}
}

// Config configures the inspect command.
type Config struct {
	Logger logger.Logger
	Deps   *Deps
}

func (c *Config) deps() {
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Deps == nil {
		c.Deps = &Deps{}
	}
	c.Deps.applyDefaults()
}
