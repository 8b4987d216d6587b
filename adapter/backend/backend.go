// Package backend selects and constructs the adapter for a configured client library.
//
// Construction is a pure conditional on the backend type: the client handle is checked against
// the backend and handed to the matching adapter package unchanged.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	sethlib "github.com/smartcontractkit/chainlink-testing-framework/seth"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/adapter/geth"
	"github.com/smartcontractkit/safe-adapters/adapter/seth"
	"github.com/smartcontractkit/safe-adapters/adapter/zksync"
	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

// Type identifies a client library backend.
type Type string

const (
	Geth   Type = geth.Name
	Seth   Type = seth.Name
	ZkSync Type = zksync.Name
)

var (
	// ErrUnsupportedBackend is returned for a backend name no adapter exists for.
	ErrUnsupportedBackend = errors.New("unsupported eth adapter backend")
	// ErrInvalidClient is returned when the client handle does not belong to the backend.
	ErrInvalidClient = adapter.ErrInvalidClient
)

// aliases maps accepted backend names, including the library names used by older
// configurations, to backend types.
var aliases = map[string]Type{
	"geth":   Geth,
	"ethers": Geth,
	"seth":   Seth,
	"web3":   Seth,
	"zksync": ZkSync,
	"viem":   ZkSync,
}

// Types returns the supported backend types.
func Types() []Type {
	return []Type{Geth, Seth, ZkSync}
}

// ParseType resolves a case-insensitive backend name or alias.
func ParseType(s string) (Type, error) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
	}

	return t, nil
}

// Option configures the adapter built by New.
type Option func(*options)

type options struct {
	transactor *bind.TransactOpts
	lggr       logger.Logger
}

// WithTransactor sets the signer of the geth and seth adapters. zkSync adapters sign with the
// wallet of their keyed client.
func WithTransactor(opts *bind.TransactOpts) Option {
	return func(o *options) {
		o.transactor = opts
	}
}

// WithLogger sets the logger of the adapter.
func WithLogger(lggr logger.Logger) Option {
	return func(o *options) {
		o.lggr = lggr
	}
}

// New constructs the adapter for t over handle. The handle must be a geth.Client for Geth, a
// *seth.Client for Seth and a zksync.KeyedClient (or pointer to one) for ZkSync.
func New(t Type, handle any, opts ...Option) (adapter.EthAdapter, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	switch t {
	case Geth:
		client, ok := handle.(geth.Client)
		if !ok || client == nil {
			return nil, invalidClient(t, handle)
		}

		return geth.New(client, geth.WithTransactor(o.transactor), geth.WithLogger(o.lggr)), nil
	case Seth:
		client, ok := handle.(*sethlib.Client)
		if !ok || client == nil {
			return nil, invalidClient(t, handle)
		}

		return seth.New(client, seth.WithTransactor(o.transactor), seth.WithLogger(o.lggr))
	case ZkSync:
		var kc zksync.KeyedClient
		switch h := handle.(type) {
		case zksync.KeyedClient:
			kc = h
		case *zksync.KeyedClient:
			if h == nil {
				return nil, invalidClient(t, handle)
			}
			kc = *h
		default:
			return nil, invalidClient(t, handle)
		}

		return zksync.New(kc, zksync.WithLogger(o.lggr))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, string(t))
	}
}

func invalidClient(t Type, handle any) error {
	return fmt.Errorf("%w: %s backend cannot use %T", ErrInvalidClient, t, handle)
}
