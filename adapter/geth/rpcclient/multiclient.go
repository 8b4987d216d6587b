// Package rpcclient provides MultiClient, an ethclient with backup RPCs and retries that can be
// handed to the geth adapter.
package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"

	chainsel "github.com/smartcontractkit/chain-selectors"

	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

const (
	RPCDefaultRetryAttempts = 1
	RPCDefaultRetryDelay    = 1000 * time.Millisecond
	RPCDefaultRetryTimeout  = 10 * time.Second

	RPCDefaultDialRetryAttempts = 1
	RPCDefaultDialRetryDelay    = 1000 * time.Millisecond
	RPCDefaultDialTimeout       = 10 * time.Second

	RPCDefaultHealthCheckTimeout = 2 * time.Second
)

// RetryConfig controls retries per RPC before falling over to the next backup.
type RetryConfig struct {
	Attempts     uint
	Delay        time.Duration
	Timeout      time.Duration
	DialAttempts uint
	DialDelay    time.Duration
	DialTimeout  time.Duration
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:     RPCDefaultRetryAttempts,
		Delay:        RPCDefaultRetryDelay,
		Timeout:      RPCDefaultRetryTimeout,
		DialAttempts: RPCDefaultDialRetryAttempts,
		DialDelay:    RPCDefaultDialRetryDelay,
		DialTimeout:  RPCDefaultDialTimeout,
	}
}

// WithRetryConfig overrides the default retry configuration.
func WithRetryConfig(cfg RetryConfig) func(*MultiClient) {
	return func(mc *MultiClient) {
		mc.RetryConfig = cfg
	}
}

// MultiClient is an *ethclient.Client whose contract facing calls are retried and fall over to
// backup RPCs. A backup that succeeds is promoted to primary.
type MultiClient struct {
	*ethclient.Client
	Backups     []*ethclient.Client
	RetryConfig RetryConfig

	lggr      logger.Logger
	chainName string
	mu        sync.RWMutex
}

// NewMultiClient dials every RPC of cfg and keeps the ones passing a health check.
func NewMultiClient(lggr logger.Logger, cfg RPCConfig, opts ...func(*MultiClient)) (*MultiClient, error) {
	if len(cfg.RPCs) == 0 {
		return nil, errors.New("no RPCs provided, need at least one")
	}

	chain, exists := chainsel.ChainBySelector(cfg.ChainSelector)
	if !exists {
		return nil, fmt.Errorf("chain with selector %d not found", cfg.ChainSelector)
	}

	mc := &MultiClient{
		lggr:        lggr.Named("multiclient").With("chain", chain.Name),
		chainName:   chain.Name,
		RetryConfig: defaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(mc)
	}

	clients := make([]*ethclient.Client, 0, len(cfg.RPCs))
	for i, r := range cfg.RPCs {
		client, err := mc.dialWithRetry(r)
		if err != nil {
			mc.lggr.Warnw("failed to dial RPC, trying the next one", "index", i, "rpc", r.Name, "err", err)

			continue
		}
		if err := mc.healthCheck(context.Background(), client); err != nil {
			mc.lggr.Warnw("RPC failed health check, trying the next one", "index", i, "rpc", r.Name, "err", err)
			client.Close()

			continue
		}
		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, errors.New("no valid RPC clients created")
	}

	mc.Client = clients[0]
	mc.Backups = clients[1:]

	return mc, nil
}

// ChainName returns the chain-selectors name of the chain.
func (mc *MultiClient) ChainName() string {
	return mc.chainName
}

func (mc *MultiClient) ChainID(ctx context.Context) (*big.Int, error) {
	return do(ctx, mc, "ChainID", func(ct context.Context, c *ethclient.Client) (*big.Int, error) {
		return c.ChainID(ct)
	})
}

func (mc *MultiClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	_, err := do(ctx, mc, "SendTransaction", func(ct context.Context, c *ethclient.Client) (struct{}, error) {
		return struct{}{}, c.SendTransaction(ct, tx)
	})

	return err
}

func (mc *MultiClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return do(ctx, mc, "CallContract", func(ct context.Context, c *ethclient.Client) ([]byte, error) {
		return c.CallContract(ct, msg, blockNumber)
	})
}

func (mc *MultiClient) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return do(ctx, mc, "CodeAt", func(ct context.Context, c *ethclient.Client) ([]byte, error) {
		return c.CodeAt(ct, account, blockNumber)
	})
}

func (mc *MultiClient) NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error) {
	return do(ctx, mc, "NonceAt", func(ct context.Context, c *ethclient.Client) (uint64, error) {
		return c.NonceAt(ct, account, blockNumber)
	})
}

func (mc *MultiClient) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return do(ctx, mc, "BalanceAt", func(ct context.Context, c *ethclient.Client) (*big.Int, error) {
		return c.BalanceAt(ct, account, blockNumber)
	})
}

func (mc *MultiClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return do(ctx, mc, "HeaderByNumber", func(ct context.Context, c *ethclient.Client) (*types.Header, error) {
		return c.HeaderByNumber(ct, number)
	})
}

func (mc *MultiClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return do(ctx, mc, "SuggestGasPrice", func(ct context.Context, c *ethclient.Client) (*big.Int, error) {
		return c.SuggestGasPrice(ct)
	})
}

func (mc *MultiClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return do(ctx, mc, "SuggestGasTipCap", func(ct context.Context, c *ethclient.Client) (*big.Int, error) {
		return c.SuggestGasTipCap(ct)
	})
}

func (mc *MultiClient) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return do(ctx, mc, "PendingCodeAt", func(ct context.Context, c *ethclient.Client) ([]byte, error) {
		return c.PendingCodeAt(ct, account)
	})
}

func (mc *MultiClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return do(ctx, mc, "PendingNonceAt", func(ct context.Context, c *ethclient.Client) (uint64, error) {
		return c.PendingNonceAt(ct, account)
	})
}

func (mc *MultiClient) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return do(ctx, mc, "EstimateGas", func(ct context.Context, c *ethclient.Client) (uint64, error) {
		return c.EstimateGas(ct, call)
	})
}

func (mc *MultiClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return do(ctx, mc, "FilterLogs", func(ct context.Context, c *ethclient.Client) ([]types.Log, error) {
		return c.FilterLogs(ct, q)
	})
}

// TransactionReceipt is not retried: ethereum.NotFound is the expected answer while a
// transaction is pending and bind.WaitMined polls on its own.
func (mc *MultiClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return mc.primary().TransactionReceipt(ctx, txHash)
}

func (mc *MultiClient) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	type txResult struct {
		tx      *types.Transaction
		pending bool
	}
	res, err := do(ctx, mc, "TransactionByHash", func(ct context.Context, c *ethclient.Client) (txResult, error) {
		tx, pending, err := c.TransactionByHash(ct, hash)
		return txResult{tx: tx, pending: pending}, err
	})

	return res.tx, res.pending, err
}

// do runs op against the primary and then each backup, retrying each one according to the
// retry configuration. Every call is tagged with a trace id in the logs.
func do[T any](ctx context.Context, mc *MultiClient, opName string, op func(context.Context, *ethclient.Client) (T, error)) (T, error) {
	var (
		result  T
		lastErr error
		traceID = uuid.New().String()
		lggr    = mc.lggr.With("traceID", traceID, "op", opName)
	)

	for rpcIndex, client := range mc.clients() {
		retryCount := 0
		err := retry.Do(func() error {
			timeoutCtx, cancel := ensureTimeout(ctx, mc.RetryConfig.Timeout)
			defer cancel()

			res, err := op(timeoutCtx, client)
			if err != nil {
				lastErr = err
				lggr.Warnw("failed execution, retryable error", "index", rpcIndex, "err", maybeDataErr(err))

				return err
			}
			result = res
			mc.reorderRPCs(client)

			return nil
		},
			retry.Context(ctx),
			retry.Attempts(mc.RetryConfig.Attempts),
			retry.Delay(mc.RetryConfig.Delay),
			retry.OnRetry(func(uint, error) { retryCount++ }),
		)
		if err == nil {
			if retryCount > 0 {
				lggr.Infow("executed after retries", "index", rpcIndex, "retries", retryCount)
			}

			return result, nil
		}
		lggr.Infow("client failed, trying the next one", "index", rpcIndex)
	}

	var zero T

	return zero, errors.Join(lastErr, fmt.Errorf("all backup clients failed for chain %q", mc.chainName))
}

func (mc *MultiClient) dialWithRetry(r RPC) (*ethclient.Client, error) {
	endpoint, err := r.ToEndpoint()
	if err != nil {
		return nil, err
	}

	lggr := mc.lggr.With("traceID", uuid.New().String(), "rpc", r.Name)

	var client *ethclient.Client
	retryCount := 0
	err = retry.Do(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), mc.RetryConfig.DialTimeout)
		defer cancel()

		lggr.Debugw("dialing endpoint", "endpoint", endpoint)

		var dialErr error
		client, dialErr = ethclient.DialContext(ctx, endpoint)
		if dialErr != nil {
			lggr.Warnw("dialing failed, retryable error", "endpoint", endpoint, "err", dialErr)

			return dialErr
		}

		return nil
	},
		retry.Attempts(mc.RetryConfig.DialAttempts),
		retry.Delay(mc.RetryConfig.DialDelay),
		retry.OnRetry(func(uint, error) { retryCount++ }),
	)
	if err != nil {
		return nil, errors.Join(err, fmt.Errorf("failed to dial endpoint '%s' for RPC %s for chain %s after retries", endpoint, r.Name, mc.chainName))
	}
	if retryCount > 0 {
		lggr.Infow("dialed endpoint after retries", "endpoint", endpoint, "retries", retryCount)
	}

	return client, nil
}

func (mc *MultiClient) healthCheck(ctx context.Context, client *ethclient.Client) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, RPCDefaultHealthCheckTimeout)
	defer cancel()

	if _, err := client.BlockNumber(timeoutCtx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

// ensureTimeout keeps the deadline of parent if it has one and applies timeout otherwise.
func ensureTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := parent.Deadline(); hasDeadline {
		return context.WithCancel(parent)
	}

	return context.WithTimeout(parent, timeout)
}

// reorderRPCs promotes client to primary. Backups ahead of it move to the end, followed by the old
// primary. Positions are looked up under the lock since concurrent calls may have reordered the
// clients since they were snapshotted.
func (mc *MultiClient) reorderRPCs(client *ethclient.Client) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if client == mc.Client {
		return
	}
	idx := slices.Index(mc.Backups, client)
	if idx < 0 {
		return
	}

	reordered := make([]*ethclient.Client, 0, len(mc.Backups))
	reordered = append(reordered, mc.Backups[idx+1:]...)
	reordered = append(reordered, mc.Backups[:idx]...)
	reordered = append(reordered, mc.Client)

	mc.Backups = reordered
	mc.Client = client
}

func (mc *MultiClient) primary() *ethclient.Client {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return mc.Client
}

func (mc *MultiClient) clients() []*ethclient.Client {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return append([]*ethclient.Client{mc.Client}, mc.Backups...)
}

func maybeDataErr(err error) error {
	var d rpc.DataError
	if errors.As(err, &d) {
		return fmt.Errorf("%s: %v", d.Error(), d.ErrorData())
	}

	return err
}
