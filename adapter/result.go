package adapter

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNoConfirmation is returned when a confirmation channel is closed before delivering an event.
var ErrNoConfirmation = errors.New("confirmation channel closed without an event")

// Confirmation is the single event delivered on TransactionResult.Events.
type Confirmation struct {
	Receipt *types.Receipt
	Err     error
}

// ResponseWaiter is a sent transaction that can block until it is mined.
type ResponseWaiter interface {
	Wait(ctx context.Context) (*types.Receipt, error)
}

// TransactionResult is the outcome of a write operation. Next to the hash it carries exactly one
// of the receipt shapes produced by the backends:
//   - Events: a one-shot channel receiving a single Confirmation (seth)
//   - Response: an object with a Wait method (geth)
//   - Wait: a function resolving the receipt (zksync)
//   - Receipt: an already resolved receipt
type TransactionResult struct {
	Hash common.Hash

	Events   <-chan Confirmation
	Response ResponseWaiter
	Wait     func(ctx context.Context) (*types.Receipt, error)
	Receipt  *types.Receipt
}

// WaitReceipt resolves the receipt of res by checking, in order, the confirmation events, the
// response object, the wait function and the resolved receipt. It returns (nil, nil) when res
// carries none of them. Cancellation is left to ctx.
func WaitReceipt(ctx context.Context, res TransactionResult) (*types.Receipt, error) {
	switch {
	case res.Events != nil:
		select {
		case c, ok := <-res.Events:
			if !ok {
				return nil, ErrNoConfirmation
			}

			return c.Receipt, c.Err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	case res.Response != nil:
		return res.Response.Wait(ctx)
	case res.Wait != nil:
		return res.Wait(ctx)
	case res.Receipt != nil:
		return res.Receipt, nil
	default:
		return nil, nil
	}
}
