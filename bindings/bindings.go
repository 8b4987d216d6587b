// Package bindings provides typed views over the Safe contract family.
//
// Every view wraps an [adapter.Contract] resolved by any backend. Read-only methods forward their
// arguments unchanged to Contract.Call and only convert the decoded outputs to Go types; writes go
// through Contract.Transact and return the backend's transaction result as is.
package bindings

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/contracts"
)

var (
	// ErrWrongContract is returned when a contract is wrapped by a view of another type.
	ErrWrongContract = errors.New("contract type does not match binding")
	// ErrUnsupportedMethod is returned when the bound contract version lacks a method.
	ErrUnsupportedMethod = errors.New("method not supported by contract version")
	// ErrUnexpectedOutput is returned when a call decodes to values of unexpected types.
	ErrUnexpectedOutput = errors.New("unexpected call output")
)

// checkType verifies that c is bound to a descriptor of one of the given types.
func checkType(c adapter.Contract, want ...contracts.ContractType) error {
	if c == nil {
		return fmt.Errorf("%w: nil contract", ErrWrongContract)
	}

	got := c.Descriptor().Type
	if !slices.Contains(want, got) {
		return fmt.Errorf("%w: got %s, want one of %v", ErrWrongContract, got, want)
	}

	return nil
}

func requireMethod(c adapter.Contract, method string) error {
	if !c.Descriptor().HasMethod(method) {
		return fmt.Errorf("%w: %s has no %s", ErrUnsupportedMethod, c.Descriptor(), method)
	}

	return nil
}

// call invokes a read-only method and returns its first output as T.
func call[T any](ctx context.Context, c adapter.Contract, method string, args ...any) (T, error) {
	var zero T

	out, err := c.Call(ctx, method, args...)
	if err != nil {
		return zero, err
	}

	return output[T](method, out, 0)
}

// output returns out[i] as T.
func output[T any](method string, out []any, i int) (T, error) {
	var zero T
	if len(out) <= i {
		return zero, fmt.Errorf("%w: %s returned %d values", ErrUnexpectedOutput, method, len(out))
	}

	v, ok := out[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s: expected %T, got %T", ErrUnexpectedOutput, method, zero, out[i])
	}

	return v, nil
}

// orZero substitutes zero for a nil amount so it can be ABI encoded.
func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}

	return v
}
