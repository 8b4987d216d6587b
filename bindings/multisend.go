package bindings

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/contracts"
)

// ErrDelegateCallNotAllowed is returned when a delegate call is batched for MultiSendCallOnly.
var ErrDelegateCallNotAllowed = errors.New("delegate call not allowed in call only batch")

// MetaTransaction is one call of a multiSend batch.
type MetaTransaction struct {
	Operation Operation
	To        common.Address
	Value     *big.Int
	Data      []byte
}

// EncodeTransactions packs txs into the transactions argument of multiSend. Each transaction is
// encoded as operation (1 byte), to (20 bytes), value (32 bytes), data length (32 bytes) and
// data.
func EncodeTransactions(txs ...MetaTransaction) []byte {
	var packed []byte
	for _, tx := range txs {
		packed = append(packed, byte(tx.Operation))
		packed = append(packed, tx.To.Bytes()...)
		packed = append(packed, math.U256Bytes(new(big.Int).Set(orZero(tx.Value)))...)
		packed = append(packed, math.U256Bytes(big.NewInt(int64(len(tx.Data))))...)
		packed = append(packed, tx.Data...)
	}

	return packed
}

// MultiSend is a typed view over a MultiSend or MultiSendCallOnly contract.
type MultiSend struct {
	adapter.Contract
}

// NewMultiSend wraps a contract bound to a MultiSend or MultiSendCallOnly descriptor.
func NewMultiSend(c adapter.Contract) (*MultiSend, error) {
	if err := checkType(c, contracts.MultiSend, contracts.MultiSendCallOnly); err != nil {
		return nil, err
	}

	return &MultiSend{Contract: c}, nil
}

// CallOnly reports whether the contract rejects delegate calls.
func (m *MultiSend) CallOnly() bool {
	return m.Descriptor().Type == contracts.MultiSendCallOnly
}

// EncodeMultiSend returns the multiSend calldata batching txs, usually executed by a Safe with
// a delegate call.
func (m *MultiSend) EncodeMultiSend(txs ...MetaTransaction) ([]byte, error) {
	if err := m.check(txs); err != nil {
		return nil, err
	}

	return m.Encode("multiSend", EncodeTransactions(txs...))
}

// MultiSend sends the batch directly from the signer of the adapter.
func (m *MultiSend) MultiSend(ctx context.Context, txs ...MetaTransaction) (adapter.TransactionResult, error) {
	if err := m.check(txs); err != nil {
		return adapter.TransactionResult{}, err
	}

	return m.Transact(ctx, "multiSend", EncodeTransactions(txs...))
}

func (m *MultiSend) check(txs []MetaTransaction) error {
	if !m.CallOnly() {
		return nil
	}
	for i, tx := range txs {
		if tx.Operation == DelegateCall {
			return fmt.Errorf("%w: transaction %d", ErrDelegateCallNotAllowed, i)
		}
	}

	return nil
}
