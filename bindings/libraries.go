package bindings

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/contracts"
)

// SignMessageLib is a typed view over a SignMessageLib contract. Its methods are meant to be
// delegate called by a Safe.
type SignMessageLib struct {
	adapter.Contract
}

func NewSignMessageLib(c adapter.Contract) (*SignMessageLib, error) {
	if err := checkType(c, contracts.SignMessageLib); err != nil {
		return nil, err
	}

	return &SignMessageLib{Contract: c}, nil
}

// GetMessageHash returns the message hash of the calling Safe. Called directly it hashes against
// the domain of the library itself.
func (l *SignMessageLib) GetMessageHash(ctx context.Context, message []byte) (common.Hash, error) {
	h, err := call[[32]byte](ctx, l.Contract, "getMessageHash", message)

	return common.Hash(h), err
}

// EncodeSignMessage returns the calldata marking message as signed by the delegate calling Safe.
func (l *SignMessageLib) EncodeSignMessage(message []byte) ([]byte, error) {
	return l.Encode("signMessage", message)
}

func (l *SignMessageLib) SignMessage(ctx context.Context, message []byte) (adapter.TransactionResult, error) {
	return l.Transact(ctx, "signMessage", message)
}

// CompatibilityFallbackHandler is a typed view over a CompatibilityFallbackHandler contract.
type CompatibilityFallbackHandler struct {
	adapter.Contract
}

func NewCompatibilityFallbackHandler(c adapter.Contract) (*CompatibilityFallbackHandler, error) {
	if err := checkType(c, contracts.CompatibilityFallbackHandler); err != nil {
		return nil, err
	}

	return &CompatibilityFallbackHandler{Contract: c}, nil
}

// GetMessageHashForSafe returns the EIP-712 hash of message in the domain of safe.
func (h *CompatibilityFallbackHandler) GetMessageHashForSafe(
	ctx context.Context, safe common.Address, message []byte,
) (common.Hash, error) {
	out, err := call[[32]byte](ctx, h.Contract, "getMessageHashForSafe", safe, message)

	return common.Hash(out), err
}

// GetMessageHash returns the message hash in the domain of the caller. Called through a Safe
// with this handler installed, that is the Safe.
func (h *CompatibilityFallbackHandler) GetMessageHash(ctx context.Context, message []byte) (common.Hash, error) {
	out, err := call[[32]byte](ctx, h.Contract, "getMessageHash", message)

	return common.Hash(out), err
}

func (h *CompatibilityFallbackHandler) EncodeGetMessageHash(message []byte) ([]byte, error) {
	return h.Encode("getMessageHash", message)
}

func (h *CompatibilityFallbackHandler) EncodeSimulate(target common.Address, calldata []byte) ([]byte, error) {
	return h.Encode("simulate", target, calldata)
}

// CreateCall is a typed view over a CreateCall library contract.
type CreateCall struct {
	adapter.Contract
}

func NewCreateCall(c adapter.Contract) (*CreateCall, error) {
	if err := checkType(c, contracts.CreateCall); err != nil {
		return nil, err
	}

	return &CreateCall{Contract: c}, nil
}

func (c *CreateCall) EncodePerformCreate(value *big.Int, deploymentData []byte) ([]byte, error) {
	return c.Encode("performCreate", orZero(value), deploymentData)
}

func (c *CreateCall) EncodePerformCreate2(value *big.Int, deploymentData []byte, salt common.Hash) ([]byte, error) {
	return c.Encode("performCreate2", orZero(value), deploymentData, [32]byte(salt))
}

func (c *CreateCall) PerformCreate(
	ctx context.Context, value *big.Int, deploymentData []byte,
) (adapter.TransactionResult, error) {
	return c.Transact(ctx, "performCreate", orZero(value), deploymentData)
}

func (c *CreateCall) PerformCreate2(
	ctx context.Context, value *big.Int, deploymentData []byte, salt common.Hash,
) (adapter.TransactionResult, error) {
	return c.Transact(ctx, "performCreate2", orZero(value), deploymentData, [32]byte(salt))
}

// SimulateTxAccessor is a typed view over a SimulateTxAccessor contract.
type SimulateTxAccessor struct {
	adapter.Contract
}

func NewSimulateTxAccessor(c adapter.Contract) (*SimulateTxAccessor, error) {
	if err := checkType(c, contracts.SimulateTxAccessor); err != nil {
		return nil, err
	}

	return &SimulateTxAccessor{Contract: c}, nil
}

// EncodeSimulate returns the simulate calldata, passed to CompatibilityFallbackHandler.simulate
// or Safe.simulateAndRevert.
func (a *SimulateTxAccessor) EncodeSimulate(tx MetaTransaction) ([]byte, error) {
	data := tx.Data
	if data == nil {
		data = []byte{}
	}

	return a.Encode("simulate", tx.To, orZero(tx.Value), data, uint8(tx.Operation))
}
