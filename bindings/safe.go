package bindings

import (
	"bytes"
	"context"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/contracts"
)

// Operation is the call type of a Safe transaction.
type Operation uint8

const (
	Call         Operation = 0
	DelegateCall Operation = 1
)

// SentinelAddress marks the start and end of the Safe owner and module linked lists.
var SentinelAddress = common.HexToAddress("0x0000000000000000000000000000000000000001")

// defaultModulePageSize is used by GetModules on versions without getModules.
var defaultModulePageSize = big.NewInt(100)

// SafeTransaction holds the parameters of execTransaction. Nil amounts encode as zero.
type SafeTransaction struct {
	To             common.Address
	Value          *big.Int
	Data           []byte
	Operation      Operation
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       common.Address
	RefundReceiver common.Address
	Nonce          *big.Int
}

// execArgs returns the execTransaction arguments preceding the signatures.
func (tx SafeTransaction) execArgs() []any {
	return []any{
		tx.To,
		orZero(tx.Value),
		tx.dataOrEmpty(),
		uint8(tx.Operation),
		orZero(tx.SafeTxGas),
		orZero(tx.BaseGas),
		orZero(tx.GasPrice),
		tx.GasToken,
		tx.RefundReceiver,
	}
}

// hashArgs returns the getTransactionHash and encodeTransactionData arguments.
func (tx SafeTransaction) hashArgs() []any {
	return append(tx.execArgs(), orZero(tx.Nonce))
}

func (tx SafeTransaction) dataOrEmpty() []byte {
	if tx.Data == nil {
		return []byte{}
	}

	return tx.Data
}

// SafeSetup holds the parameters of the setup initializer of a new Safe proxy.
type SafeSetup struct {
	Owners          []common.Address
	Threshold       *big.Int
	To              common.Address
	Data            []byte
	FallbackHandler common.Address
	PaymentToken    common.Address
	Payment         *big.Int
	PaymentReceiver common.Address
}

// Safe is a typed view over a Safe or SafeL2 contract.
type Safe struct {
	adapter.Contract
}

// NewSafe wraps a contract bound to a Safe or SafeL2 descriptor.
func NewSafe(c adapter.Contract) (*Safe, error) {
	if err := checkType(c, contracts.Safe, contracts.SafeL2); err != nil {
		return nil, err
	}

	return &Safe{Contract: c}, nil
}

// Version returns the on-chain VERSION string.
func (s *Safe) Version(ctx context.Context) (string, error) {
	return call[string](ctx, s.Contract, "VERSION")
}

func (s *Safe) GetOwners(ctx context.Context) ([]common.Address, error) {
	return call[[]common.Address](ctx, s.Contract, "getOwners")
}

func (s *Safe) GetThreshold(ctx context.Context) (*big.Int, error) {
	return call[*big.Int](ctx, s.Contract, "getThreshold")
}

func (s *Safe) Nonce(ctx context.Context) (*big.Int, error) {
	return call[*big.Int](ctx, s.Contract, "nonce")
}

func (s *Safe) IsOwner(ctx context.Context, owner common.Address) (bool, error) {
	return call[bool](ctx, s.Contract, "isOwner", owner)
}

// GetModules returns the enabled modules. Versions from 1.3.0 on only expose the paginated
// getter, for them the first page of 100 modules is returned.
func (s *Safe) GetModules(ctx context.Context) ([]common.Address, error) {
	if s.Descriptor().HasMethod("getModules") {
		return call[[]common.Address](ctx, s.Contract, "getModules")
	}

	modules, _, err := s.GetModulesPaginated(ctx, SentinelAddress, defaultModulePageSize)

	return modules, err
}

// GetModulesPaginated returns up to pageSize modules following start and the start of the next
// page.
func (s *Safe) GetModulesPaginated(
	ctx context.Context, start common.Address, pageSize *big.Int,
) ([]common.Address, common.Address, error) {
	if err := requireMethod(s.Contract, "getModulesPaginated"); err != nil {
		return nil, common.Address{}, err
	}

	out, err := s.Call(ctx, "getModulesPaginated", start, pageSize)
	if err != nil {
		return nil, common.Address{}, err
	}

	modules, err := output[[]common.Address]("getModulesPaginated", out, 0)
	if err != nil {
		return nil, common.Address{}, err
	}
	next, err := output[common.Address]("getModulesPaginated", out, 1)
	if err != nil {
		return nil, common.Address{}, err
	}

	return modules, next, nil
}

func (s *Safe) IsModuleEnabled(ctx context.Context, module common.Address) (bool, error) {
	if err := requireMethod(s.Contract, "isModuleEnabled"); err != nil {
		return false, err
	}

	return call[bool](ctx, s.Contract, "isModuleEnabled", module)
}

// GetChainID returns the chain id seen by the contract. Available from 1.3.0.
func (s *Safe) GetChainID(ctx context.Context) (*big.Int, error) {
	if err := requireMethod(s.Contract, "getChainId"); err != nil {
		return nil, err
	}

	return call[*big.Int](ctx, s.Contract, "getChainId")
}

func (s *Safe) DomainSeparator(ctx context.Context) (common.Hash, error) {
	h, err := call[[32]byte](ctx, s.Contract, "domainSeparator")

	return common.Hash(h), err
}

// GetTransactionHash returns the EIP-712 hash owners sign to approve tx.
func (s *Safe) GetTransactionHash(ctx context.Context, tx SafeTransaction) (common.Hash, error) {
	h, err := call[[32]byte](ctx, s.Contract, "getTransactionHash", tx.hashArgs()...)

	return common.Hash(h), err
}

// EncodeTransactionData returns the EIP-712 pre-image of the hash of tx.
func (s *Safe) EncodeTransactionData(ctx context.Context, tx SafeTransaction) ([]byte, error) {
	return call[[]byte](ctx, s.Contract, "encodeTransactionData", tx.hashArgs()...)
}

// ApprovedHashes returns a non-zero value when owner approved hash on-chain.
func (s *Safe) ApprovedHashes(ctx context.Context, owner common.Address, hash common.Hash) (*big.Int, error) {
	return call[*big.Int](ctx, s.Contract, "approvedHashes", owner, [32]byte(hash))
}

// ApproveHash approves hash on-chain for the signer of the adapter.
func (s *Safe) ApproveHash(ctx context.Context, hash common.Hash) (adapter.TransactionResult, error) {
	return s.Transact(ctx, "approveHash", [32]byte(hash))
}

// ExecTransaction executes tx with the packed owner signatures.
func (s *Safe) ExecTransaction(
	ctx context.Context, tx SafeTransaction, signatures []byte,
) (adapter.TransactionResult, error) {
	return s.Transact(ctx, "execTransaction", append(tx.execArgs(), signatures)...)
}

// EstimateExecTransaction estimates the gas of ExecTransaction.
func (s *Safe) EstimateExecTransaction(ctx context.Context, tx SafeTransaction, signatures []byte) (uint64, error) {
	return s.EstimateGas(ctx, "execTransaction", append(tx.execArgs(), signatures)...)
}

func (s *Safe) EncodeExecTransaction(tx SafeTransaction, signatures []byte) ([]byte, error) {
	return s.Encode("execTransaction", append(tx.execArgs(), signatures)...)
}

func (s *Safe) EncodeAddOwnerWithThreshold(owner common.Address, threshold *big.Int) ([]byte, error) {
	return s.Encode("addOwnerWithThreshold", owner, threshold)
}

func (s *Safe) EncodeRemoveOwner(prevOwner, owner common.Address, threshold *big.Int) ([]byte, error) {
	return s.Encode("removeOwner", prevOwner, owner, threshold)
}

func (s *Safe) EncodeSwapOwner(prevOwner, oldOwner, newOwner common.Address) ([]byte, error) {
	return s.Encode("swapOwner", prevOwner, oldOwner, newOwner)
}

func (s *Safe) EncodeChangeThreshold(threshold *big.Int) ([]byte, error) {
	return s.Encode("changeThreshold", threshold)
}

func (s *Safe) EncodeEnableModule(module common.Address) ([]byte, error) {
	return s.Encode("enableModule", module)
}

func (s *Safe) EncodeDisableModule(prevModule, module common.Address) ([]byte, error) {
	return s.Encode("disableModule", prevModule, module)
}

func (s *Safe) EncodeSetFallbackHandler(handler common.Address) ([]byte, error) {
	return s.Encode("setFallbackHandler", handler)
}

// EncodeSetup returns the initializer passed to the proxy factory when creating a Safe.
func (s *Safe) EncodeSetup(setup SafeSetup) ([]byte, error) {
	data := setup.Data
	if data == nil {
		data = []byte{}
	}

	return s.Encode("setup",
		setup.Owners,
		orZero(setup.Threshold),
		setup.To,
		data,
		setup.FallbackHandler,
		setup.PaymentToken,
		orZero(setup.Payment),
		setup.PaymentReceiver,
	)
}

// Signature is a 65 byte owner signature of a Safe transaction hash.
type Signature struct {
	Signer common.Address
	Data   []byte
}

// PreValidatedSignature returns the signature of an owner that is the sender of the execution
// transaction: r is the owner address, s is zero and v is 1.
func PreValidatedSignature(owner common.Address) Signature {
	data := make([]byte, 65)
	copy(data[12:32], owner.Bytes())
	data[64] = 1

	return Signature{Signer: owner, Data: data}
}

// PackSignatures concatenates signatures ordered by ascending signer address as the Safe
// contract requires.
func PackSignatures(sigs ...Signature) []byte {
	sorted := slices.Clone(sigs)
	slices.SortFunc(sorted, func(a, b Signature) int {
		return bytes.Compare(a.Signer.Bytes(), b.Signer.Bytes())
	})

	var packed []byte
	for _, sig := range sorted {
		packed = append(packed, sig.Data...)
	}

	return packed
}
