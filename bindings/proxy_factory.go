package bindings

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/contracts"
)

// ErrProxyCreationNotFound is returned when a receipt holds no ProxyCreation event of the factory.
var ErrProxyCreationNotFound = errors.New("no ProxyCreation event in receipt")

// ProxyFactory is a typed view over a SafeProxyFactory contract.
type ProxyFactory struct {
	adapter.Contract
}

// NewProxyFactory wraps a contract bound to a SafeProxyFactory descriptor.
func NewProxyFactory(c adapter.Contract) (*ProxyFactory, error) {
	if err := checkType(c, contracts.SafeProxyFactory); err != nil {
		return nil, err
	}

	return &ProxyFactory{Contract: c}, nil
}

// ProxyCreationCode returns the creation code of the proxies deployed by the factory.
func (f *ProxyFactory) ProxyCreationCode(ctx context.Context) ([]byte, error) {
	return call[[]byte](ctx, f.Contract, "proxyCreationCode")
}

// CreateProxyWithNonce deploys a proxy of singleton through CREATE2 and calls initializer on it.
func (f *ProxyFactory) CreateProxyWithNonce(
	ctx context.Context, singleton common.Address, initializer []byte, saltNonce *big.Int,
) (adapter.TransactionResult, error) {
	return f.Transact(ctx, "createProxyWithNonce", singleton, initializer, orZero(saltNonce))
}

func (f *ProxyFactory) EstimateCreateProxyWithNonce(
	ctx context.Context, singleton common.Address, initializer []byte, saltNonce *big.Int,
) (uint64, error) {
	return f.EstimateGas(ctx, "createProxyWithNonce", singleton, initializer, orZero(saltNonce))
}

func (f *ProxyFactory) EncodeCreateProxyWithNonce(
	singleton common.Address, initializer []byte, saltNonce *big.Int,
) ([]byte, error) {
	return f.Encode("createProxyWithNonce", singleton, initializer, orZero(saltNonce))
}

// PredictProxyAddress returns the address CreateProxyWithNonce deploys the proxy at.
func (f *ProxyFactory) PredictProxyAddress(
	ctx context.Context, singleton common.Address, initializer []byte, saltNonce *big.Int,
) (common.Address, error) {
	code, err := f.ProxyCreationCode(ctx)
	if err != nil {
		return common.Address{}, err
	}

	return ProxyAddress(f.Address(), code, singleton, initializer, saltNonce), nil
}

// ProxyAddress computes the CREATE2 address of a proxy deployed by factory with
// createProxyWithNonce.
func ProxyAddress(
	factory common.Address, proxyCreationCode []byte, singleton common.Address, initializer []byte, saltNonce *big.Int,
) common.Address {
	salt := crypto.Keccak256Hash(
		crypto.Keccak256(initializer),
		math.U256Bytes(new(big.Int).Set(orZero(saltNonce))),
	)

	deploymentData := make([]byte, 0, len(proxyCreationCode)+common.HashLength)
	deploymentData = append(deploymentData, proxyCreationCode...)
	deploymentData = append(deploymentData, common.LeftPadBytes(singleton.Bytes(), common.HashLength)...)

	return crypto.CreateAddress2(factory, salt, crypto.Keccak256(deploymentData))
}

// ProxyFromReceipt returns the proxy address of the first ProxyCreation event emitted by the
// factory in receipt.
func (f *ProxyFactory) ProxyFromReceipt(receipt *types.Receipt) (common.Address, error) {
	if receipt == nil {
		return common.Address{}, ErrProxyCreationNotFound
	}

	abi := f.Descriptor().ABI()
	event, ok := abi.Events["ProxyCreation"]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s has no ProxyCreation event", ErrUnsupportedMethod, f.Descriptor())
	}

	bound := bind.NewBoundContract(f.Address(), abi, nil, nil, nil)
	for _, log := range receipt.Logs {
		if log.Address != f.Address() || len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}

		values := map[string]any{}
		if err := bound.UnpackLogIntoMap(values, event.Name, *log); err != nil {
			return common.Address{}, fmt.Errorf("failed to unpack ProxyCreation event: %w", err)
		}

		proxy, ok := values["proxy"].(common.Address)
		if !ok {
			return common.Address{}, fmt.Errorf("%w: ProxyCreation proxy is %T", ErrUnexpectedOutput, values["proxy"])
		}

		return proxy, nil
	}

	return common.Address{}, ErrProxyCreationNotFound
}
