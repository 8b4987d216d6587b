package contracts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrNotDeployable    = errors.New("contract has no bytecode")
)

// Descriptor is the fixed interface description of one contract version: its ABI and, for
// deployable contracts, its creation bytecode. The address is supplied when the descriptor is
// bound through an adapter.
type Descriptor struct {
	TypeAndVersion

	rawABI   string
	abi      abi.ABI
	bytecode []byte
}

// NewDescriptor parses the ABI JSON and returns a descriptor. Bytecode may be nil.
func NewDescriptor(tv TypeAndVersion, rawABI string, bytecode []byte) (Descriptor, error) {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to parse ABI of %s: %w", tv, err)
	}

	return Descriptor{
		TypeAndVersion: tv,
		rawABI:         rawABI,
		abi:            parsed,
		bytecode:       bytes.Clone(bytecode),
	}, nil
}

// ABI returns the parsed ABI embedded for this contract version.
func (d Descriptor) ABI() abi.ABI {
	return d.abi
}

// RawABI returns the ABI JSON exactly as embedded.
func (d Descriptor) RawABI() string {
	return d.rawABI
}

// Bytecode returns a copy of the creation bytecode, or nil if the contract is not deployable
// from this module.
func (d Descriptor) Bytecode() []byte {
	return bytes.Clone(d.bytecode)
}

// Deployable reports whether creation bytecode is available.
func (d Descriptor) Deployable() bool {
	return len(d.bytecode) > 0
}

// HasMethod reports whether the ABI declares a method with the given name.
func (d Descriptor) HasMethod(name string) bool {
	_, ok := d.abi.Methods[name]

	return ok
}

// Pack ABI encodes a method call.
func (d Descriptor) Pack(method string, args ...any) ([]byte, error) {
	data, err := d.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s.%s: %w", d.Type, method, err)
	}

	return data, nil
}

// Unpack decodes the return data of a method call.
func (d Descriptor) Unpack(method string, data []byte) ([]any, error) {
	out, err := d.abi.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s.%s: %w", d.Type, method, err)
	}

	return out, nil
}
