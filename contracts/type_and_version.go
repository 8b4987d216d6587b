package contracts

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ContractType identifies a contract of the Safe family independently of its version.
type ContractType string

func (ct ContractType) String() string {
	return string(ct)
}

const (
	Safe                         ContractType = "Safe"
	SafeL2                       ContractType = "SafeL2"
	SafeProxyFactory             ContractType = "SafeProxyFactory"
	MultiSend                    ContractType = "MultiSend"
	MultiSendCallOnly            ContractType = "MultiSendCallOnly"
	CompatibilityFallbackHandler ContractType = "CompatibilityFallbackHandler"
	SignMessageLib               ContractType = "SignMessageLib"
	CreateCall                   ContractType = "CreateCall"
	SimulateTxAccessor           ContractType = "SimulateTxAccessor"
)

// DefaultVersion is the contracts version used when callers do not pick one.
const DefaultVersion = "1.3.0"

// TypeAndVersion pairs a contract type with the semantic version of its deployment.
type TypeAndVersion struct {
	Type    ContractType   `json:"Type" yaml:"type"`
	Version semver.Version `json:"Version" yaml:"version"`
}

// NewTypeAndVersion parses the version string and returns the pair.
func NewTypeAndVersion(t ContractType, version string) (TypeAndVersion, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return TypeAndVersion{}, fmt.Errorf("invalid version %q for %s: %w", version, t, err)
	}

	return TypeAndVersion{Type: t, Version: *v}, nil
}

// MustTypeAndVersion is like NewTypeAndVersion but panics on an invalid version.
func MustTypeAndVersion(t ContractType, version string) TypeAndVersion {
	tv, err := NewTypeAndVersion(t, version)
	if err != nil {
		panic(err)
	}

	return tv
}

// TypeAndVersionFromString parses strings of the form "<type> <version>", e.g. "Safe 1.3.0".
func TypeAndVersionFromString(s string) (TypeAndVersion, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return TypeAndVersion{}, fmt.Errorf("invalid type and version string: %s", s)
	}

	return NewTypeAndVersion(ContractType(parts[0]), parts[1])
}

// String returns "<type> <version>".
func (tv TypeAndVersion) String() string {
	return fmt.Sprintf("%s %s", tv.Type, tv.Version.String())
}

// Equal compares type and version, ignoring the original textual form of the version.
func (tv TypeAndVersion) Equal(other TypeAndVersion) bool {
	return tv.Type == other.Type && tv.Version.Equal(&other.Version)
}
