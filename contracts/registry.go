package contracts

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ethereum/go-ethereum/common"
)

// Artifacts produced by the ABI generator for every supported contract version.
//
//go:embed abi/*.json bin/*.bin
var artifacts embed.FS

// artifact maps one contract version to its generated files.
type artifact struct {
	contractType ContractType
	version      string
	abiFile      string
	binFile      string
}

var artifactTable = []artifact{
	{Safe, "1.0.0", "GnosisSafe_v1.0.0.json", ""},
	{Safe, "1.1.1", "GnosisSafe_v1.1.1.json", ""},
	{Safe, "1.2.0", "GnosisSafe_v1.2.0.json", ""},
	{Safe, "1.3.0", "GnosisSafe_v1.3.0.json", ""},
	{Safe, "1.4.1", "Safe_v1.4.1.json", ""},
	{SafeL2, "1.3.0", "GnosisSafeL2_v1.3.0.json", ""},
	{SafeL2, "1.4.1", "SafeL2_v1.4.1.json", ""},
	{SafeProxyFactory, "1.0.0", "ProxyFactory_v1.0.0.json", ""},
	{SafeProxyFactory, "1.1.1", "ProxyFactory_v1.1.1.json", ""},
	{SafeProxyFactory, "1.2.0", "ProxyFactory_v1.1.1.json", ""},
	{SafeProxyFactory, "1.3.0", "ProxyFactory_v1.3.0.json", ""},
	{SafeProxyFactory, "1.4.1", "SafeProxyFactory_v1.4.1.json", ""},
	{MultiSend, "1.1.1", "MultiSend_v1.1.1.json", ""},
	{MultiSend, "1.3.0", "MultiSend_v1.3.0.json", ""},
	{MultiSend, "1.4.1", "MultiSend_v1.3.0.json", ""},
	{MultiSendCallOnly, "1.3.0", "MultiSendCallOnly_v1.3.0.json", ""},
	{MultiSendCallOnly, "1.4.1", "MultiSendCallOnly_v1.3.0.json", ""},
	{CompatibilityFallbackHandler, "1.3.0", "CompatibilityFallbackHandler_v1.3.0.json", ""},
	{CompatibilityFallbackHandler, "1.4.1", "CompatibilityFallbackHandler_v1.4.1.json", ""},
	{SignMessageLib, "1.3.0", "SignMessageLib_v1.3.0.json", "SignMessageLib_v1.3.0.bin"},
	{SignMessageLib, "1.4.1", "SignMessageLib_v1.4.1.json", ""},
	{CreateCall, "1.3.0", "CreateCall_v1.3.0.json", ""},
	{CreateCall, "1.4.1", "CreateCall_v1.4.1.json", ""},
	{SimulateTxAccessor, "1.3.0", "SimulateTxAccessor_v1.3.0.json", ""},
	{SimulateTxAccessor, "1.4.1", "SimulateTxAccessor_v1.3.0.json", ""},
}

// registry holds every descriptor keyed by TypeAndVersion.String(). It is built once from the
// embedded artifacts and never mutated afterwards.
var registry = mustLoadRegistry()

func mustLoadRegistry() map[string]Descriptor {
	descs, err := loadRegistry(artifactTable)
	if err != nil {
		panic(err)
	}

	return descs
}

func loadRegistry(table []artifact) (map[string]Descriptor, error) {
	descs := make(map[string]Descriptor, len(table))
	for _, a := range table {
		tv, err := NewTypeAndVersion(a.contractType, a.version)
		if err != nil {
			return nil, err
		}

		rawABI, err := artifacts.ReadFile(path.Join("abi", a.abiFile))
		if err != nil {
			return nil, fmt.Errorf("missing ABI artifact for %s: %w", tv, err)
		}

		var bytecode []byte
		if a.binFile != "" {
			bin, rerr := artifacts.ReadFile(path.Join("bin", a.binFile))
			if rerr != nil {
				return nil, fmt.Errorf("missing bytecode artifact for %s: %w", tv, rerr)
			}
			bytecode = common.FromHex(strings.TrimSpace(string(bin)))
		}

		d, err := NewDescriptor(tv, string(rawABI), bytecode)
		if err != nil {
			return nil, err
		}
		descs[tv.String()] = d
	}

	return descs, nil
}

// Get returns the descriptor for the contract type at the given version.
func Get(t ContractType, version string) (Descriptor, error) {
	tv, err := NewTypeAndVersion(t, version)
	if err != nil {
		return Descriptor{}, err
	}

	return GetByTypeAndVersion(tv)
}

// GetByTypeAndVersion returns the descriptor for tv.
func GetByTypeAndVersion(tv TypeAndVersion) (Descriptor, error) {
	d, ok := registry[tv.String()]
	if !ok {
		return Descriptor{}, fmt.Errorf("%s: %w", tv, ErrContractNotFound)
	}

	return d, nil
}

// MustGet is like Get but panics when the descriptor does not exist.
func MustGet(t ContractType, version string) Descriptor {
	d, err := Get(t, version)
	if err != nil {
		panic(err)
	}

	return d
}

// All returns every descriptor sorted by type and then version.
func All() []Descriptor {
	all := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		all = append(all, d)
	}
	slices.SortFunc(all, func(a, b Descriptor) int {
		if c := strings.Compare(string(a.Type), string(b.Type)); c != 0 {
			return c
		}

		return a.Version.Compare(&b.Version)
	})

	return all
}

// Versions returns the versions available for a contract type in ascending order.
func Versions(t ContractType) []*semver.Version {
	var versions []*semver.Version
	for _, d := range registry {
		if d.Type == t {
			v := d.Version
			versions = append(versions, &v)
		}
	}
	slices.SortFunc(versions, func(a, b *semver.Version) int {
		return a.Compare(b)
	})

	return versions
}
