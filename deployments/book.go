// Package deployments records where the Safe contracts are deployed.
//
// A Book holds default addresses, valid on every EVM chain the singleton factory deployed them
// to, and per-chain overrides keyed by chain selector. Lookups prefer the override. Chains the
// singleton factory never reached can be excluded from the defaults.
package deployments

import (
	"errors"
	"fmt"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/ethereum/go-ethereum/common"
	chainsel "github.com/smartcontractkit/chain-selectors"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/safe-adapters/contracts"
)

var (
	ErrInvalidChainSelector = errors.New("invalid chain selector")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrAddressNotFound      = errors.New("address not found")
	ErrAddressExists        = errors.New("address already recorded")
)

// Entry is one recorded deployment.
type Entry struct {
	TypeAndVersion contracts.TypeAndVersion
	Address        common.Address
}

// Book is an address book of Safe deployments. It is safe for concurrent use.
type Book struct {
	mtx sync.RWMutex
	// defaults maps TypeAndVersion strings to addresses.
	defaults *treemap.Map
	// byChain maps chain selectors to a *treemap.Map of TypeAndVersion strings to addresses.
	byChain *treemap.Map
	// excluded holds the selectors of chains that only see their own entries.
	excluded *treeset.Set
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{
		defaults: treemap.NewWithStringComparator(),
		byChain:  treemap.NewWith(utils.UInt64Comparator),
		excluded: treeset.NewWith(utils.UInt64Comparator),
	}
}

// SaveDefault records the address tv is deployed at on every chain without an override.
func (b *Book) SaveDefault(tv contracts.TypeAndVersion, address string) error {
	addr, err := validate(tv, address)
	if err != nil {
		return err
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	return put(b.defaults, tv, addr)
}

// ExcludeDefaults stops the chain with the given selector from seeing the default addresses.
// Lookups on it only return what was saved for that chain.
func (b *Book) ExcludeDefaults(chainSelector uint64) error {
	if err := validateSelector(chainSelector); err != nil {
		return err
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.excluded.Add(chainSelector)

	return nil
}

// Save records the address tv is deployed at on the chain with the given selector. Addresses are
// stored in EIP-55 form. Recording a second address for the same contract version fails.
func (b *Book) Save(chainSelector uint64, tv contracts.TypeAndVersion, address string) error {
	if err := validateSelector(chainSelector); err != nil {
		return err
	}
	addr, err := validate(tv, address)
	if err != nil {
		return err
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	chain, ok := b.byChain.Get(chainSelector)
	if !ok {
		chain = treemap.NewWithStringComparator()
		b.byChain.Put(chainSelector, chain)
	}

	return put(chain.(*treemap.Map), tv, addr)
}

// Address returns the address of tv on the chain with the given selector.
func (b *Book) Address(chainSelector uint64, tv contracts.TypeAndVersion) (common.Address, error) {
	if err := validateSelector(chainSelector); err != nil {
		return common.Address{}, err
	}

	b.mtx.RLock()
	defer b.mtx.RUnlock()

	if chain, ok := b.byChain.Get(chainSelector); ok {
		if addr, ok := chain.(*treemap.Map).Get(tv.String()); ok {
			return addr.(common.Address), nil
		}
	}
	if !b.excluded.Contains(chainSelector) {
		if addr, ok := b.defaults.Get(tv.String()); ok {
			return addr.(common.Address), nil
		}
	}

	return common.Address{}, fmt.Errorf("%w: %s on chain selector %d", ErrAddressNotFound, tv, chainSelector)
}

// Entries returns every deployment visible on the chain with the given selector, sorted by
// TypeAndVersion.
func (b *Book) Entries(chainSelector uint64) ([]Entry, error) {
	if err := validateSelector(chainSelector); err != nil {
		return nil, err
	}

	b.mtx.RLock()
	defer b.mtx.RUnlock()

	merged := treemap.NewWithStringComparator()
	if !b.excluded.Contains(chainSelector) {
		b.defaults.Each(func(k, v any) { merged.Put(k, v) })
	}
	if chain, ok := b.byChain.Get(chainSelector); ok {
		chain.(*treemap.Map).Each(func(k, v any) { merged.Put(k, v) })
	}

	return toEntries(merged)
}

// ChainSelectors returns the selectors of the chains with overrides in ascending order.
func (b *Book) ChainSelectors() []uint64 {
	b.mtx.RLock()
	defer b.mtx.RUnlock()

	selectors := make([]uint64, 0, b.byChain.Size())
	for _, k := range b.byChain.Keys() {
		selectors = append(selectors, k.(uint64))
	}

	return selectors
}

// bookFile is the YAML layout of a Book.
type bookFile struct {
	Defaults map[string]string            `yaml:"defaults,omitempty"`
	Chains   map[uint64]map[string]string `yaml:"chains,omitempty"`
	Excluded []uint64                     `yaml:"excluded,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (b *Book) MarshalYAML() (any, error) {
	b.mtx.RLock()
	defer b.mtx.RUnlock()

	f := bookFile{Defaults: toStrings(b.defaults)}
	if b.byChain.Size() > 0 {
		f.Chains = make(map[uint64]map[string]string, b.byChain.Size())
		b.byChain.Each(func(k, v any) {
			f.Chains[k.(uint64)] = toStrings(v.(*treemap.Map))
		})
	}
	for _, v := range b.excluded.Values() {
		f.Excluded = append(f.Excluded, v.(uint64))
	}

	return f, nil
}

// ParseBook reads a book from its YAML form.
func ParseBook(data []byte) (*Book, error) {
	var f bookFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address book: %w", err)
	}

	b := NewBook()
	for tvStr, addr := range f.Defaults {
		tv, err := contracts.TypeAndVersionFromString(tvStr)
		if err != nil {
			return nil, err
		}
		if err = b.SaveDefault(tv, addr); err != nil {
			return nil, err
		}
	}
	for _, selector := range f.Excluded {
		if err := b.ExcludeDefaults(selector); err != nil {
			return nil, err
		}
	}
	for selector, entries := range f.Chains {
		for tvStr, addr := range entries {
			tv, err := contracts.TypeAndVersionFromString(tvStr)
			if err != nil {
				return nil, err
			}
			if err = b.Save(selector, tv, addr); err != nil {
				return nil, err
			}
		}
	}

	return b, nil
}

func validateSelector(chainSelector uint64) error {
	family, err := chainsel.GetSelectorFamily(chainSelector)
	if err != nil {
		return fmt.Errorf("chain selector %d: %w", chainSelector, ErrInvalidChainSelector)
	}
	if family != chainsel.FamilyEVM {
		return fmt.Errorf("chain selector %d is not an EVM chain: %w", chainSelector, ErrInvalidChainSelector)
	}

	return nil
}

func validate(tv contracts.TypeAndVersion, address string) (common.Address, error) {
	if tv.Type == "" {
		return common.Address{}, errors.New("type cannot be empty")
	}
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("address %q is not a valid Ethereum address: %w", address, ErrInvalidAddress)
	}

	addr := common.HexToAddress(address)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("address cannot be zero: %w", ErrInvalidAddress)
	}

	return addr, nil
}

func put(m *treemap.Map, tv contracts.TypeAndVersion, addr common.Address) error {
	if existing, ok := m.Get(tv.String()); ok {
		return fmt.Errorf("%w: %s at %s", ErrAddressExists, tv, existing.(common.Address).Hex())
	}
	m.Put(tv.String(), addr)

	return nil
}

func toStrings(m *treemap.Map) map[string]string {
	out := make(map[string]string, m.Size())
	m.Each(func(k, v any) {
		out[k.(string)] = v.(common.Address).Hex()
	})

	return out
}

func toEntries(m *treemap.Map) ([]Entry, error) {
	entries := make([]Entry, 0, m.Size())
	it := m.Iterator()
	for it.Next() {
		tv, err := contracts.TypeAndVersionFromString(it.Key().(string))
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{TypeAndVersion: tv, Address: it.Value().(common.Address)})
	}

	return entries, nil
}
