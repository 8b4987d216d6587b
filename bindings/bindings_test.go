package bindings

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/safe-adapters/adapter"
	"github.com/smartcontractkit/safe-adapters/contracts"
)

// fakeContract records the last dispatched method and returns canned outputs.
type fakeContract struct {
	desc contracts.Descriptor
	addr common.Address

	out []any
	err error

	gotOp     string
	gotMethod string
	gotArgs   []any
}

var _ adapter.Contract = (*fakeContract)(nil)

func newFakeContract(t *testing.T, ct contracts.ContractType, version string, out ...any) *fakeContract {
	t.Helper()

	desc, err := contracts.Get(ct, version)
	require.NoError(t, err)

	return &fakeContract{desc: desc, addr: common.HexToAddress("0x5afe"), out: out}
}

func (f *fakeContract) Address() common.Address          { return f.addr }
func (f *fakeContract) Descriptor() contracts.Descriptor { return f.desc }

func (f *fakeContract) Call(_ context.Context, method string, args ...any) ([]any, error) {
	f.record("Call", method, args)

	return f.out, f.err
}

func (f *fakeContract) Transact(_ context.Context, method string, args ...any) (adapter.TransactionResult, error) {
	f.record("Transact", method, args)
	if _, err := f.desc.Pack(method, args...); err != nil {
		return adapter.TransactionResult{}, err
	}

	return adapter.TransactionResult{Hash: common.HexToHash("0x01")}, f.err
}

func (f *fakeContract) EstimateGas(_ context.Context, method string, args ...any) (uint64, error) {
	f.record("EstimateGas", method, args)

	return 21000, f.err
}

func (f *fakeContract) Encode(method string, args ...any) ([]byte, error) {
	f.record("Encode", method, args)

	return f.desc.Pack(method, args...)
}

func (f *fakeContract) record(op, method string, args []any) {
	f.gotOp = op
	f.gotMethod = method
	f.gotArgs = args
}

func TestCheckType(t *testing.T) {
	t.Parallel()

	safe := newFakeContract(t, contracts.Safe, "1.3.0")
	multiSend := newFakeContract(t, contracts.MultiSend, "1.3.0")

	_, err := NewSafe(safe)
	require.NoError(t, err)
	_, err = NewSafe(newFakeContract(t, contracts.SafeL2, "1.4.1"))
	require.NoError(t, err)

	_, err = NewSafe(multiSend)
	require.ErrorIs(t, err, ErrWrongContract)
	_, err = NewSafe(nil)
	require.ErrorIs(t, err, ErrWrongContract)
	_, err = NewProxyFactory(safe)
	require.ErrorIs(t, err, ErrWrongContract)
	_, err = NewMultiSend(safe)
	require.ErrorIs(t, err, ErrWrongContract)
	_, err = NewSignMessageLib(multiSend)
	require.ErrorIs(t, err, ErrWrongContract)
	_, err = NewCompatibilityFallbackHandler(multiSend)
	require.ErrorIs(t, err, ErrWrongContract)
	_, err = NewCreateCall(multiSend)
	require.ErrorIs(t, err, ErrWrongContract)
	_, err = NewSimulateTxAccessor(multiSend)
	require.ErrorIs(t, err, ErrWrongContract)
}

func TestBindings_ExposeEmbeddedABI(t *testing.T) {
	t.Parallel()

	wrap := map[contracts.ContractType]func(adapter.Contract) (adapter.Contract, error){
		contracts.Safe:                         func(c adapter.Contract) (adapter.Contract, error) { return NewSafe(c) },
		contracts.SafeL2:                       func(c adapter.Contract) (adapter.Contract, error) { return NewSafe(c) },
		contracts.SafeProxyFactory:             func(c adapter.Contract) (adapter.Contract, error) { return NewProxyFactory(c) },
		contracts.MultiSend:                    func(c adapter.Contract) (adapter.Contract, error) { return NewMultiSend(c) },
		contracts.MultiSendCallOnly:            func(c adapter.Contract) (adapter.Contract, error) { return NewMultiSend(c) },
		contracts.SignMessageLib:               func(c adapter.Contract) (adapter.Contract, error) { return NewSignMessageLib(c) },
		contracts.CompatibilityFallbackHandler: func(c adapter.Contract) (adapter.Contract, error) { return NewCompatibilityFallbackHandler(c) },
		contracts.CreateCall:                   func(c adapter.Contract) (adapter.Contract, error) { return NewCreateCall(c) },
		contracts.SimulateTxAccessor:           func(c adapter.Contract) (adapter.Contract, error) { return NewSimulateTxAccessor(c) },
	}

	for _, desc := range contracts.All() {
		t.Run(desc.String(), func(t *testing.T) {
			t.Parallel()

			newView, ok := wrap[desc.Type]
			require.True(t, ok, "no binding for %s", desc.Type)

			view, err := newView(&fakeContract{desc: desc})
			require.NoError(t, err)
			assert.Equal(t, desc.RawABI(), view.Descriptor().RawABI())
			assert.Equal(t, desc.ABI(), view.Descriptor().ABI())
		})
	}
}

func TestSafe_ReadsForwardVerbatim(t *testing.T) {
	t.Parallel()

	owner := common.HexToAddress("0xbeef")
	hash := common.HexToHash("0xabcd")
	tx := SafeTransaction{
		To:        common.HexToAddress("0x1234"),
		Value:     big.NewInt(7),
		Data:      []byte{0xca, 0xfe},
		Operation: DelegateCall,
		Nonce:     big.NewInt(3),
	}

	tests := []struct {
		name       string
		giveOut    []any
		call       func(s *Safe) (any, error)
		wantMethod string
		wantArgs   []any
		want       any
	}{
		{
			name:       "VERSION",
			giveOut:    []any{"1.3.0"},
			call:       func(s *Safe) (any, error) { return s.Version(t.Context()) },
			wantMethod: "VERSION",
			want:       "1.3.0",
		},
		{
			name:       "getOwners",
			giveOut:    []any{[]common.Address{owner}},
			call:       func(s *Safe) (any, error) { return s.GetOwners(t.Context()) },
			wantMethod: "getOwners",
			want:       []common.Address{owner},
		},
		{
			name:       "getThreshold",
			giveOut:    []any{big.NewInt(2)},
			call:       func(s *Safe) (any, error) { return s.GetThreshold(t.Context()) },
			wantMethod: "getThreshold",
			want:       big.NewInt(2),
		},
		{
			name:       "nonce",
			giveOut:    []any{big.NewInt(9)},
			call:       func(s *Safe) (any, error) { return s.Nonce(t.Context()) },
			wantMethod: "nonce",
			want:       big.NewInt(9),
		},
		{
			name:       "isOwner",
			giveOut:    []any{true},
			call:       func(s *Safe) (any, error) { return s.IsOwner(t.Context(), owner) },
			wantMethod: "isOwner",
			wantArgs:   []any{owner},
			want:       true,
		},
		{
			name:       "isModuleEnabled",
			giveOut:    []any{false},
			call:       func(s *Safe) (any, error) { return s.IsModuleEnabled(t.Context(), owner) },
			wantMethod: "isModuleEnabled",
			wantArgs:   []any{owner},
			want:       false,
		},
		{
			name:       "getChainId",
			giveOut:    []any{big.NewInt(1337)},
			call:       func(s *Safe) (any, error) { return s.GetChainID(t.Context()) },
			wantMethod: "getChainId",
			want:       big.NewInt(1337),
		},
		{
			name:       "domainSeparator",
			giveOut:    []any{[32]byte(hash)},
			call:       func(s *Safe) (any, error) { return s.DomainSeparator(t.Context()) },
			wantMethod: "domainSeparator",
			want:       hash,
		},
		{
			name:       "approvedHashes",
			giveOut:    []any{big.NewInt(1)},
			call:       func(s *Safe) (any, error) { return s.ApprovedHashes(t.Context(), owner, hash) },
			wantMethod: "approvedHashes",
			wantArgs:   []any{owner, [32]byte(hash)},
			want:       big.NewInt(1),
		},
		{
			name:       "getTransactionHash",
			giveOut:    []any{[32]byte(hash)},
			call:       func(s *Safe) (any, error) { return s.GetTransactionHash(t.Context(), tx) },
			wantMethod: "getTransactionHash",
			wantArgs: []any{
				tx.To, big.NewInt(7), []byte{0xca, 0xfe}, uint8(1),
				new(big.Int), new(big.Int), new(big.Int),
				common.Address{}, common.Address{}, big.NewInt(3),
			},
			want: hash,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := newFakeContract(t, contracts.Safe, "1.3.0", tt.giveOut...)
			s, err := NewSafe(fake)
			require.NoError(t, err)

			got, err := tt.call(s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Call", fake.gotOp)
			assert.Equal(t, tt.wantMethod, fake.gotMethod)
			assert.Equal(t, tt.wantArgs, fake.gotArgs)
		})
	}
}

func TestSafe_GetModules(t *testing.T) {
	t.Parallel()

	modules := []common.Address{common.HexToAddress("0x0a")}

	legacy := newFakeContract(t, contracts.Safe, "1.1.1", modules)
	s, err := NewSafe(legacy)
	require.NoError(t, err)
	got, err := s.GetModules(t.Context())
	require.NoError(t, err)
	assert.Equal(t, modules, got)
	assert.Equal(t, "getModules", legacy.gotMethod)

	paginated := newFakeContract(t, contracts.Safe, "1.4.1", modules, SentinelAddress)
	s, err = NewSafe(paginated)
	require.NoError(t, err)
	got, err = s.GetModules(t.Context())
	require.NoError(t, err)
	assert.Equal(t, modules, got)
	assert.Equal(t, "getModulesPaginated", paginated.gotMethod)
	assert.Equal(t, []any{SentinelAddress, big.NewInt(100)}, paginated.gotArgs)

	s, err = NewSafe(newFakeContract(t, contracts.Safe, "1.0.0"))
	require.NoError(t, err)
	_, _, err = s.GetModulesPaginated(t.Context(), SentinelAddress, big.NewInt(10))
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestSafe_UnsupportedAndUnexpected(t *testing.T) {
	t.Parallel()

	s, err := NewSafe(newFakeContract(t, contracts.Safe, "1.2.0"))
	require.NoError(t, err)
	_, err = s.GetChainID(t.Context())
	require.ErrorIs(t, err, ErrUnsupportedMethod)

	tests := []struct {
		name    string
		giveOut []any
	}{
		{name: "no outputs"},
		{name: "wrong type", giveOut: []any{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := NewSafe(newFakeContract(t, contracts.Safe, "1.3.0", tt.giveOut...))
			require.NoError(t, err)

			_, err = s.GetThreshold(t.Context())
			require.ErrorIs(t, err, ErrUnexpectedOutput)
		})
	}
}

func TestSafe_ExecTransaction(t *testing.T) {
	t.Parallel()

	fake := newFakeContract(t, contracts.Safe, "1.4.1")
	s, err := NewSafe(fake)
	require.NoError(t, err)

	tx := SafeTransaction{To: common.HexToAddress("0x1234")}
	sigs := PackSignatures(PreValidatedSignature(common.HexToAddress("0xbeef")))

	data, err := s.EncodeExecTransaction(tx, sigs)
	require.NoError(t, err)

	method := s.Descriptor().ABI().Methods["execTransaction"]
	assert.Equal(t, method.ID, data[:4])
	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Len(t, args, 10)
	assert.Equal(t, tx.To, args[0])
	assert.Zero(t, args[1].(*big.Int).Sign())
	assert.Equal(t, []byte{}, args[2])
	assert.Equal(t, sigs, args[9])

	res, err := s.ExecTransaction(t.Context(), tx, sigs)
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0x01"), res.Hash)
	assert.Equal(t, "Transact", fake.gotOp)
	assert.Equal(t, "execTransaction", fake.gotMethod)

	gas, err := s.EstimateExecTransaction(t.Context(), tx, sigs)
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)

	_, err = s.ApproveHash(t.Context(), common.HexToHash("0xabcd"))
	require.NoError(t, err)
	assert.Equal(t, []any{[32]byte(common.HexToHash("0xabcd"))}, fake.gotArgs)
}

func TestSafe_EncodeSetup(t *testing.T) {
	t.Parallel()

	s, err := NewSafe(newFakeContract(t, contracts.Safe, "1.3.0"))
	require.NoError(t, err)

	owners := []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02")}
	handler := common.HexToAddress("0xf48f2B2d2a534e402487b3ee7C18c33Aec0Fe5e4")

	data, err := s.EncodeSetup(SafeSetup{Owners: owners, Threshold: big.NewInt(2), FallbackHandler: handler})
	require.NoError(t, err)

	args, err := s.Descriptor().ABI().Methods["setup"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, owners, args[0])
	assert.Equal(t, big.NewInt(2), args[1])
	assert.Equal(t, handler, args[4])
	assert.Zero(t, args[6].(*big.Int).Sign())

	for _, encode := range []func() ([]byte, error){
		func() ([]byte, error) { return s.EncodeAddOwnerWithThreshold(owners[0], big.NewInt(1)) },
		func() ([]byte, error) { return s.EncodeRemoveOwner(SentinelAddress, owners[0], big.NewInt(1)) },
		func() ([]byte, error) { return s.EncodeSwapOwner(SentinelAddress, owners[0], owners[1]) },
		func() ([]byte, error) { return s.EncodeChangeThreshold(big.NewInt(1)) },
		func() ([]byte, error) { return s.EncodeEnableModule(owners[0]) },
		func() ([]byte, error) { return s.EncodeDisableModule(SentinelAddress, owners[0]) },
		func() ([]byte, error) { return s.EncodeSetFallbackHandler(handler) },
	} {
		data, err := encode()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(data), 4+32)
	}
}

func TestPackSignatures(t *testing.T) {
	t.Parallel()

	low := common.HexToAddress("0x01")
	high := common.HexToAddress("0xff")

	sig := PreValidatedSignature(high)
	require.Len(t, sig.Data, 65)
	assert.Equal(t, high.Bytes(), sig.Data[12:32])
	assert.Equal(t, make([]byte, 32), sig.Data[32:64])
	assert.Equal(t, byte(1), sig.Data[64])

	packed := PackSignatures(sig, PreValidatedSignature(low))
	require.Len(t, packed, 130)
	assert.Equal(t, low.Bytes(), packed[12:32], "lowest signer first")
	assert.Equal(t, high.Bytes(), packed[65+12:65+32])

	assert.Empty(t, PackSignatures())
}
