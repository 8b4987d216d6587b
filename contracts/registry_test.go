package contracts

import (
	"encoding/json"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		giveType    ContractType
		giveVersion string
		wantFile    string
		wantErr     error
		wantErrMsg  string
	}{
		{name: "safe 1.3.0", giveType: Safe, giveVersion: "1.3.0", wantFile: "GnosisSafe_v1.3.0.json"},
		{name: "safe 1.4.1", giveType: Safe, giveVersion: "1.4.1", wantFile: "Safe_v1.4.1.json"},
		{name: "factory 1.2.0 shares the 1.1.1 abi", giveType: SafeProxyFactory, giveVersion: "1.2.0", wantFile: "ProxyFactory_v1.1.1.json"},
		{name: "version without v prefix normalized", giveType: MultiSend, giveVersion: "v1.4.1", wantFile: "MultiSend_v1.3.0.json"},
		{name: "unknown version", giveType: Safe, giveVersion: "1.5.0", wantErr: ErrContractNotFound},
		{name: "unknown type", giveType: "Token", giveVersion: "1.3.0", wantErr: ErrContractNotFound},
		{name: "invalid version", giveType: Safe, giveVersion: "latest", wantErrMsg: "invalid version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Get(tt.giveType, tt.giveVersion)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				return
			case tt.wantErrMsg != "":
				require.ErrorContains(t, err, tt.wantErrMsg)
				return
			}
			require.NoError(t, err)

			want, err := artifacts.ReadFile(path.Join("abi", tt.wantFile))
			require.NoError(t, err)
			assert.Equal(t, string(want), got.RawABI(), "raw ABI is the embedded file")
			assert.Equal(t, tt.giveType, got.Type)
		})
	}
}

func TestMustGet(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { MustGet(Safe, DefaultVersion) })
	assert.Panics(t, func() { MustGet(Safe, "0.0.1") })
}

func TestAll(t *testing.T) {
	t.Parallel()

	all := All()
	require.Len(t, all, len(artifactTable))

	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.Type == cur.Type {
			assert.True(t, prev.Version.LessThan(&cur.Version), "%s before %s", prev, cur)
		} else {
			assert.Less(t, string(prev.Type), string(cur.Type))
		}
	}

	for _, d := range all {
		var entries []map[string]any
		require.NoError(t, json.Unmarshal([]byte(d.RawABI()), &entries), d.String())
		assert.NotEmpty(t, d.ABI().Methods, d.String())
	}
}

func TestVersions(t *testing.T) {
	t.Parallel()

	var got []string
	for _, v := range Versions(Safe) {
		got = append(got, v.String())
	}
	assert.Equal(t, []string{"1.0.0", "1.1.1", "1.2.0", "1.3.0", "1.4.1"}, got)

	assert.Len(t, Versions(SimulateTxAccessor), 2)
	assert.Empty(t, Versions("Token"))
}

func TestDescriptor(t *testing.T) {
	t.Parallel()

	lib := MustGet(SignMessageLib, "1.3.0")
	assert.True(t, lib.Deployable())
	assert.NotEmpty(t, lib.Bytecode())

	code := lib.Bytecode()
	code[0] ^= 0xff
	assert.NotEqual(t, code, lib.Bytecode(), "bytecode is copied")

	assert.False(t, MustGet(SignMessageLib, "1.4.1").Deployable())
	assert.Nil(t, MustGet(Safe, "1.3.0").Bytecode())

	safe := MustGet(Safe, "1.3.0")
	assert.True(t, safe.HasMethod("getThreshold"))
	assert.False(t, safe.HasMethod("getModules"))
	assert.True(t, MustGet(Safe, "1.1.1").HasMethod("getModules"))

	data, err := safe.Pack("getThreshold")
	require.NoError(t, err)
	assert.Equal(t, safe.ABI().Methods["getThreshold"].ID, data)

	_, err = safe.Pack("nope")
	require.ErrorContains(t, err, "failed to pack Safe.nope")

	out, err := safe.Unpack("getThreshold", make([]byte, 32))
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, err = safe.Unpack("getThreshold", []byte{0x01})
	require.ErrorContains(t, err, "failed to unpack Safe.getThreshold")

	_, err = NewDescriptor(safe.TypeAndVersion, "not json", nil)
	require.ErrorContains(t, err, "failed to parse ABI of Safe 1.3.0")
}

func TestLoadRegistry_MissingArtifact(t *testing.T) {
	t.Parallel()

	_, err := loadRegistry([]artifact{{Safe, "1.3.0", "Missing.json", ""}})
	require.ErrorContains(t, err, "missing ABI artifact for Safe 1.3.0")

	_, err = loadRegistry([]artifact{{Safe, "x", "GnosisSafe_v1.3.0.json", ""}})
	require.ErrorContains(t, err, "invalid version")
}

func TestTypeAndVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		give    string
		want    TypeAndVersion
		wantErr string
	}{
		{give: "Safe 1.3.0", want: MustTypeAndVersion(Safe, "1.3.0")},
		{give: "  MultiSendCallOnly   1.4.1 ", want: MustTypeAndVersion(MultiSendCallOnly, "1.4.1")},
		{give: "Safe", wantErr: "invalid type and version string"},
		{give: "Safe 1.3.0 extra", wantErr: "invalid type and version string"},
		{give: "Safe one", wantErr: "invalid version"},
	}

	for _, tt := range tests {
		t.Run(tt.give, func(t *testing.T) {
			t.Parallel()

			got, err := TypeAndVersionFromString(tt.give)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, tt.want.String(), got.String())
		})
	}

	assert.Panics(t, func() { MustTypeAndVersion(Safe, "bad") })
	assert.Equal(t, "Safe", Safe.String())
}
