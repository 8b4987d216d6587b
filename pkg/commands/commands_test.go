package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/safe-adapters/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	lggr := logger.Nop()
	cmds := New(lggr)

	require.NotNil(t, cmds)
	assert.Equal(t, lggr, cmds.lggr)
}

func TestCommands_Root(t *testing.T) {
	t.Parallel()

	root := New(logger.Nop()).Root()

	assert.Equal(t, "safe-adapter", root.Use)
	assert.True(t, root.SilenceUsage)

	for _, name := range []string{"config", "backend", "network", "rpc-url", "infura-key"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "c", root.PersistentFlags().Lookup("config").Shorthand)

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"inspect", "contracts", "approve-hash"}, names)
}

func TestCommands_Factories(t *testing.T) {
	t.Parallel()

	cmds := New(logger.Nop())

	tests := []struct {
		name string
		give func() string
		want string
	}{
		{name: "inspect", give: func() string { return cmds.Inspect().Use }, want: "inspect"},
		{name: "contracts", give: func() string { return cmds.Contracts().Use }, want: "contracts"},
		{name: "approve-hash", give: func() string { return cmds.ApproveHash().Use }, want: "approve-hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.give())
		})
	}
}
