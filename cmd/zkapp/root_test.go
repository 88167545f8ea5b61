package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkapp/pkg/types"
)

func TestApplyFlagOverrides(t *testing.T) {
	defer func(saved GlobalFlags) { globalFlags = saved }(globalFlags)

	globalFlags = GlobalFlags{}
	c := &types.UserConfig{}
	applyFlagOverrides(c)
	assert.Nil(t, c.Zkapp, "未设置标志时不修改配置")

	globalFlags = GlobalFlags{Network: "local", Worker: "ws://127.0.0.1:28701/worker"}
	c = &types.UserConfig{Zkapp: &types.UserZkappConfig{Memo: types.StringPtr("hi")}}
	applyFlagOverrides(c)
	require.NotNil(t, c.Zkapp)
	assert.Equal(t, "local", *c.Zkapp.NetworkID)
	assert.Equal(t, "ws://127.0.0.1:28701/worker", *c.Zkapp.WorkerEndpoint)
	assert.Nil(t, c.Zkapp.GraphQLEndpoint)
	assert.Equal(t, "hi", *c.Zkapp.Memo)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "worker", "devnet", "update", "value", "keygen", "version"} {
		assert.True(t, names[want], want)
	}
}
