package chain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/internal/core/testutil"
)

func TestRegistry_Resolve(t *testing.T) {
	local := chain.NewLocalNetwork(&testutil.MockLogger{})
	reg := chain.NewRegistry(local, time.Second, &testutil.MockLogger{})

	n, err := reg.Resolve("local", "")
	require.NoError(t, err)
	assert.Same(t, local, n)

	n, err = reg.Resolve("berkeley", "")
	require.NoError(t, err)
	remote, ok := n.(*chain.RemoteNetwork)
	require.True(t, ok)
	assert.Equal(t, chain.DefaultEndpoints["berkeley"], remote.Endpoint())
	assert.Equal(t, "berkeley", remote.ID())

	// 同一地址复用客户端
	again, err := reg.Resolve("berkeley", "")
	require.NoError(t, err)
	assert.Same(t, remote, again)

	// local + 地址：访问 devnet 进程
	n, err = reg.Resolve("local", "http://127.0.0.1:28710/graphql")
	require.NoError(t, err)
	assert.IsType(t, &chain.RemoteNetwork{}, n)
	assert.Equal(t, "local", n.ID())

	_, err = reg.Resolve("mainnet", "")
	assert.Error(t, err)
	_, err = reg.Resolve("", "")
	assert.Error(t, err)
}

func TestRegistry_NoLocal(t *testing.T) {
	reg := chain.NewRegistry(nil, 0, nil)
	_, err := reg.Resolve("local", "")
	assert.Error(t, err)
	assert.Nil(t, reg.Local())
}
