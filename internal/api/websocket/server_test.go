package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkapp/internal/core/bridge/channel"
	"github.com/weisyn/zkapp/internal/core/bridge/client"
	"github.com/weisyn/zkapp/internal/core/bridge/registry"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	"github.com/weisyn/zkapp/internal/core/testutil"
)

func startWorkerServer(t *testing.T) (*Server, *testutil.LedgerFixture) {
	t.Helper()
	f := testutil.NewLedgerFixture(t)
	s := NewServer(registry.Deps{
		Keys:     f.Store,
		Networks: testutil.StaticResolver{Network: f.Ledger},
		Logger:   &testutil.MockLogger{},
	}, &testutil.MockLogger{})
	require.NoError(t, s.Start("127.0.0.1:0"))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s, f
}

func dial(t *testing.T, s *Server) *client.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := channel.Dial(ctx, s.Endpoint())
	require.NoError(t, err)
	c := client.New(conn, &testutil.MockLogger{}, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestServer_RemoteSession(t *testing.T) {
	s, f := startWorkerServer(t)
	c := dial(t, s)
	ctx := context.Background()

	require.NoError(t, c.SelectNetwork(ctx, "local", ""))
	require.NoError(t, c.LoadContract(ctx))
	compiled, err := c.CompileContract(ctx)
	require.NoError(t, err)
	assert.True(t, compiled.FromCache, "与账本共享密钥存储")

	require.NoError(t, c.InitContractInstance(ctx, f.Zkapp.String()))
	res, err := c.FetchAccount(ctx, f.Zkapp.String())
	require.NoError(t, err)
	require.Nil(t, res.Error)

	value, ok, err := c.FetchCurrentValue(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", value)
	assert.Equal(t, 1, s.SessionCount())
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	s, _ := startWorkerServer(t)
	ctx := context.Background()

	first := dial(t, s)
	require.NoError(t, first.LoadContract(ctx))

	second := dial(t, s)
	_, err := second.CompileContract(ctx)
	assert.ErrorIs(t, err, client.ErrNotReady, "第二个会话没有加载合约")

	require.Eventually(t, func() bool { return s.SessionCount() == 2 }, time.Second, 10*time.Millisecond)
	require.NoError(t, second.Close())
	require.Eventually(t, func() bool { return s.SessionCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_StopClosesSessions(t *testing.T) {
	s, _ := startWorkerServer(t)
	c := dial(t, s)
	require.NoError(t, c.SelectNetwork(context.Background(), "local", ""))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("客户端未感知连接关闭")
	}
	assert.Zero(t, s.SessionCount())
}

func TestServer_Metrics(t *testing.T) {
	f := testutil.NewLedgerFixture(t)
	m := metrics.New()
	s := NewServer(registry.Deps{
		Keys:     f.Store,
		Networks: testutil.StaticResolver{Network: f.Ledger},
		Logger:   &testutil.MockLogger{},
		Metrics:  m,
	}, &testutil.MockLogger{})
	require.NoError(t, s.Start("127.0.0.1:0"))
	defer func() { _ = s.Stop(context.Background()) }()

	c := dial(t, s)
	require.NoError(t, c.SelectNetwork(context.Background(), "local", ""))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "worker_operations_total")
}
