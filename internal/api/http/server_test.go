package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkapp/internal/api/http/handlers"
	"github.com/weisyn/zkapp/internal/api/http/types"
	apiconfig "github.com/weisyn/zkapp/internal/config/api"
	"github.com/weisyn/zkapp/internal/core/bridge/client"
	"github.com/weisyn/zkapp/internal/core/bridge/protocol"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	"github.com/weisyn/zkapp/internal/core/orchestrator"
	"github.com/weisyn/zkapp/internal/core/store"
	"github.com/weisyn/zkapp/internal/core/testutil"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
)

type fakeFlow struct {
	mu       sync.Mutex
	sendErr  error
	value    string
	valueErr error
	sends    int
}

func (f *fakeFlow) SendUpdate(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "5Jhash", nil
}

func (f *fakeFlow) RefreshValue(ctx context.Context) (string, error) {
	return f.value, f.valueErr
}

func (f *fakeFlow) ExplorerURL(hash string) string {
	return "https://explorer/tx/" + hash
}

func newTestServer(t *testing.T, flow *fakeFlow) (*Server, *store.Store, *metrics.Metrics) {
	t.Helper()
	st := store.New(nil, nil)
	m := metrics.New()
	s := NewServer(Deps{
		Options: apiconfig.New(nil).GetOptions(),
		Flow:    flow,
		State:   st,
		Logger:  &testutil.MockLogger{},
		Metrics: m,
	})
	return s, st, m
}

func do(s *Server, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestServer_State(t *testing.T) {
	s, st, _ := newTestServer(t, &fakeFlow{})

	w := do(s, http.MethodGet, "/state")
	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "loading", resp.Stage)
	assert.Nil(t, resp.HasWallet)

	st.SetSetupError("编译合约失败")
	w = do(s, http.MethodGet, "/state")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "setup_failed", resp.Stage)
	assert.Equal(t, "编译合约失败", resp.SetupError)

	resp = handlers.StateResponse{}
	st.SetupState(store.SetupParams{PublicKey: "B62quser", ZkappPublicKey: "B62qzkapp", AccountExists: true, Num: "3"})
	w = do(s, http.MethodGet, "/state")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Stage)
	assert.Equal(t, "B62quser", resp.PublicKey)
	require.NotNil(t, resp.Num)
	assert.Equal(t, "3", *resp.Num)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_SendTransaction(t *testing.T) {
	flow := &fakeFlow{}
	s, _, _ := newTestServer(t, flow)

	w := do(s, http.MethodPost, "/transactions")
	require.Equal(t, http.StatusOK, w.Code)
	var resp handlers.TransactionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "5Jhash", resp.Hash)
	assert.Equal(t, "https://explorer/tx/5Jhash", resp.ExplorerURL)
}

func TestServer_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{orchestrator.ErrTransactionInFlight, http.StatusConflict, types.ErrTxInFlight},
		{orchestrator.ErrNotSetup, http.StatusConflict, types.ErrNotSetup},
		{orchestrator.ErrNoWallet, http.StatusConflict, types.ErrNoWallet},
		{orchestrator.ErrNoTransaction, http.StatusConflict, types.ErrNoTransaction},
		{fmt.Errorf("钱包提交交易失败: %w", walletif.ErrUserRejected), http.StatusForbidden, types.ErrUserRejected},
		{fmt.Errorf("生成证明失败: %w", &client.RemoteError{Op: protocol.OpProveTransaction, Code: protocol.CodeExecutionFailed}), http.StatusBadGateway, types.ErrWorkerFailed},
		{client.ErrClosed, http.StatusServiceUnavailable, types.ErrWorkerUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, types.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			s, _, _ := newTestServer(t, &fakeFlow{sendErr: tt.err})
			w := do(s, http.MethodPost, "/transactions")
			assert.Equal(t, tt.status, w.Code)

			var resp types.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestServer_RefreshValue(t *testing.T) {
	flow := &fakeFlow{value: "7"}
	s, _, _ := newTestServer(t, flow)

	w := do(s, http.MethodPost, "/value/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"num":"7"}`, w.Body.String())

	flow.valueErr = orchestrator.ErrNoValue
	w = do(s, http.MethodPost, "/value/refresh")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s, _, _ := newTestServer(t, &fakeFlow{})

	w := do(s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","stage":"loading"}`, w.Body.String())

	do(s, http.MethodGet, "/state")
	w = do(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `zkapp_api_requests_total{method="GET",route="/state",status="200"} 1`)
}

func TestServer_StartPortDrift(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	s, _, _ := newTestServer(t, &fakeFlow{})
	s.options = &apiconfig.APIOptions{Enabled: true, ListenAddr: busy.Addr().String()}
	require.NoError(t, s.Start())
	assert.NotEqual(t, busy.Addr().String(), s.Addr())

	resp, err := http.Get("http://" + s.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.True(t, strings.HasPrefix(s.Addr(), "127.0.0.1:"))
}
