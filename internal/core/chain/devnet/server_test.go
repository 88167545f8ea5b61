package devnet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/internal/core/testutil"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/types"
)

func newTestDevnet(t *testing.T) (*testutil.LedgerFixture, *chain.RemoteNetwork) {
	t.Helper()
	f := testutil.NewLedgerFixture(t)
	srv := httptest.NewServer(NewServer(f.Ledger, &testutil.MockLogger{}).Handler())
	t.Cleanup(srv.Close)
	return f, chain.NewRemoteNetwork(chain.LocalNetworkID, srv.URL+"/graphql", 5*time.Second, &testutil.MockLogger{})
}

func TestRemoteNetwork_FetchAccount(t *testing.T) {
	f, remote := newTestDevnet(t)
	ctx := context.Background()

	acc, err := remote.FetchAccount(ctx, f.Zkapp)
	require.NoError(t, err)
	want, err := f.Ledger.FetchAccount(ctx, f.Zkapp)
	require.NoError(t, err)
	assert.Equal(t, want, acc)

	payer, err := remote.FetchAccount(ctx, f.Payer.Public)
	require.NoError(t, err)
	assert.False(t, payer.IsZkapp())
	assert.Nil(t, payer.ZkappState)

	stranger, err := chain.NewKeyPairFromSeed(make([]byte, 32))
	require.NoError(t, err)
	_, err = remote.FetchAccount(ctx, stranger.Public)
	assert.ErrorIs(t, err, chainif.ErrAccountNotFound)
}

func TestRemoteNetwork_SendZkapp(t *testing.T) {
	f, remote := newTestDevnet(t)
	ctx := context.Background()

	cmd := testutil.SignCommand(t, f.Payer, f.ProvedUpdate(t), types.NanominaPerMina/10, 0)
	hash, err := remote.SendZkapp(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, chain.TransactionHash([]byte(cmd)), hash)

	acc, err := remote.FetchAccount(ctx, f.Zkapp)
	require.NoError(t, err)
	num, ok := f.Instance.ReadNum(acc)
	require.True(t, ok)
	assert.Equal(t, "3", num)

	// 账本拒绝的交易以 GraphQL 错误返回
	_, err = remote.SendZkapp(ctx, cmd)
	var gerr *chain.GraphQLError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, strings.Join(gerr.Messages, ";"), "bad nonce")
}

func TestServer_Health(t *testing.T) {
	f := testutil.NewLedgerFixture(t)
	s := NewServer(f.Ledger, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "local", body["network"])
	assert.EqualValues(t, 0, body["transactions"])
}

func TestServer_StartStop(t *testing.T) {
	f := testutil.NewLedgerFixture(t)
	s := NewServer(f.Ledger, &testutil.MockLogger{})
	require.NoError(t, s.Start("127.0.0.1:0"))
	assert.True(t, strings.HasSuffix(s.Endpoint(), "/graphql"))

	remote := chain.NewRemoteNetwork(chain.LocalNetworkID, s.Endpoint(), time.Second, nil)
	_, err := remote.FetchAccount(context.Background(), f.Zkapp)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestServer_Faucet(t *testing.T) {
	f := testutil.NewLedgerFixture(t)
	s := NewServer(f.Ledger, &testutil.MockLogger{})
	user := types.MustParsePublicKey(testutil.ZkappAddress)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/faucet", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		s.Handler().ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, post(`{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"publicKey":"nope"}`).Code)

	w := post(`{"publicKey":"` + testutil.ZkappAddress + `","amount":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2000000000", resp["funded"])

	acc, err := f.Ledger.FetchAccount(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "2000000000", acc.Balance.Total)
}
