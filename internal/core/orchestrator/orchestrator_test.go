package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/zkapp/internal/config/event"
	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
	"github.com/weisyn/zkapp/internal/core/bridge/client"
	"github.com/weisyn/zkapp/internal/core/bridge/protocol"
	eventimpl "github.com/weisyn/zkapp/internal/core/infrastructure/event"
	"github.com/weisyn/zkapp/internal/core/store"
	"github.com/weisyn/zkapp/internal/core/testutil"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/event"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
	"github.com/weisyn/zkapp/pkg/types"
)

const (
	userKey  = "B62quser"
	zkappKey = testutil.ZkappAddress
)

// fakeBridge 记录调用顺序的桥接
type fakeBridge struct {
	mu    sync.Mutex
	calls []string

	fetch      func(publicKey58 string) (*protocol.FetchAccountResult, error)
	value      string
	valueOK    bool
	valueErr   error
	proveErr   error
	serialized string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		fetch: func(string) (*protocol.FetchAccountResult, error) {
			return &protocol.FetchAccountResult{Account: &types.Account{}}, nil
		},
		value:      "1",
		valueOK:    true,
		serialized: `{"zkappAddress":"x"}`,
	}
}

func (b *fakeBridge) record(call string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
}

func (b *fakeBridge) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBridge) SelectNetwork(ctx context.Context, networkID, endpoint string) error {
	b.record("network-select")
	return nil
}

func (b *fakeBridge) LoadContract(ctx context.Context) error {
	b.record("load-contract")
	return nil
}

func (b *fakeBridge) CompileContract(ctx context.Context) (*protocol.CompileResult, error) {
	b.record("compile-contract")
	return &protocol.CompileResult{Constraints: 2}, nil
}

func (b *fakeBridge) FetchAccount(ctx context.Context, publicKey58 string) (*protocol.FetchAccountResult, error) {
	b.record("fetch-account:" + publicKey58)
	return b.fetch(publicKey58)
}

func (b *fakeBridge) InitContractInstance(ctx context.Context, publicKey58 string) error {
	b.record("init-contract-instance:" + publicKey58)
	return nil
}

func (b *fakeBridge) BuildUpdateTransaction(ctx context.Context) error {
	b.record("build-update-transaction")
	return nil
}

func (b *fakeBridge) ProveTransaction(ctx context.Context) error {
	b.record("prove-transaction")
	return b.proveErr
}

func (b *fakeBridge) SerializeTransaction(ctx context.Context) (string, error) {
	b.record("serialize-transaction")
	return b.serialized, nil
}

func (b *fakeBridge) FetchCurrentValue(ctx context.Context) (string, bool, error) {
	b.record("fetch-current-value")
	return b.value, b.valueOK, b.valueErr
}

func testOptions() *zkappconfig.ZkappOptions {
	opts := zkappconfig.New(nil).GetOptions()
	opts.WarmupDelay = 0
	return opts
}

type harness struct {
	orch   *Orchestrator
	bridge *fakeBridge
	wallet *testutil.FakeWallet
	store  *store.Store
	bus    event.EventBus
	clock  *clock.Mock
	opts   *zkappconfig.ZkappOptions
}

func newHarness(t *testing.T, withWallet bool) *harness {
	t.Helper()
	h := &harness{
		bridge: newFakeBridge(),
		wallet: &testutil.FakeWallet{Accounts: []string{userKey}},
		bus:    eventimpl.New(eventconfig.New(nil), &testutil.MockLogger{}),
		clock:  clock.NewMock(),
		opts:   testOptions(),
	}
	h.store = store.New(h.bus, nil)
	env := walletif.StaticEnvironment{}
	if withWallet {
		env.Provider = h.wallet
	}
	h.orch = New(Deps{
		Bridge:   h.bridge,
		Wallets:  env,
		Store:    h.store,
		Options:  h.opts,
		Logger:   &testutil.MockLogger{},
		EventBus: h.bus,
		Clock:    h.clock,
	})
	return h
}

func notFound() *protocol.FetchAccountResult {
	return &protocol.FetchAccountResult{Error: &types.FetchError{StatusCode: 404, StatusText: "not found"}}
}

// ============================================================================
// Setup
// ============================================================================

func TestSetup_NoWallet(t *testing.T) {
	h := newHarness(t, false)

	err := h.orch.Setup(context.Background())
	assert.ErrorIs(t, err, ErrNoWallet)

	st := h.store.Snapshot()
	require.NotNil(t, st.HasWallet)
	assert.False(t, *st.HasWallet)
	assert.False(t, st.HasBeenSetup)
	assert.Empty(t, st.SetupError, "钱包缺失不算初始化失败")
	// 在查询任何账户之前终止
	assert.Equal(t, []string{"network-select"}, h.bridge.Calls())
}

func TestSetup_Sequence(t *testing.T) {
	h := newHarness(t, true)
	h.bridge.fetch = func(pk string) (*protocol.FetchAccountResult, error) {
		if pk == userKey {
			return notFound(), nil
		}
		return &protocol.FetchAccountResult{Account: &types.Account{PublicKey: pk}}, nil
	}

	var completed []store.State
	require.NoError(t, h.bus.Subscribe(types.EventTypeSetupCompleted, func(st store.State) {
		completed = append(completed, st)
	}))

	require.NoError(t, h.orch.Setup(context.Background()))

	assert.Equal(t, []string{
		"network-select",
		"fetch-account:" + userKey,
		"load-contract",
		"compile-contract",
		"init-contract-instance:" + zkappKey,
		"fetch-account:" + zkappKey,
		"fetch-current-value",
	}, h.bridge.Calls())

	st := h.store.Snapshot()
	assert.True(t, st.HasBeenSetup)
	assert.True(t, *st.HasWallet)
	assert.False(t, st.AccountExists)
	assert.Equal(t, "1", *st.Num)
	assert.Equal(t, userKey, st.PublicKey)
	assert.Equal(t, zkappKey, st.ZkappPublicKey)
	require.Len(t, completed, 1)

	assert.ErrorIs(t, h.orch.Setup(context.Background()), ErrAlreadySetup)
}

func TestSetup_WaitsWarmup(t *testing.T) {
	h := newHarness(t, true)
	h.opts.WarmupDelay = 4 * time.Second
	start := h.clock.Now()

	done := make(chan error, 1)
	go func() { done <- h.orch.Setup(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, h.bridge.Calls(), "预热结束前不调用 worker")

	require.Eventually(t, func() bool {
		h.clock.Add(time.Second)
		return len(h.bridge.Calls()) > 0
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, <-done)
	assert.GreaterOrEqual(t, h.clock.Now().Sub(start), 4*time.Second)
}

func TestSetup_InProgress(t *testing.T) {
	h := newHarness(t, true)
	h.opts.WarmupDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.orch.Setup(ctx) }()

	// 第二次调用使用已取消的 ctx，抢到执行权时立即返回
	cancelled, stop := context.WithCancel(context.Background())
	stop()
	require.Eventually(t, func() bool {
		return errors.Is(h.orch.Setup(cancelled), ErrSetupInProgress)
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, h.store.Snapshot().HasBeenSetup)
	assert.Empty(t, h.store.Snapshot().SetupError)
}

func TestSetup_RecordsFailureAndRetries(t *testing.T) {
	h := newHarness(t, true)
	h.bridge.valueErr = errors.New("worker 断开")

	err := h.orch.Setup(context.Background())
	require.Error(t, err)
	st := h.store.Snapshot()
	require.NotNil(t, st.HasWallet, "检测到钱包后立即记录")
	assert.True(t, *st.HasWallet)
	assert.Equal(t, err.Error(), st.SetupError)

	// 重试成功后清除失败原因
	h.bridge.valueErr = nil
	require.NoError(t, h.orch.Setup(context.Background()))
	st = h.store.Snapshot()
	assert.True(t, st.HasBeenSetup)
	assert.Empty(t, st.SetupError)
}

func TestSetup_NoAccounts(t *testing.T) {
	h := newHarness(t, true)
	h.wallet.Accounts = nil
	assert.ErrorIs(t, h.orch.Setup(context.Background()), ErrNoAccounts)

	h.wallet.AccountErr = walletif.ErrUserRejected
	assert.ErrorIs(t, h.orch.Setup(context.Background()), walletif.ErrUserRejected)
}

func TestSetup_NoValue(t *testing.T) {
	h := newHarness(t, true)
	h.bridge.valueOK = false

	var completed int
	require.NoError(t, h.bus.Subscribe(types.EventTypeSetupCompleted, func(store.State) { completed++ }))

	assert.ErrorIs(t, h.orch.Setup(context.Background()), ErrNoValue)
	st := h.store.Snapshot()
	assert.False(t, st.HasBeenSetup)
	assert.Nil(t, st.Num, "没有值时不写入初始化结果")
	assert.Contains(t, st.SetupError, ErrNoValue.Error())
	assert.Zero(t, completed)

	// worker 端合约账户未缓存
	h.bridge.valueOK = true
	h.bridge.valueErr = client.ErrNotReady
	assert.ErrorIs(t, h.orch.Setup(context.Background()), ErrNoValue)
}

// ============================================================================
// PollAccount
// ============================================================================

func setupDone(t *testing.T, h *harness, accountExists bool) {
	t.Helper()
	h.store.SetupState(store.SetupParams{
		PublicKey:      userKey,
		ZkappPublicKey: zkappKey,
		AccountExists:  accountExists,
		Num:            "1",
	})
}

func TestPollAccount_RetriesUntilFunded(t *testing.T) {
	const failures = 3
	h := newHarness(t, true)
	setupDone(t, h, false)

	var (
		mu       sync.Mutex
		attempts []time.Time
	)
	h.bridge.fetch = func(string) (*protocol.FetchAccountResult, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts = append(attempts, h.clock.Now())
		if len(attempts) <= failures {
			return notFound(), nil
		}
		return &protocol.FetchAccountResult{Account: &types.Account{}}, nil
	}

	done := make(chan error, 1)
	go func() { done <- h.orch.PollAccount(context.Background()) }()

	var pollErr error
	require.Eventually(t, func() bool {
		select {
		case pollErr = <-done:
			return true
		default:
			h.clock.Add(h.opts.PollInterval)
			return false
		}
	}, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, pollErr)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, attempts, failures+1)
	for i := 1; i < len(attempts); i++ {
		assert.GreaterOrEqual(t, attempts[i].Sub(attempts[i-1]), h.opts.PollInterval)
	}
	assert.True(t, h.store.Snapshot().AccountExists)

	// 单向：再次调用不再查询
	require.NoError(t, h.orch.PollAccount(context.Background()))
	assert.Len(t, attempts, failures+1)
}

func TestPollAccount_Noop(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.orch.PollAccount(context.Background()), "未初始化")

	setupDone(t, h, true)
	require.NoError(t, h.orch.PollAccount(context.Background()), "账户已存在")
	assert.Empty(t, h.bridge.Calls())
}

func TestPollAccount_Cancel(t *testing.T) {
	h := newHarness(t, true)
	setupDone(t, h, false)
	h.bridge.fetch = func(string) (*protocol.FetchAccountResult, error) { return notFound(), nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.orch.PollAccount(ctx) }()

	require.Eventually(t, func() bool { return len(h.bridge.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, h.store.Snapshot().AccountExists)
}

// ============================================================================
// SendUpdate / RefreshValue
// ============================================================================

func TestSendUpdate_Success(t *testing.T) {
	h := newHarness(t, true)
	setupDone(t, h, true)
	h.opts.Memo = "hello"

	var sentHashes []string
	require.NoError(t, h.bus.Subscribe(types.EventTypeTransactionSent, func(hash string) {
		sentHashes = append(sentHashes, hash)
	}))

	hash, err := h.orch.SendUpdate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "5JtestHash", hash)
	assert.Equal(t, []string{hash}, sentHashes)
	assert.Equal(t, "https://berkeley.minaexplorer.com/transaction/5JtestHash", h.orch.ExplorerURL(hash))

	sent := h.wallet.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, h.bridge.serialized, sent[0].Transaction)
	assert.Equal(t, walletif.FeePayer{Fee: 0.1, Memo: "hello"}, sent[0].FeePayer)

	assert.Equal(t, []string{
		"fetch-account:" + userKey,
		"fetch-account:" + zkappKey,
		"build-update-transaction",
		"prove-transaction",
		"serialize-transaction",
	}, h.bridge.Calls())
	assert.False(t, h.store.Snapshot().CreatingTransaction)
}

func TestSendUpdate_ClearsFlagOnEveryPath(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(h *harness)
		wantErr error
	}{
		{
			name:    "缺少交易JSON",
			prepare: func(h *harness) { h.bridge.serialized = "" },
			wantErr: ErrNoTransaction,
		},
		{
			name:    "证明失败",
			prepare: func(h *harness) { h.bridge.proveErr = &client.RemoteError{Op: protocol.OpProveTransaction, Code: protocol.CodePanic} },
		},
		{
			name: "钱包拒绝",
			prepare: func(h *harness) {
				h.wallet.Submit = func(context.Context, walletif.SendTransactionArgs) (*walletif.SendTransactionResult, error) {
					return nil, walletif.ErrUserRejected
				}
			},
			wantErr: walletif.ErrUserRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			setupDone(t, h, true)
			tt.prepare(h)

			var flags []bool
			require.NoError(t, h.bus.Subscribe(types.EventTypeStoreChanged, func(st store.State) {
				flags = append(flags, st.CreatingTransaction)
			}))

			_, err := h.orch.SendUpdate(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.False(t, h.store.Snapshot().CreatingTransaction)
			assert.Equal(t, []bool{true, false}, flags)
		})
	}
}

func TestSendUpdate_NotSetup(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.orch.SendUpdate(context.Background())
	assert.ErrorIs(t, err, ErrNotSetup)
	assert.False(t, h.store.Snapshot().CreatingTransaction)
}

func TestSendUpdate_RejectsOverlap(t *testing.T) {
	h := newHarness(t, true)
	setupDone(t, h, true)
	require.True(t, h.store.TryBeginTransaction())

	_, err := h.orch.SendUpdate(context.Background())
	assert.ErrorIs(t, err, ErrTransactionInFlight)
	assert.True(t, h.store.Snapshot().CreatingTransaction, "被拒绝的调用不清除他人的标志")
	assert.Empty(t, h.wallet.Sent())
}

func TestRefreshValue(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.orch.RefreshValue(context.Background())
	assert.ErrorIs(t, err, ErrNotSetup)

	setupDone(t, h, true)
	h.bridge.value = "7"

	first, err := h.orch.RefreshValue(context.Background())
	require.NoError(t, err)
	second, err := h.orch.RefreshValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7", first)
	assert.Equal(t, first, second)
	assert.Equal(t, "7", *h.store.Snapshot().Num)
}
