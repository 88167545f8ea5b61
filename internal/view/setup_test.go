package view

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/zkapp/internal/config/event"
	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
	"github.com/weisyn/zkapp/internal/core/bridge/protocol"
	eventimpl "github.com/weisyn/zkapp/internal/core/infrastructure/event"
	"github.com/weisyn/zkapp/internal/core/orchestrator"
	"github.com/weisyn/zkapp/internal/core/store"
	"github.com/weisyn/zkapp/internal/core/testutil"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
	"github.com/weisyn/zkapp/pkg/types"
)

// stageBridge 在编译合约时记录界面阶段
type stageBridge struct {
	store *store.Store

	mu        sync.Mutex
	compiling []Stage
	valueOK   bool
}

func (b *stageBridge) SelectNetwork(ctx context.Context, networkID, endpoint string) error {
	return nil
}

func (b *stageBridge) LoadContract(ctx context.Context) error { return nil }

func (b *stageBridge) CompileContract(ctx context.Context) (*protocol.CompileResult, error) {
	b.mu.Lock()
	b.compiling = append(b.compiling, StageOf(b.store.Snapshot()))
	b.mu.Unlock()
	return &protocol.CompileResult{Constraints: 2}, nil
}

func (b *stageBridge) FetchAccount(ctx context.Context, publicKey58 string) (*protocol.FetchAccountResult, error) {
	return &protocol.FetchAccountResult{Account: &types.Account{PublicKey: publicKey58}}, nil
}

func (b *stageBridge) InitContractInstance(ctx context.Context, publicKey58 string) error {
	return nil
}

func (b *stageBridge) BuildUpdateTransaction(ctx context.Context) error { return nil }

func (b *stageBridge) ProveTransaction(ctx context.Context) error { return nil }

func (b *stageBridge) SerializeTransaction(ctx context.Context) (string, error) { return "{}", nil }

func (b *stageBridge) FetchCurrentValue(ctx context.Context) (string, bool, error) {
	if !b.valueOK {
		return "", false, nil
	}
	return "1", true, nil
}

func (b *stageBridge) stages() []Stage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Stage(nil), b.compiling...)
}

func TestStageOf_DuringSetup(t *testing.T) {
	var buf bytes.Buffer
	bus := eventimpl.New(eventconfig.New(nil), &testutil.MockLogger{})
	r := NewRenderer(&buf, nil)
	require.NoError(t, r.Attach(bus))

	s := store.New(bus, nil)
	bridge := &stageBridge{store: s}
	opts := zkappconfig.New(nil).GetOptions()
	opts.WarmupDelay = 0
	orch := orchestrator.New(orchestrator.Deps{
		Bridge:   bridge,
		Wallets:  walletif.StaticEnvironment{Provider: &testutil.FakeWallet{Accounts: []string{"B62quser"}}},
		Store:    s,
		Options:  opts,
		Logger:   &testutil.MockLogger{},
		EventBus: bus,
	})
	assert.Equal(t, StageLoading, StageOf(s.Snapshot()))

	// 合约没有可读的值：初始化失败
	err := orch.Setup(context.Background())
	require.ErrorIs(t, err, orchestrator.ErrNoValue)
	assert.Equal(t, []Stage{StageSettingUp}, bridge.stages(), "编译期间处于初始化阶段")

	st := s.Snapshot()
	assert.Equal(t, StageSetupFailed, StageOf(st))
	assert.Equal(t, err.Error(), st.SetupError)
	assert.Contains(t, buf.String(), StageSetupFailed.Message())

	// 重试时回到初始化阶段，成功后进入账户阶段
	bridge.valueOK = true
	require.NoError(t, orch.Setup(context.Background()))
	assert.Equal(t, []Stage{StageSettingUp, StageSettingUp}, bridge.stages())
	assert.Equal(t, StageReady, StageOf(s.Snapshot()))
}
