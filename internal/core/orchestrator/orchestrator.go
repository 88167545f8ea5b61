// Package orchestrator 编排初始化、账户轮询与交易提交流程
//
// 🎯 **流程**：
// - Setup：每个会话执行一次，依次完成网络选择、钱包检测、账户查询、合约编译、实例初始化、读取当前值
// - PollAccount：账户注资前按固定间隔轮询，发现注资后永久停止
// - SendUpdate：用户触发，构建、证明、序列化交易并交给钱包签名广播
// - RefreshValue：重新读取合约当前值
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
	"github.com/weisyn/zkapp/internal/core/bridge/client"
	"github.com/weisyn/zkapp/internal/core/bridge/protocol"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	"github.com/weisyn/zkapp/internal/core/store"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
	"github.com/weisyn/zkapp/pkg/types"
)

// Bridge worker 桥接调用（由 client.Client 实现）
type Bridge interface {
	SelectNetwork(ctx context.Context, networkID, endpoint string) error
	LoadContract(ctx context.Context) error
	CompileContract(ctx context.Context) (*protocol.CompileResult, error)
	FetchAccount(ctx context.Context, publicKey58 string) (*protocol.FetchAccountResult, error)
	InitContractInstance(ctx context.Context, publicKey58 string) error
	BuildUpdateTransaction(ctx context.Context) error
	ProveTransaction(ctx context.Context) error
	SerializeTransaction(ctx context.Context) (string, error)
	FetchCurrentValue(ctx context.Context) (string, bool, error)
}

var _ Bridge = (*client.Client)(nil)

// Deps 编排器依赖
type Deps struct {
	Bridge  Bridge
	Wallets walletif.Environment
	Store   *store.Store
	Options *zkappconfig.ZkappOptions
	Logger  log.Logger

	EventBus event.EventBus   // 可选
	Metrics  *metrics.Metrics // 可选
	Clock    clock.Clock      // 可选，默认真实时钟
}

// Orchestrator 流程编排器
type Orchestrator struct {
	bridge  Bridge
	wallets walletif.Environment
	store   *store.Store
	opts    *zkappconfig.ZkappOptions
	logger  log.Logger
	bus     event.EventBus
	metrics *metrics.Metrics
	clock   clock.Clock

	setupMu      sync.Mutex
	setupRunning bool
}

// New 创建编排器
func New(deps Deps) *Orchestrator {
	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logimpl.GetLogger()
	}
	return &Orchestrator{
		bridge:  deps.Bridge,
		wallets: deps.Wallets,
		store:   deps.Store,
		opts:    deps.Options,
		logger:  logger,
		bus:     deps.EventBus,
		metrics: deps.Metrics,
		clock:   clk,
	}
}

// ============================================================================
// 初始化
// ============================================================================

// Setup 执行一次性的初始化流程
func (o *Orchestrator) Setup(ctx context.Context) error {
	if o.store.Snapshot().HasBeenSetup {
		return ErrAlreadySetup
	}
	o.setupMu.Lock()
	if o.setupRunning {
		o.setupMu.Unlock()
		return ErrSetupInProgress
	}
	o.setupRunning = true
	o.setupMu.Unlock()
	defer func() {
		o.setupMu.Lock()
		o.setupRunning = false
		o.setupMu.Unlock()
	}()

	// 新的尝试清除上一次的失败原因
	o.store.SetSetupError("")
	err := o.setup(ctx)
	if err != nil && recordSetupFailure(err) {
		o.logger.Errorf("初始化失败: %v", err)
		o.store.SetSetupError(err.Error())
	}
	return err
}

// recordSetupFailure 判断错误是否应作为初始化失败展示
// 钱包缺失由 HasWallet 表达，取消属于调用方主动终止
func recordSetupFailure(err error) bool {
	switch {
	case errors.Is(err, ErrNoWallet),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// setup 依次执行初始化步骤
func (o *Orchestrator) setup(ctx context.Context) error {
	start := o.clock.Now()

	// 1. 等待 worker 预热
	o.logger.Infof("等待 worker 预热 %s", o.opts.WarmupDelay)
	if err := o.sleep(ctx, o.opts.WarmupDelay); err != nil {
		return err
	}

	// 2. 选择网络
	if err := o.bridge.SelectNetwork(ctx, o.opts.NetworkID, o.opts.GraphQLEndpoint); err != nil {
		return fmt.Errorf("选择网络失败: %w", err)
	}

	// 3. 检测钱包
	provider, ok := o.wallets.Lookup()
	if !ok {
		o.logger.Warnf("未检测到钱包，初始化终止")
		o.store.SetHasWallet(false)
		return ErrNoWallet
	}
	o.store.SetHasWallet(true)

	// 4. 请求账户
	accounts, err := provider.RequestAccounts(ctx)
	if err != nil {
		return fmt.Errorf("请求钱包账户失败: %w", err)
	}
	if len(accounts) == 0 {
		return ErrNoAccounts
	}
	publicKey := accounts[0]
	o.logger.Infof("使用钱包账户: %s", publicKey)

	// 5. 查询用户账户
	userAccount, err := o.bridge.FetchAccount(ctx, publicKey)
	if err != nil {
		return fmt.Errorf("查询用户账户失败: %w", err)
	}
	accountExists := userAccount.Error == nil
	if !accountExists {
		o.logger.Infof("账户尚未注资: %s", publicKey)
	}

	// 6. 加载并编译合约
	o.logger.Infof("加载合约")
	if err := o.bridge.LoadContract(ctx); err != nil {
		return fmt.Errorf("加载合约失败: %w", err)
	}
	o.logger.Infof("编译合约")
	compiled, err := o.bridge.CompileContract(ctx)
	if err != nil {
		return fmt.Errorf("编译合约失败: %w", err)
	}
	o.logger.Infof("合约编译完成: constraints=%d, 耗时=%dms", compiled.Constraints, compiled.DurationMs)

	// 7. 初始化合约实例
	zkappAddress := o.opts.ContractAddress
	if err := o.bridge.InitContractInstance(ctx, zkappAddress); err != nil {
		return fmt.Errorf("初始化合约实例失败: %w", err)
	}

	// 8. 查询合约账户并读取当前值
	o.logger.Infof("读取合约状态")
	if _, err := o.bridge.FetchAccount(ctx, zkappAddress); err != nil {
		return fmt.Errorf("查询合约账户失败: %w", err)
	}
	num, err := o.currentValue(ctx)
	if err != nil {
		if errors.Is(err, ErrNoValue) {
			o.logger.Warnf("合约 %s 没有可读的当前值，初始化未完成", zkappAddress)
		}
		return err
	}
	o.logger.Infof("合约当前值: %s", num)

	// 9. 一次性发布
	o.store.SetupState(store.SetupParams{
		PublicKey:      publicKey,
		ZkappPublicKey: zkappAddress,
		AccountExists:  accountExists,
		Num:            num,
	})
	o.metrics.SetupCompleted(o.clock.Since(start))
	if o.bus != nil {
		o.bus.Publish(types.EventTypeSetupCompleted, o.store.Snapshot())
	}
	return nil
}

// currentValue 读取合约当前值；未拿到值时返回 ErrNoValue
func (o *Orchestrator) currentValue(ctx context.Context) (string, error) {
	value, ok, err := o.bridge.FetchCurrentValue(ctx)
	if errors.Is(err, client.ErrNotReady) {
		return "", fmt.Errorf("%w: %v", ErrNoValue, err)
	}
	if err != nil {
		return "", fmt.Errorf("读取合约当前值失败: %w", err)
	}
	if !ok {
		return "", ErrNoValue
	}
	return value, nil
}

// ============================================================================
// 账户轮询
// ============================================================================

// PollAccount 轮询账户直到其注资
//
// 只在初始化完成且账户尚未存在时运行；发现账户后停止且不再恢复。
func (o *Orchestrator) PollAccount(ctx context.Context) error {
	st := o.store.Snapshot()
	if !st.HasBeenSetup || st.AccountExists || st.PublicKey == "" {
		return nil
	}

	for attempt := 1; ; attempt++ {
		o.metrics.PollAttempt()
		o.logger.Infof("检查账户是否已注资 (第 %d 次)", attempt)

		result, err := o.bridge.FetchAccount(ctx, st.PublicKey)
		switch {
		case err == nil && result.Error == nil:
			o.store.SetAccountExists(true)
			o.logger.Infof("账户已注资: %s", st.PublicKey)
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.logger.Warnf("查询账户失败: %v", err)
		}

		if err := o.sleep(ctx, o.opts.PollInterval); err != nil {
			return err
		}
	}
}

// sleep 可取消的等待
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := o.clock.Timer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ============================================================================
// 交易
// ============================================================================

// SendUpdate 构建并提交一笔 update 交易，返回交易哈希
//
// 进行中标志在所有路径上都会被清除；重叠调用返回 ErrTransactionInFlight。
func (o *Orchestrator) SendUpdate(ctx context.Context) (hash string, err error) {
	if !o.store.TryBeginTransaction() {
		return "", ErrTransactionInFlight
	}
	defer o.store.SetCreatingTransaction(false)
	defer func() {
		switch {
		case err == nil:
			o.metrics.TransactionResult("sent")
		case errors.Is(err, walletif.ErrUserRejected):
			o.metrics.TransactionResult("rejected")
		default:
			o.metrics.TransactionResult("failed")
		}
	}()

	st := o.store.Snapshot()
	if !st.HasBeenSetup || st.PublicKey == "" {
		return "", ErrNotSetup
	}
	provider, ok := o.wallets.Lookup()
	if !ok {
		return "", ErrNoWallet
	}

	o.logger.Infof("发送交易...")
	if _, err := o.bridge.FetchAccount(ctx, st.PublicKey); err != nil {
		return "", fmt.Errorf("查询用户账户失败: %w", err)
	}
	// 合约状态可能已被上一笔交易改变
	if _, err := o.bridge.FetchAccount(ctx, st.ZkappPublicKey); err != nil {
		return "", fmt.Errorf("查询合约账户失败: %w", err)
	}

	if err := o.bridge.BuildUpdateTransaction(ctx); err != nil {
		return "", fmt.Errorf("构建交易失败: %w", err)
	}
	o.logger.Infof("生成证明...")
	if err := o.bridge.ProveTransaction(ctx); err != nil {
		return "", fmt.Errorf("生成证明失败: %w", err)
	}

	o.logger.Infof("获取交易 JSON...")
	transaction, err := o.bridge.SerializeTransaction(ctx)
	if err != nil {
		return "", fmt.Errorf("序列化交易失败: %w", err)
	}
	if transaction == "" {
		return "", ErrNoTransaction
	}

	o.logger.Infof("请求钱包签名并广播...")
	result, err := provider.SendTransaction(ctx, walletif.SendTransactionArgs{
		Transaction: transaction,
		FeePayer: walletif.FeePayer{
			Fee:  o.opts.TransactionFee,
			Memo: o.opts.Memo,
		},
	})
	if err != nil {
		return "", fmt.Errorf("钱包提交交易失败: %w", err)
	}

	o.logger.Infof("交易已提交，查看: %s", o.ExplorerURL(result.Hash))
	if o.bus != nil {
		o.bus.Publish(types.EventTypeTransactionSent, result.Hash)
	}
	return result.Hash, nil
}

// ExplorerURL 交易在区块浏览器中的地址
func (o *Orchestrator) ExplorerURL(hash string) string {
	return fmt.Sprintf(o.opts.ExplorerTxURL, hash)
}

// RefreshValue 重新读取合约当前值并写入状态
func (o *Orchestrator) RefreshValue(ctx context.Context) (string, error) {
	st := o.store.Snapshot()
	if !st.HasBeenSetup {
		return "", ErrNotSetup
	}
	o.logger.Infof("获取合约最新状态...")
	if _, err := o.bridge.FetchAccount(ctx, st.ZkappPublicKey); err != nil {
		return "", fmt.Errorf("查询合约账户失败: %w", err)
	}
	value, err := o.currentValue(ctx)
	if err != nil {
		return "", err
	}
	o.store.SetNum(value)
	o.logger.Infof("合约当前值: %s", value)
	return value, nil
}
