// Package app 装配并运行 zkApp 应用
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/weisyn/zkapp/internal/api"
	config "github.com/weisyn/zkapp/internal/config"
	"github.com/weisyn/zkapp/internal/core/bridge"
	"github.com/weisyn/zkapp/internal/core/bridge/client"
	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/internal/core/chain/devnet"
	"github.com/weisyn/zkapp/internal/core/contract"
	"github.com/weisyn/zkapp/internal/core/infrastructure/event"
	log "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	"github.com/weisyn/zkapp/internal/core/orchestrator"
	"github.com/weisyn/zkapp/internal/core/store"
	"github.com/weisyn/zkapp/internal/core/wallet"
	"github.com/weisyn/zkapp/internal/view"
	configif "github.com/weisyn/zkapp/pkg/interfaces/config"
)

// startTimeout 启动超时（进程内创世需要编译合约）
const startTimeout = 2 * time.Minute

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App

	orch  *orchestrator.Orchestrator
	store *store.Store
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 基础设施层：配置、日志、事件、指标
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configif.AppOptions { return b.opts }),
		config.Module(),  // 1. 配置(不依赖其他)
		log.Module(),     // 2. 日志(依赖配置)
		event.Module(),   // 3. 事件(依赖配置和日志)
		metrics.Module(), // 4. 指标
	}
}

// SetupCoreLayer 核心层：链、合约、钱包、worker 桥接、状态、编排
//
// 加载顺序遵循依赖关系：合约密钥 -> 链 -> 钱包 -> 创世 -> 桥接 -> 状态 -> 编排
func (b *Bootstrap) SetupCoreLayer() []fx.Option {
	return []fx.Option{
		contract.Module(),
		chain.Module(),
		wallet.Module(),
		devnet.Module(),
		bridge.Module(),
		store.Module(),
		fx.Provide(func(c *client.Client) orchestrator.Bridge { return c }),
		orchestrator.Module(),
	}
}

// SetupApplicationLayer 应用层：状态服务、终端面板、后台流程
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	var modules []fx.Option
	if b.opts.enableAPI {
		modules = append(modules, api.Module())
	}
	if b.opts.enableView {
		modules = append(modules, view.Module())
	}
	if b.opts.enableRunner {
		modules = append(modules, fx.Invoke(orchestrator.StartRunner))
	}
	return modules
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	userConfig, err := loadUserConfig(b.opts)
	if err != nil {
		return err
	}
	b.opts.userConfig = userConfig

	var modules []fx.Option
	modules = append(modules, b.SetupInfrastructureLayer()...)
	modules = append(modules, b.SetupCoreLayer()...)
	modules = append(modules, b.SetupApplicationLayer()...)

	b.fxApp = fx.New(
		fx.Options(modules...),
		fx.WithLogger(func(z *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: z}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.StartTimeout(startTimeout),
		fx.Populate(&b.orch, &b.store),
	)
	return b.fxApp.Err()
}

// BootstrapApp 执行完整的引导过程并返回已启动的应用
func BootstrapApp(opts ...Option) (App, error) {
	b := NewBootstrap(newOptions(opts...))
	if err := b.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := b.fxApp.Start(ctx); err != nil {
		return nil, fmt.Errorf("启动应用失败: %w", err)
	}
	return &internalApp{bootstrap: b}, nil
}
