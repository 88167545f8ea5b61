package orchestrator

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	"github.com/weisyn/zkapp/internal/core/store"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
)

// ModuleInput 编排模块依赖
type ModuleInput struct {
	fx.In

	Bridge   Bridge
	Wallets  walletif.Environment
	Store    *store.Store
	Options  *zkappconfig.ZkappOptions
	Logger   log.Logger
	EventBus event.EventBus   `optional:"true"`
	Metrics  *metrics.Metrics `optional:"true"`
	Clock    clock.Clock      `optional:"true"`
}

// Module 返回编排模块
//
// 提供 *Orchestrator 与 *Runner；是否在启动时运行 Runner 由上层决定。
func Module() fx.Option {
	return fx.Module("orchestrator",
		fx.Provide(
			func(in ModuleInput) *Orchestrator {
				return New(Deps{
					Bridge:   in.Bridge,
					Wallets:  in.Wallets,
					Store:    in.Store,
					Options:  in.Options,
					Logger:   logimpl.NewModuleLogger(in.Logger, "orchestrator"),
					EventBus: in.EventBus,
					Metrics:  in.Metrics,
					Clock:    in.Clock,
				})
			},
			NewRunner,
		),
	)
}

// StartRunner 在应用启动时运行后台流程，停止时取消
func StartRunner(lc fx.Lifecycle, r *Runner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			r.Start()
			return nil
		},
		OnStop: r.Stop,
	})
}
