package http

import (
	"go.uber.org/fx"

	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	"github.com/weisyn/zkapp/internal/core/orchestrator"
	"github.com/weisyn/zkapp/internal/core/store"
	"github.com/weisyn/zkapp/pkg/interfaces/config"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// ModuleInput 状态服务依赖
type ModuleInput struct {
	fx.In

	Lifecycle    fx.Lifecycle
	Provider     config.Provider
	Orchestrator *orchestrator.Orchestrator
	Store        *store.Store
	Logger       log.Logger
	Metrics      *metrics.Metrics `optional:"true"`
}

// Module 返回状态服务模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServer),
	)
}

// ProvideServer 创建服务器；配置启用时随应用生命周期启停
func ProvideServer(in ModuleInput) *Server {
	options := in.Provider.GetAPI()
	s := NewServer(Deps{
		Options: options,
		Flow:    in.Orchestrator,
		State:   in.Store,
		Logger:  logimpl.NewModuleLogger(in.Logger, "api"),
		Metrics: in.Metrics,
	})
	if !options.Enabled {
		s.logger.Info("状态服务在配置中被禁用")
		return s
	}
	in.Lifecycle.Append(fx.StartStopHook(s.Start, s.Stop))
	return s
}
