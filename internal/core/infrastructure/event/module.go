// Package event 提供事件管理功能
package event

import (
	"go.uber.org/fx"

	eventconfig "github.com/weisyn/zkapp/internal/config/event"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/pkg/interfaces/config"
	eventInterface "github.com/weisyn/zkapp/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider // 配置提供者
	Logger    log.Logger      `optional:"true"` // 日志记录器（可选）
	Lifecycle fx.Lifecycle    // 生命周期管理
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus // 基础事件总线
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideEventBus),
	)
}

// ProvideEventBus 创建事件总线，停止时等待异步处理器完成
func ProvideEventBus(input ModuleInput) ModuleOutput {
	bus := New(
		eventconfig.NewFromOptions(input.Provider.GetEvent()),
		logimpl.NewModuleLogger(input.Logger, "event"),
	)
	input.Lifecycle.Append(fx.StopHook(bus.WaitAsync))
	return ModuleOutput{EventBus: bus}
}
