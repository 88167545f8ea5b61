package store

import (
	"go.uber.org/fx"

	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// ModuleInput 状态存储依赖
type ModuleInput struct {
	fx.In

	EventBus event.EventBus `optional:"true"`
	Logger   log.Logger     `optional:"true"`
}

// Module 返回状态存储模块
func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(func(in ModuleInput) *Store {
			return New(in.EventBus, logimpl.NewModuleLogger(in.Logger, "store"))
		}),
	)
}
