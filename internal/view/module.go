package view

import (
	"os"

	"go.uber.org/fx"

	"github.com/weisyn/zkapp/internal/core/orchestrator"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/event"
)

// Module 在终端输出状态面板
func Module() fx.Option {
	return fx.Module("view",
		fx.Invoke(AttachTerminal),
	)
}

// AttachTerminal 将渲染器挂到事件总线，输出到标准输出
func AttachTerminal(bus event.EventBus, orch *orchestrator.Orchestrator) error {
	return NewRenderer(os.Stdout, orch.ExplorerURL).Attach(bus)
}
