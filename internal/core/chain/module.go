package chain

import (
	"time"

	"go.uber.org/fx"

	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// remoteTimeout 远程 GraphQL 请求超时
const remoteTimeout = 30 * time.Second

// ModuleInput 链模块依赖
type ModuleInput struct {
	fx.In

	Logger log.Logger `optional:"true"`
}

// ModuleOutput 链模块输出
type ModuleOutput struct {
	fx.Out

	Ledger   *LocalNetwork
	Registry *Registry
	Resolver chainif.Resolver
}

// Module 返回链模块
func Module() fx.Option {
	return fx.Module("chain",
		fx.Provide(ProvideNetworks),
	)
}

// ProvideNetworks 创建进程内账本与网络注册表
func ProvideNetworks(in ModuleInput) ModuleOutput {
	logger := logimpl.NewModuleLogger(in.Logger, "chain")
	ledger := NewLocalNetwork(logger)
	registry := NewRegistry(ledger, remoteTimeout, logger)
	return ModuleOutput{
		Ledger:   ledger,
		Registry: registry,
		Resolver: registry,
	}
}
