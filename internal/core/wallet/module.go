package wallet

import (
	"fmt"

	"go.uber.org/fx"

	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
)

// ModuleInput 钱包模块依赖
type ModuleInput struct {
	fx.In

	Options  *zkappconfig.ZkappOptions
	Networks chainif.Resolver
	Logger   log.Logger `optional:"true"`
}

// Module 返回钱包模块，提供 wallet.Environment
func Module() fx.Option {
	return fx.Module("wallet",
		fx.Provide(ProvideEnvironment),
	)
}

// ProvideEnvironment 未配置助记词文件时视为未安装钱包
func ProvideEnvironment(in ModuleInput) (walletif.Environment, error) {
	path := in.Options.WalletMnemonicFile
	if path == "" {
		return walletif.StaticEnvironment{}, nil
	}
	network, err := in.Networks.Resolve(in.Options.NetworkID, in.Options.GraphQLEndpoint)
	if err != nil {
		return nil, fmt.Errorf("解析钱包网络失败: %w", err)
	}
	return LoadEnvironment(path, network, logimpl.NewModuleLogger(in.Logger, "wallet"))
}
