// Package config 提供应用配置管理功能
package config

import (
	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
	"github.com/weisyn/zkapp/pkg/interfaces/config"
	"github.com/weisyn/zkapp/pkg/types"
	"go.uber.org/fx"
)

// ConfigParams 定义配置模块的依赖参数
type ConfigParams struct {
	fx.In

	// 应用配置选项
	AppOptions config.AppOptions `optional:"true"`
}

// ConfigOutput 定义配置模块的输出结构
type ConfigOutput struct {
	fx.Out

	// 配置提供者
	Provider config.Provider
}

// Module 返回配置模块
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			ProvideConfigServices,
			func(provider config.Provider) *zkappconfig.ZkappOptions {
				return provider.GetZkapp()
			},
		),
	)
}

// ProvideConfigServices 提供配置服务，启动前校验必填项
func ProvideConfigServices(params ConfigParams) (ConfigOutput, error) {
	var userConfig *types.UserConfig
	if params.AppOptions != nil {
		userConfig = params.AppOptions.GetUserConfig()
	}

	if err := ValidateMandatoryConfig(userConfig); err != nil {
		return ConfigOutput{}, err
	}

	return ConfigOutput{
		Provider: NewProvider(userConfig),
	}, nil
}
