package app

import (
	"github.com/weisyn/zkapp/pkg/interfaces/config"
	"github.com/weisyn/zkapp/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
// 实现config.AppOptions接口
type options struct {
	// 配置文件路径
	configFilePath string

	// 嵌入的配置内容（配置文件不存在时使用）
	embeddedConfig []byte

	// 在配置文件之后应用的覆盖（命令行参数）
	overrides []func(*types.UserConfig)

	// 用户配置（加载后设置）
	userConfig *types.UserConfig

	enableAPI    bool // 本地状态服务
	enableView   bool // 终端状态面板
	enableRunner bool // 启动后自动执行 Setup 与账户轮询
}

// 编译时校验options是否实现了config.AppOptions接口
var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 配置文件不存在时使用的默认配置内容
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) {
		o.embeddedConfig = configBytes
	}
}

// WithOverride 在配置文件之上修改用户配置
func WithOverride(fn func(*types.UserConfig)) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, fn)
	}
}

// WithAPI 启用状态服务
func WithAPI() Option {
	return func(o *options) {
		o.enableAPI = true
	}
}

// WithView 启用终端状态面板
func WithView() Option {
	return func(o *options) {
		o.enableView = true
	}
}

// WithRunner 启动后在后台执行初始化与账户轮询
func WithRunner() Option {
	return func(o *options) {
		o.enableRunner = true
	}
}

// newOptions 创建选项，默认只装配核心模块
func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetUserConfig 实现config.AppOptions接口
func (o *options) GetUserConfig() *types.UserConfig {
	return o.userConfig
}
