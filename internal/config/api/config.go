// Package api 提供本地状态服务配置
package api

import "github.com/weisyn/zkapp/pkg/types"

// APIOptions 状态服务配置选项
type APIOptions struct {
	Enabled    bool   `json:"enabled"`     // 是否启用 HTTP 状态服务
	ListenAddr string `json:"listen_addr"` // 监听地址
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置实现
func New(userConfig *types.UserAPIConfig) *Config {
	options := &APIOptions{
		Enabled:    defaultEnabled,
		ListenAddr: defaultListenAddr,
	}
	if userConfig != nil {
		if userConfig.Enabled != nil {
			options.Enabled = *userConfig.Enabled
		}
		if userConfig.ListenAddr != nil {
			options.ListenAddr = *userConfig.ListenAddr
		}
	}
	return &Config{options: options}
}

// GetOptions 获取配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
