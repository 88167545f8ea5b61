// Package config 定义配置提供者接口
package config

import (
	apiconfig "github.com/weisyn/zkapp/internal/config/api"
	eventconfig "github.com/weisyn/zkapp/internal/config/event"
	logconfig "github.com/weisyn/zkapp/internal/config/log"
	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
)

// Provider 配置提供者接口
// 每个方法返回已合并默认值与用户覆盖后的完整配置
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetEvent 获取事件总线配置
	GetEvent() *eventconfig.EventOptions

	// GetZkapp 获取 zkApp 桥接与编排配置
	GetZkapp() *zkappconfig.ZkappOptions

	// GetAPI 获取状态服务配置
	GetAPI() *apiconfig.APIOptions
}
