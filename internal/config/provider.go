package config

import (
	"github.com/weisyn/zkapp/internal/config/api"
	"github.com/weisyn/zkapp/internal/config/event"
	"github.com/weisyn/zkapp/internal/config/log"
	"github.com/weisyn/zkapp/internal/config/zkapp"
	"github.com/weisyn/zkapp/pkg/interfaces/config"
	"github.com/weisyn/zkapp/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	userConfig *types.UserConfig
}

// NewProvider 创建配置提供者
func NewProvider(userConfig *types.UserConfig) config.Provider {
	return &Provider{userConfig: userConfig}
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	var userLogConfig *types.UserLogConfig
	if p.userConfig != nil {
		userLogConfig = p.userConfig.Log
	}
	return log.New(userLogConfig).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *event.EventOptions {
	var userEventConfig *types.UserEventConfig
	if p.userConfig != nil {
		userEventConfig = p.userConfig.Event
	}
	return event.New(userEventConfig).GetOptions()
}

// GetZkapp 获取 zkApp 配置
func (p *Provider) GetZkapp() *zkapp.ZkappOptions {
	var userZkappConfig *types.UserZkappConfig
	if p.userConfig != nil {
		userZkappConfig = p.userConfig.Zkapp
	}
	return zkapp.New(userZkappConfig).GetOptions()
}

// GetAPI 获取状态服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	var userAPIConfig *types.UserAPIConfig
	if p.userConfig != nil {
		userAPIConfig = p.userConfig.API
	}
	return api.New(userAPIConfig).GetOptions()
}
