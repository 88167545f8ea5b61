package config

import "github.com/weisyn/zkapp/pkg/types"

// AppOptions 应用配置选项接口
// 由应用层从配置文件加载，供 config 模块构建 Provider 使用
type AppOptions interface {
	// GetUserConfig 获取用户配置（可能为 nil，表示全部使用默认值）
	GetUserConfig() *types.UserConfig
}
