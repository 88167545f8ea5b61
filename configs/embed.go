// Package configs 内置配置文件
package configs

import _ "embed"

// defaultConfig 未找到配置文件时使用的配置（Berkeley 测试网）
//
//go:embed zkapp.json
var defaultConfig []byte

// localConfig 连接本地 devnet 的示例配置
//
//go:embed local.json
var localConfig []byte

// Default 返回内置默认配置
func Default() []byte {
	return defaultConfig
}

// Local 返回本地 devnet 配置
func Local() []byte {
	return localConfig
}
