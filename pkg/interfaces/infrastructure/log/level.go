// Package log 提供日志级别与日志记录器接口定义
package log

import "github.com/weisyn/zkapp/pkg/types"

// LogLevel 兼容别名（定义位于 pkg/types）
type LogLevel = types.LogLevel

const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)
