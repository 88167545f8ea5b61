package log

import "go.uber.org/zap/zapcore"

const (
	defaultLogLevel  = "info"
	defaultToConsole = true
	defaultFilePath  = "" // 仅输出到控制台

	defaultMaxSizeMB  = 50
	defaultMaxBackups = 5
	defaultMaxAgeDays = 14
	defaultCompress   = true

	defaultEnableCaller     = true
	defaultEnableStacktrace = true

	// 桥接日志：worker / client / channel / chain / devnet / contract / wallet
	// 应用日志：orchestrator / store / api / view
	defaultEnableMultiFile = true
	defaultBridgeLogFile   = "bridge.log"
	defaultAppLogFile      = "app.log"
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"fatal": zapcore.FatalLevel,
}
