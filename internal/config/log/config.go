package log

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/weisyn/zkapp/pkg/types"
)

// LogOptions 日志配置选项
type LogOptions struct {
	Level     string `json:"level"`      // debug | info | warn | error | fatal
	ToConsole bool   `json:"to_console"` // 是否输出到控制台
	FilePath  string `json:"file_path"`  // 日志文件路径，空表示不写文件

	Rotation Rotation `json:"rotation"`

	EnableCaller     bool `json:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace"` // 仅 Error 及以上

	// 多文件模式：worker 边界两侧的日志写 BridgeLogFile，编排与对外服务写 AppLogFile
	EnableMultiFile bool   `json:"enable_multi_file"`
	BridgeLogFile   string `json:"bridge_log_file"`
	AppLogFile      string `json:"app_log_file"`
}

// Rotation 日志文件轮转策略（交给 lumberjack 执行）
type Rotation struct {
	MaxSizeMB  int  `json:"max_size_mb"`
	MaxBackups int  `json:"max_backups"`
	MaxAgeDays int  `json:"max_age_days"`
	Compress   bool `json:"compress"`
}

// Config 日志配置实现
type Config struct {
	options *LogOptions
}

// New 默认值 + 用户覆盖
func New(userConfig *types.UserLogConfig) *Config {
	options := createDefaultLogOptions()
	if userConfig != nil {
		applyUserLogConfig(options, userConfig)
	}
	return &Config{options: options}
}

// NewFromOptions 直接使用已解析的配置选项
func NewFromOptions(options *LogOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

func createDefaultLogOptions() *LogOptions {
	return &LogOptions{
		Level:     defaultLogLevel,
		ToConsole: defaultToConsole,
		FilePath:  defaultFilePath,
		Rotation: Rotation{
			MaxSizeMB:  defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAgeDays: defaultMaxAgeDays,
			Compress:   defaultCompress,
		},
		EnableCaller:     defaultEnableCaller,
		EnableStacktrace: defaultEnableStacktrace,
		EnableMultiFile:  defaultEnableMultiFile,
		BridgeLogFile:    defaultBridgeLogFile,
		AppLogFile:       defaultAppLogFile,
	}
}

// applyUserLogConfig 只处理配置文件中实际出现的字段
//
// ⚠️ 指定文件路径时默认关闭控制台输出（终端留给状态面板），显式的 to_console 优先。
func applyUserLogConfig(options *LogOptions, c *types.UserLogConfig) {
	if c.Level != nil {
		options.Level = strings.ToLower(*c.Level)
	}
	if c.FilePath != nil {
		options.FilePath = *c.FilePath
		options.ToConsole = *c.FilePath == ""
	}
	if c.ToConsole != nil {
		options.ToConsole = *c.ToConsole
	}
	if c.MultiFile != nil {
		options.EnableMultiFile = *c.MultiFile
	}
}

// GetOptions 获取完整的日志配置选项
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

// GetZapLevel 未知级别按 info 处理
func (c *Config) GetZapLevel() zapcore.Level {
	if level, ok := levels[c.options.Level]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// IsConsoleEnabled 是否启用控制台输出
func (c *Config) IsConsoleEnabled() bool {
	return c.options.ToConsole
}

// GetFilePath 获取日志文件路径
func (c *Config) GetFilePath() string {
	return c.options.FilePath
}

// IsMultiFileEnabled 只有写文件时才拆分
func (c *Config) IsMultiFileEnabled() bool {
	return c.options.EnableMultiFile && c.options.FilePath != ""
}

// GetBridgeLogPath 桥接日志完整路径，与 file_path 同目录
func (c *Config) GetBridgeLogPath() string {
	return filepath.Join(filepath.Dir(c.options.FilePath), c.options.BridgeLogFile)
}

// GetAppLogPath 应用日志完整路径，与 file_path 同目录
func (c *Config) GetAppLogPath() string {
	return filepath.Join(filepath.Dir(c.options.FilePath), c.options.AppLogFile)
}

// GetRotation 日志轮转策略
func (c *Config) GetRotation() Rotation {
	return c.options.Rotation
}

// IsCallerEnabled 是否启用调用者信息
func (c *Config) IsCallerEnabled() bool {
	return c.options.EnableCaller
}

// IsStacktraceEnabled 是否启用堆栈跟踪
func (c *Config) IsStacktraceEnabled() bool {
	return c.options.EnableStacktrace
}

// CreateFileEncoder 文件日志使用 JSON
func (c *Config) CreateFileEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(encoderConfig(zapcore.ISO8601TimeEncoder, zapcore.LowercaseLevelEncoder))
}

// CreateConsoleEncoder 控制台日志使用带颜色的文本
func (c *Config) CreateConsoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(encoderConfig(zapcore.TimeEncoderOfLayout("15:04:05.000"), zapcore.CapitalColorLevelEncoder))
}

func encoderConfig(encodeTime zapcore.TimeEncoder, encodeLevel zapcore.LevelEncoder) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     encodeTime,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    encodeLevel,
	}
}
