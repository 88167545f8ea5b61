package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logconfig "github.com/weisyn/zkapp/internal/config/log"
	"github.com/weisyn/zkapp/pkg/types"
)

// newFileConfig 创建只写文件的日志配置
func newFileConfig(t *testing.T, multiFile bool) (*logconfig.Config, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "zkapp.log")
	cfg := logconfig.New(&types.UserLogConfig{
		Level:     types.StringPtr("debug"),
		FilePath:  types.StringPtr(path),
		MultiFile: types.BoolPtr(multiFile),
	})
	return cfg, dir
}

// TestLogLevels 测试单文件模式下各级别日志都写入
func TestLogLevels(t *testing.T) {
	cfg, dir := newFileConfig(t, false)

	logger, err := New(cfg)
	require.NoError(t, err)

	logger.Debug("调试日志")
	logger.Info("信息日志")
	logger.Warnf("警告日志 %d", 1)
	logger.Error("错误日志")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(filepath.Join(dir, "zkapp.log"))
	require.NoError(t, err)
	for _, msg := range []string{"调试日志", "信息日志", "警告日志 1", "错误日志"} {
		assert.Contains(t, string(content), msg)
	}
}

// TestMultiFileRouting 测试多文件模式按 module 拆分
func TestMultiFileRouting(t *testing.T) {
	cfg, dir := newFileConfig(t, true)

	logger, err := New(cfg)
	require.NoError(t, err)

	NewModuleLogger(logger, "worker").Info("编译合约完成")
	NewModuleLogger(logger, "orchestrator").Info("初始化完成")
	require.NoError(t, logger.Sync())

	bridgeLog, err := os.ReadFile(filepath.Join(dir, "bridge.log"))
	require.NoError(t, err)
	appLog, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)

	assert.Contains(t, string(bridgeLog), "编译合约完成")
	assert.NotContains(t, string(bridgeLog), "初始化完成")
	assert.Contains(t, string(appLog), "初始化完成")
	assert.NotContains(t, string(appLog), "编译合约完成")
}

// TestStructuredLogging 测试 With 附加字段写入 JSON 文件
func TestStructuredLogging(t *testing.T) {
	cfg, dir := newFileConfig(t, false)

	logger, err := New(cfg)
	require.NoError(t, err)

	logger.With("request_id", 7, "op", "prove-transaction").Info("结构化日志测试")
	require.NoError(t, logger.Sync())

	content, err := os.ReadFile(filepath.Join(dir, "zkapp.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"request_id":7`)
	assert.Contains(t, string(content), `"op":"prove-transaction"`)
}

// TestSetLogger 测试设置和切换全局日志记录器
func TestSetLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	logger1, err := New(logconfig.New(nil))
	require.NoError(t, err)
	logger2, err := New(logconfig.New(&types.UserLogConfig{Level: types.StringPtr("warn")}))
	require.NoError(t, err)

	SetLogger(logger1)
	assert.Same(t, logger1, GetLogger())

	SetLogger(logger2)
	assert.Same(t, logger2, GetLogger())

	SetLogger(nil)
	assert.Same(t, logger2, GetLogger(), "nil 不应覆盖全局日志器")
}

// TestResetDefault 测试重置默认日志记录器
func TestResetDefault(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	custom, err := New(logconfig.New(nil))
	require.NoError(t, err)
	SetLogger(custom)

	ResetDefault()
	assert.NotSame(t, custom, GetLogger())
}
