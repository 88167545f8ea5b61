// Package testutil 提供核心模块测试的辅助工具
//
// 🧪 **测试辅助工具包**
//
// 本包提供测试所需的 Mock 对象，用于简化测试代码编写。
package testutil

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	apiconfig "github.com/weisyn/zkapp/internal/config/api"
	eventconfig "github.com/weisyn/zkapp/internal/config/event"
	logconfig "github.com/weisyn/zkapp/internal/config/log"
	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// ==================== Mock 对象 ====================

// MockLogger 统一的日志Mock实现
//
// ✅ **设计原则**：最小实现，所有方法返回空值，不记录日志
// 📋 **使用场景**：不需要验证日志调用的测试
type MockLogger struct{}

func (m *MockLogger) Debug(msg string)                          {}
func (m *MockLogger) Debugf(format string, args ...interface{}) {}
func (m *MockLogger) Info(msg string)                           {}
func (m *MockLogger) Infof(format string, args ...interface{})  {}
func (m *MockLogger) Warn(msg string)                           {}
func (m *MockLogger) Warnf(format string, args ...interface{})  {}
func (m *MockLogger) Error(msg string)                          {}
func (m *MockLogger) Errorf(format string, args ...interface{}) {}
func (m *MockLogger) Fatal(msg string)                          {}
func (m *MockLogger) Fatalf(format string, args ...interface{}) {}
func (m *MockLogger) With(args ...interface{}) log.Logger       { return m }
func (m *MockLogger) Sync() error                               { return nil }
func (m *MockLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// BehavioralMockLogger 行为Mock日志（记录调用）
//
// ✅ **设计原则**：记录所有日志调用（格式化后的消息），用于验证日志行为
// 📋 **使用场景**：需要断言警告或错误被记录的测试
type BehavioralMockLogger struct {
	logs  []string
	mutex sync.Mutex
}

func (m *BehavioralMockLogger) record(level, msg string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.logs = append(m.logs, level+": "+msg)
}

func (m *BehavioralMockLogger) Debug(msg string) { m.record("DEBUG", msg) }
func (m *BehavioralMockLogger) Debugf(format string, args ...interface{}) {
	m.record("DEBUG", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) Info(msg string) { m.record("INFO", msg) }
func (m *BehavioralMockLogger) Infof(format string, args ...interface{}) {
	m.record("INFO", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) Warn(msg string) { m.record("WARN", msg) }
func (m *BehavioralMockLogger) Warnf(format string, args ...interface{}) {
	m.record("WARN", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) Error(msg string) { m.record("ERROR", msg) }
func (m *BehavioralMockLogger) Errorf(format string, args ...interface{}) {
	m.record("ERROR", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) Fatal(msg string) { m.record("FATAL", msg) }
func (m *BehavioralMockLogger) Fatalf(format string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(format, args...))
}
func (m *BehavioralMockLogger) With(args ...interface{}) log.Logger { return m }
func (m *BehavioralMockLogger) Sync() error                         { return nil }
func (m *BehavioralMockLogger) GetZapLogger() *zap.Logger           { return zap.NewNop() }

// GetLogs 获取所有日志记录
func (m *BehavioralMockLogger) GetLogs() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string(nil), m.logs...)
}

// ClearLogs 清空日志记录
func (m *BehavioralMockLogger) ClearLogs() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.logs = nil
}

// HasLog 是否存在指定级别且包含子串的日志
func (m *BehavioralMockLogger) HasLog(level, substr string) bool {
	for _, l := range m.GetLogs() {
		if strings.HasPrefix(l, level+": ") && strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// MockConfigProvider 配置提供者Mock
//
// 字段为 nil 时返回各配置包的默认值
type MockConfigProvider struct {
	Log   *logconfig.LogOptions
	Event *eventconfig.EventOptions
	Zkapp *zkappconfig.ZkappOptions
	API   *apiconfig.APIOptions
}

func (m *MockConfigProvider) GetLog() *logconfig.LogOptions {
	if m.Log != nil {
		return m.Log
	}
	return logconfig.New(nil).GetOptions()
}

func (m *MockConfigProvider) GetEvent() *eventconfig.EventOptions {
	if m.Event != nil {
		return m.Event
	}
	return eventconfig.New(nil).GetOptions()
}

func (m *MockConfigProvider) GetZkapp() *zkappconfig.ZkappOptions {
	if m.Zkapp != nil {
		return m.Zkapp
	}
	return zkappconfig.New(nil).GetOptions()
}

func (m *MockConfigProvider) GetAPI() *apiconfig.APIOptions {
	if m.API != nil {
		return m.API
	}
	return apiconfig.New(nil).GetOptions()
}
