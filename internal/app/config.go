package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	config "github.com/weisyn/zkapp/internal/config"
	configif "github.com/weisyn/zkapp/pkg/interfaces/config"
	"github.com/weisyn/zkapp/pkg/types"
)

// LoadConfig 读取并校验配置，返回配置提供者
//
// 供 worker、devnet 等不装配完整应用的子命令使用。
func LoadConfig(opts ...Option) (configif.Provider, error) {
	userConfig, err := loadUserConfig(newOptions(opts...))
	if err != nil {
		return nil, err
	}
	if err := config.ValidateMandatoryConfig(userConfig); err != nil {
		return nil, err
	}
	return config.NewProvider(userConfig), nil
}

// loadUserConfig 读取配置文件并应用命令行覆盖
//
// 📋 **来源优先级**：命令行覆盖 > 配置文件 > 嵌入配置 > 各模块默认值。
// 配置文件不存在时回退到嵌入配置；文件存在但格式错误时直接报错。
func loadUserConfig(o *options) (*types.UserConfig, error) {
	data, source, err := readConfig(o)
	if err != nil {
		return nil, err
	}

	userConfig := &types.UserConfig{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, userConfig); err != nil {
			return nil, fmt.Errorf("解析配置 %s 失败: %w", source, err)
		}
	}
	for _, override := range o.overrides {
		override(userConfig)
	}

	if err := createLogDirectory(userConfig); err != nil {
		return nil, err
	}
	return userConfig, nil
}

func readConfig(o *options) ([]byte, string, error) {
	if o.configFilePath != "" {
		data, err := os.ReadFile(o.configFilePath)
		switch {
		case err == nil:
			return data, o.configFilePath, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, "", fmt.Errorf("读取配置文件失败: %w", err)
		}
	}
	return o.embeddedConfig, "embedded", nil
}

// createLogDirectory 日志文件所在目录不存在时创建
func createLogDirectory(c *types.UserConfig) error {
	if c.Log == nil || c.Log.FilePath == nil || *c.Log.FilePath == "" {
		return nil
	}
	dir := filepath.Dir(*c.Log.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建日志目录 %s 失败: %w", dir, err)
	}
	return nil
}
