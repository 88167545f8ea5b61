package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/zkapp/configs"
	"github.com/weisyn/zkapp/internal/app"
	logconfig "github.com/weisyn/zkapp/internal/config/log"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	configif "github.com/weisyn/zkapp/pkg/interfaces/config"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkapp/pkg/types"
)

// stopTimeout 服务停止超时
const stopTimeout = 10 * time.Second

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigFile string // 配置文件路径
	Local      bool   // 配置文件不存在时使用内置的本地 devnet 配置
	Network    string // 覆盖 zkapp.network_id
	Endpoint   string // 覆盖 zkapp.graphql_endpoint
	Worker     string // 覆盖 zkapp.worker_endpoint
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "zkapp",
	Short: "zkApp 客户端与 worker 桥接工具",
	Long: `zkapp - 通过 worker 桥接执行零知识证明合约交互

合约计算、证明与交易构建全部由 worker 完成，客户端只负责流程编排：
- 初始化：选择网络、加载并编译合约、读取账户与合约当前值
- 轮询：等待账户到账
- 更新：构建、证明并通过钱包提交 update 交易

worker 可以在进程内运行，也可以通过 "zkapp worker" 单独部署后以 WebSocket 连接。`,
	SilenceUsage: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Printfln("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "./configs/zkapp.json", "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Local, "local", false, "配置文件不存在时使用内置本地 devnet 配置")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Network, "network", "", "网络标识 (berkeley|local)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Endpoint, "endpoint", "", "链 GraphQL 地址")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Worker, "worker", "", "远程 worker WebSocket 地址")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(devnetCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(versionCmd)
}

// configOptions 由全局标志生成配置相关的应用选项
func configOptions(extra ...app.Option) []app.Option {
	embedded := configs.Default()
	if globalFlags.Local {
		embedded = configs.Local()
	}
	opts := []app.Option{
		app.WithConfigFile(globalFlags.ConfigFile),
		app.WithEmbeddedConfig(embedded),
		app.WithOverride(applyFlagOverrides),
	}
	return append(opts, extra...)
}

// applyFlagOverrides 将命令行标志写入用户配置
func applyFlagOverrides(c *types.UserConfig) {
	if globalFlags.Network == "" && globalFlags.Endpoint == "" && globalFlags.Worker == "" {
		return
	}
	if c.Zkapp == nil {
		c.Zkapp = &types.UserZkappConfig{}
	}
	if globalFlags.Network != "" {
		c.Zkapp.NetworkID = types.StringPtr(globalFlags.Network)
	}
	if globalFlags.Endpoint != "" {
		c.Zkapp.GraphQLEndpoint = types.StringPtr(globalFlags.Endpoint)
	}
	if globalFlags.Worker != "" {
		c.Zkapp.WorkerEndpoint = types.StringPtr(globalFlags.Worker)
	}
}

// newLogger 为不装配完整应用的子命令创建日志器
func newLogger(provider configif.Provider) (log.Logger, error) {
	logger, err := logimpl.New(logconfig.NewFromOptions(provider.GetLog()))
	if err != nil {
		return nil, fmt.Errorf("创建日志记录器失败: %w", err)
	}
	logimpl.SetLogger(logger)
	return logger, nil
}

// signalContext 收到 Ctrl+C 或 SIGTERM 时取消
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// stopServer 在超时内停止服务
func stopServer(name string, stop func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		pterm.Warning.Printfln("停止 %s 时出错: %v", name, err)
	}
}
