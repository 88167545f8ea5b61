package main

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/zkapp/internal/api/websocket"
	"github.com/weisyn/zkapp/internal/app"
	"github.com/weisyn/zkapp/internal/core/bridge/registry"
	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/internal/core/contract"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
)

// networkTimeout worker 访问链 GraphQL 的超时
const networkTimeout = 30 * time.Second

var workerFlags struct {
	listen string
}

// workerCmd 独立部署 worker
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "启动 WebSocket worker 服务",
	Long: `以 WebSocket 方式提供 worker，每个连接对应一个独立会话。

worker 进程不持有本地账本，local 网络必须给出 devnet 的 GraphQL 地址。
需要与 devnet 校验证明时，两者应配置相同的 key_store_dir。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := app.LoadConfig(configOptions()...)
		if err != nil {
			return err
		}
		logger, err := newLogger(provider)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		deps := registry.Deps{
			Keys:     contract.ProvideKeyStore(provider.GetZkapp()),
			Networks: chain.NewRegistry(nil, networkTimeout, logimpl.NewModuleLogger(logger, "chain")),
			Logger:   logimpl.NewModuleLogger(logger, "worker"),
			Metrics:  metrics.New(),
		}
		srv := websocket.NewServer(deps, logimpl.NewModuleLogger(logger, "worker"))
		if err := srv.Start(workerFlags.listen); err != nil {
			return err
		}
		pterm.Success.Printfln("worker 已启动: %s", srv.Endpoint())

		sig := app.WaitForSignal()
		pterm.Info.Printfln("收到信号 %v，正在关闭 worker...", sig)
		stopServer("worker", srv.Stop)
		return nil
	},
}

func init() {
	workerCmd.Flags().StringVarP(&workerFlags.listen, "listen", "l", "127.0.0.1:28701", "监听地址")
}
