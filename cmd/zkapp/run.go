package main

import (
	"github.com/spf13/cobra"

	"github.com/weisyn/zkapp/internal/app"
)

var runFlags struct {
	headless bool
}

// runCmd 启动完整应用
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "启动 zkApp",
	Long: `启动 zkApp：自动完成初始化并轮询账户，终端面板与本地状态服务实时展示状态。

状态服务接口:
  GET  /state            当前状态
  POST /transactions     发送 update 交易
  POST /value/refresh    重新读取合约当前值
  GET  /metrics          Prometheus 指标
  GET  /health           健康检查`,
	RunE: func(cmd *cobra.Command, args []string) error {
		extra := []app.Option{app.WithAPI(), app.WithRunner()}
		if !runFlags.headless {
			extra = append(extra, app.WithView())
		}
		application, err := app.BootstrapApp(configOptions(extra...)...)
		if err != nil {
			return err
		}
		application.Wait()
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runFlags.headless, "headless", false, "不显示终端状态面板")
}
