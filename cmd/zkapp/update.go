package main

import (
	"context"
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/zkapp/internal/app"
	"github.com/weisyn/zkapp/internal/core/orchestrator"
)

// updateCmd 执行一次 update 交易
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "发送一次合约 update 交易",
	Long:  "完成初始化后等待账户到账，再由 worker 构建并证明 update 交易，通过钱包签名提交。",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		application, err := app.BootstrapApp(configOptions()...)
		if err != nil {
			return err
		}
		defer func() { _ = application.Stop() }()

		spinner, _ := pterm.DefaultSpinner.Start("初始化 zkApp...")
		if err := setupOnce(ctx, application); err != nil {
			spinner.Fail(err.Error())
			return err
		}

		orch := application.Orchestrator()
		if !application.Store().Snapshot().AccountExists {
			spinner.UpdateText("账户尚未到账，等待中...")
			if err := orch.PollAccount(ctx); err != nil {
				spinner.Fail(err.Error())
				return err
			}
		}

		spinner.UpdateText("生成证明并提交交易...")
		hash, err := orch.SendUpdate(ctx)
		if err != nil {
			spinner.Fail(err.Error())
			return err
		}
		spinner.Success("交易已提交")

		pterm.Info.Printfln("交易哈希: %s", hash)
		pterm.Info.Printfln("区块浏览器: %s", orch.ExplorerURL(hash))
		return nil
	},
}

// valueCmd 读取合约当前值
var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "读取合约当前值",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		application, err := app.BootstrapApp(configOptions()...)
		if err != nil {
			return err
		}
		defer func() { _ = application.Stop() }()

		spinner, _ := pterm.DefaultSpinner.Start("读取合约状态...")
		if err := setupOnce(ctx, application); err != nil {
			spinner.Fail(err.Error())
			return err
		}
		st := application.Store().Snapshot()
		if st.Num == nil {
			spinner.Warning("合约没有可读的当前值")
			return nil
		}
		spinner.Success("读取完成")
		pterm.Info.Printfln("合约 %s 当前值: %s", st.ZkappPublicKey, *st.Num)
		return nil
	},
}

// setupOnce 执行初始化，未安装钱包时给出提示
func setupOnce(ctx context.Context, application app.App) error {
	err := application.Orchestrator().Setup(ctx)
	if errors.Is(err, orchestrator.ErrNoWallet) {
		pterm.Warning.Println("请在配置中设置 zkapp.wallet_mnemonic_file（可用 zkapp keygen 生成）")
	}
	return err
}
