package main

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/zkapp/internal/app"
	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/internal/core/chain/devnet"
	"github.com/weisyn/zkapp/internal/core/contract"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/wallet"
	"github.com/weisyn/zkapp/pkg/types"
)

var devnetFlags struct {
	listen string
	fund   []string
	amount uint64
}

// devnetCmd 本地 GraphQL 账本
var devnetCmd = &cobra.Command{
	Use:   "devnet",
	Short: "启动本地 GraphQL 账本",
	Long: `启动本地账本：在配置的合约地址部署 Add 合约，为钱包账户和 --fund 指定的账户注资，
并以与测试网相同的 GraphQL 接口对外提供查询与交易提交。

POST /faucet 可在运行期间为任意账户注资。`,
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

		opts := provider.GetZkapp()
		ledger := chain.NewLocalNetwork(logimpl.NewModuleLogger(logger, "chain"))

		var extra []types.PublicKey
		for _, s := range devnetFlags.fund {
			pk, err := types.ParsePublicKey(s)
			if err != nil {
				return fmt.Errorf("注资账户 %s 无效: %w", s, err)
			}
			extra = append(extra, pk)
		}
		wallets, err := wallet.LoadEnvironment(opts.WalletMnemonicFile, ledger, logimpl.NewModuleLogger(logger, "wallet"))
		if err != nil {
			return err
		}
		genesis, err := devnet.NewGenesis(context.Background(), opts, wallets, extra...)
		if err != nil {
			return err
		}
		genesis.Balance = devnetFlags.amount * types.NanominaPerMina

		spinner, _ := pterm.DefaultSpinner.Start("编译并部署合约...")
		compiled, err := devnet.Bootstrap(ledger, contract.ProvideKeyStore(opts), genesis)
		if err != nil {
			spinner.Fail(err.Error())
			return err
		}
		spinner.Success("合约部署完成")

		srv := devnet.NewServer(ledger, logimpl.NewModuleLogger(logger, "devnet"))
		if err := srv.Start(devnetFlags.listen); err != nil {
			return err
		}

		data := pterm.TableData{
			{"项目", "值"},
			{"GraphQL", srv.Endpoint()},
			{"合约地址", genesis.Address.String()},
			{"约束数量", fmt.Sprintf("%d", compiled.ConstraintCount())},
		}
		for _, pk := range genesis.Funded {
			data = append(data, []string{"已注资账户", pk.String()})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

		sig := app.WaitForSignal()
		pterm.Info.Printfln("收到信号 %v，正在关闭 devnet...", sig)
		stopServer("devnet", srv.Stop)
		return nil
	},
}

func init() {
	devnetCmd.Flags().StringVarP(&devnetFlags.listen, "listen", "l", "127.0.0.1:28702", "监听地址")
	devnetCmd.Flags().StringSliceVar(&devnetFlags.fund, "fund", nil, "需要注资的账户（可重复）")
	devnetCmd.Flags().Uint64Var(&devnetFlags.amount, "amount", 1000, "每个账户的注资金额（MINA）")
}
