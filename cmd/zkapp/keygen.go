package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/zkapp/internal/core/wallet"
)

var keygenFlags struct {
	words int
	out   string
}

// keygenCmd 生成本地钱包助记词
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "生成钱包助记词",
	Long:  "生成 BIP39 助记词并显示对应的账户地址。指定 --out 时写入文件，可直接作为 zkapp.wallet_mnemonic_file 使用。",
	RunE: func(cmd *cobra.Command, args []string) error {
		strength := wallet.Mnemonic12Words
		switch keygenFlags.words {
		case 12:
		case 24:
			strength = wallet.Mnemonic24Words
		default:
			return fmt.Errorf("助记词长度只能是 12 或 24")
		}

		mnemonic, err := wallet.GenerateMnemonic(strength)
		if err != nil {
			return err
		}
		w, err := wallet.NewLocalWallet(mnemonic, "", nil, nil)
		if err != nil {
			return err
		}

		if keygenFlags.out != "" {
			if _, err := os.Stat(keygenFlags.out); err == nil {
				return fmt.Errorf("文件 %s 已存在", keygenFlags.out)
			}
			if err := os.WriteFile(keygenFlags.out, []byte(mnemonic+"\n"), 0o600); err != nil {
				return fmt.Errorf("写入助记词文件失败: %w", err)
			}
			pterm.Success.Printfln("助记词已写入 %s", keygenFlags.out)
		} else {
			pterm.Warning.Println("请妥善保管以下助记词")
			pterm.Println(mnemonic)
		}
		pterm.Info.Printfln("账户地址: %s", w.Address())
		return nil
	},
}

func init() {
	keygenCmd.Flags().IntVar(&keygenFlags.words, "words", 12, "助记词长度 (12|24)")
	keygenCmd.Flags().StringVarP(&keygenFlags.out, "out", "o", "", "助记词输出文件")
}
