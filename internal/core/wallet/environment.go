package wallet

import (
	"fmt"
	"os"
	"strings"

	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
)

// LoadEnvironment 从助记词文件构造钱包环境
//
// path 为空时返回未安装钱包的环境。文件第一行为助记词，可选的第二行为密码。
func LoadEnvironment(path string, network chainif.Network, logger log.Logger) (walletif.Environment, error) {
	if path == "" {
		return walletif.StaticEnvironment{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取助记词文件失败: %w", err)
	}

	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	passphrase := ""
	if len(lines) == 2 {
		passphrase = strings.TrimSpace(lines[1])
	}
	w, err := NewLocalWallet(lines[0], passphrase, network, logger)
	if err != nil {
		return nil, fmt.Errorf("加载钱包失败: %w", err)
	}
	if logger != nil {
		logger.Infof("已加载本地钱包: %s", w.Address())
	}
	return walletif.StaticEnvironment{Provider: w}, nil
}
