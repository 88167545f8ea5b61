// Package view 将状态存储渲染为终端状态面板
package view

import "github.com/weisyn/zkapp/internal/core/store"

// FaucetURL 测试网水龙头
const FaucetURL = "https://berkeley.minaexplorer.com/faucet"

// Stage 界面阶段，由状态推导
type Stage int

const (
	StageLoading        Stage = iota // 尚未完成钱包检测
	StageNoWallet                    // 未安装钱包
	StageSettingUp                   // 钱包就绪，初始化进行中
	StageAccountMissing              // 账户尚未注资
	StageReady                       // 可以发送交易
	StageSending                     // 交易进行中
	StageSetupFailed                 // 初始化失败，等待重试
)

var stageNames = map[Stage]string{
	StageLoading:        "loading",
	StageNoWallet:       "no_wallet",
	StageSettingUp:      "setting_up",
	StageAccountMissing: "account_missing",
	StageReady:          "ready",
	StageSending:        "sending",
	StageSetupFailed:    "setup_failed",
}

var stageMessages = map[Stage]string{
	StageLoading:        "正在加载...",
	StageNoWallet:       "未找到钱包，请先配置本地钱包助记词文件",
	StageSettingUp:      "正在初始化，编译合约可能需要一些时间...",
	StageAccountMissing: "账户不存在，请访问水龙头为该账户注资: " + FaucetURL,
	StageReady:          "就绪，可以发送交易",
	StageSending:        "正在创建交易...",
	StageSetupFailed:    "初始化失败，请检查 worker 与网络配置后重试",
}

// String 实现 fmt.Stringer
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Message 阶段对应的提示文字
func (s Stage) Message() string {
	return stageMessages[s]
}

// StageOf 从状态快照推导界面阶段
//
// 初始化失败优先于其余判断：失败可能发生在钱包检测之前
func StageOf(st store.State) Stage {
	switch {
	case !st.HasBeenSetup && st.SetupError != "":
		return StageSetupFailed
	case st.HasWallet == nil:
		return StageLoading
	case !*st.HasWallet:
		return StageNoWallet
	case !st.HasBeenSetup:
		return StageSettingUp
	case !st.AccountExists:
		return StageAccountMissing
	case st.CreatingTransaction:
		return StageSending
	default:
		return StageReady
	}
}
