package orchestrator

import "errors"

var (
	// ErrNoWallet 环境中未安装钱包
	ErrNoWallet = errors.New("未检测到钱包")
	// ErrNoAccounts 钱包没有返回任何账户
	ErrNoAccounts = errors.New("钱包未返回账户")
	// ErrAlreadySetup 初始化已完成
	ErrAlreadySetup = errors.New("已完成初始化")
	// ErrSetupInProgress 初始化正在进行
	ErrSetupInProgress = errors.New("初始化正在进行")
	// ErrNotSetup 尚未完成初始化
	ErrNotSetup = errors.New("尚未完成初始化")
	// ErrTransactionInFlight 已有交易正在进行
	ErrTransactionInFlight = errors.New("已有交易正在进行")
	// ErrNoTransaction worker 未产出交易 JSON
	ErrNoTransaction = errors.New("未获得交易 JSON")
	// ErrNoValue 合约账户没有可读的当前值
	ErrNoValue = errors.New("未读取到合约当前值")
)
