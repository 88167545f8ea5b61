package zkapp

import "time"

// zkApp 配置默认值
const (
	// defaultNetworkID 默认连接 Berkeley 测试网
	defaultNetworkID = "berkeley"

	// defaultGraphQLEndpoint Berkeley 测试网 GraphQL 代理
	defaultGraphQLEndpoint = "https://proxy.berkeley.minaexplorer.com/graphql"

	// defaultContractAddress 已部署的 Add 合约地址
	defaultContractAddress = "B62qkrit4M81pkWcs3Limog9Mn2tB4aQk2xLC9jmG82kKnFuXY7bM6a"

	// defaultWarmupDelay 启动后等待 worker 就绪的时间
	defaultWarmupDelay = 4 * time.Second

	// defaultPollInterval 账户存在性轮询间隔
	defaultPollInterval = 5 * time.Second

	// defaultTransactionFee 交易手续费（MINA）
	defaultTransactionFee = 0.1

	// defaultMemo 交易备注
	defaultMemo = ""

	// defaultExplorerTxURL 区块浏览器交易链接模板
	defaultExplorerTxURL = "https://berkeley.minaexplorer.com/transaction/%s"

	// defaultWorkerEndpoint 为空表示使用进程内 worker
	defaultWorkerEndpoint = ""

	// defaultWalletMnemonicFile 为空表示未安装钱包
	defaultWalletMnemonicFile = ""

	// defaultKeyStoreDir 为空表示证明密钥只保存在内存中
	defaultKeyStoreDir = ""
)
