// Package zkapp 提供 zkApp 桥接与编排流程的配置
package zkapp

import (
	"time"

	"github.com/weisyn/zkapp/pkg/types"
)

// ZkappOptions zkApp 配置选项
type ZkappOptions struct {
	// === 网络 ===
	NetworkID       string `json:"network_id"`       // berkeley | local
	GraphQLEndpoint string `json:"graphql_endpoint"` // 链 GraphQL 地址

	// === 合约 ===
	ContractAddress string `json:"contract_address"` // zkApp 地址（base58）

	// === 编排时序 ===
	WarmupDelay  time.Duration `json:"warmup_delay"`
	PollInterval time.Duration `json:"poll_interval"`

	// === 交易 ===
	TransactionFee float64 `json:"transaction_fee"` // MINA
	Memo           string  `json:"memo"`
	ExplorerTxURL  string  `json:"explorer_tx_url"`

	// === 部署形态 ===
	WorkerEndpoint     string `json:"worker_endpoint"`
	WalletMnemonicFile string `json:"wallet_mnemonic_file"`
	KeyStoreDir        string `json:"key_store_dir"` // worker 与 devnet 分进程运行时共享证明密钥
}

// Config zkApp 配置实现
type Config struct {
	options *ZkappOptions
}

// New 创建 zkApp 配置，先填充默认值再应用用户覆盖
func New(userConfig *types.UserZkappConfig) *Config {
	options := createDefaultZkappOptions()
	if userConfig != nil {
		applyUserZkappConfig(options, userConfig)
	}
	return &Config{options: options}
}

func createDefaultZkappOptions() *ZkappOptions {
	return &ZkappOptions{
		NetworkID:          defaultNetworkID,
		GraphQLEndpoint:    defaultGraphQLEndpoint,
		ContractAddress:    defaultContractAddress,
		WarmupDelay:        defaultWarmupDelay,
		PollInterval:       defaultPollInterval,
		TransactionFee:     defaultTransactionFee,
		Memo:               defaultMemo,
		ExplorerTxURL:      defaultExplorerTxURL,
		WorkerEndpoint:     defaultWorkerEndpoint,
		WalletMnemonicFile: defaultWalletMnemonicFile,
		KeyStoreDir:        defaultKeyStoreDir,
	}
}

func applyUserZkappConfig(options *ZkappOptions, c *types.UserZkappConfig) {
	if c.NetworkID != nil {
		options.NetworkID = *c.NetworkID
		// 本地网络没有默认的远程地址
		if *c.NetworkID == "local" && c.GraphQLEndpoint == nil {
			options.GraphQLEndpoint = ""
		}
	}
	if c.GraphQLEndpoint != nil {
		options.GraphQLEndpoint = *c.GraphQLEndpoint
	}
	if c.ContractAddress != nil {
		options.ContractAddress = *c.ContractAddress
	}
	// 时长格式错误时保留默认值，由 ValidateZkappConfig 在启动时报告
	if c.WarmupDelay != nil {
		if d, err := time.ParseDuration(*c.WarmupDelay); err == nil {
			options.WarmupDelay = d
		}
	}
	if c.PollInterval != nil {
		if d, err := time.ParseDuration(*c.PollInterval); err == nil {
			options.PollInterval = d
		}
	}
	if c.TransactionFee != nil {
		options.TransactionFee = *c.TransactionFee
	}
	if c.Memo != nil {
		options.Memo = *c.Memo
	}
	if c.ExplorerTxURL != nil {
		options.ExplorerTxURL = *c.ExplorerTxURL
	}
	if c.WorkerEndpoint != nil {
		options.WorkerEndpoint = *c.WorkerEndpoint
	}
	if c.WalletMnemonicFile != nil {
		options.WalletMnemonicFile = *c.WalletMnemonicFile
	}
	if c.KeyStoreDir != nil {
		options.KeyStoreDir = *c.KeyStoreDir
	}
}

// GetOptions 获取完整配置选项
func (c *Config) GetOptions() *ZkappOptions {
	return c.options
}

// UsesRemoteWorker 是否连接独立的 worker 进程
func (c *Config) UsesRemoteWorker() bool {
	return c.options.WorkerEndpoint != ""
}
