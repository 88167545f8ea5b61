package types

// UserConfig 配置文件结构，只包含用户友好的配置字段
//
// 所有字段均为指针：nil 表示用户未设置（使用系统默认值），
// 非 nil 表示用户明确设置了该值，即使是零值也会被采用。
type UserConfig struct {
	Log   *UserLogConfig   `json:"log,omitempty"`
	Event *UserEventConfig `json:"event,omitempty"`
	Zkapp *UserZkappConfig `json:"zkapp,omitempty"`
	API   *UserAPIConfig   `json:"api,omitempty"`
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // 日志级别：debug, info, warn, error, fatal
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty"` // 是否同时输出到控制台
	MultiFile *bool   `json:"multi_file,omitempty"` // 是否拆分 bridge/app 两个日志文件
}

// UserEventConfig 用户事件配置
type UserEventConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// UserZkappConfig 用户 zkApp 配置
type UserZkappConfig struct {
	NetworkID          *string  `json:"network_id,omitempty"`          // berkeley | local
	GraphQLEndpoint    *string  `json:"graphql_endpoint,omitempty"`    // 链 GraphQL 地址
	ContractAddress    *string  `json:"contract_address,omitempty"`    // zkApp 合约地址（base58）
	WarmupDelay        *string  `json:"warmup_delay,omitempty"`        // 启动预热等待，如 "4s"
	PollInterval       *string  `json:"poll_interval,omitempty"`       // 账户轮询间隔，如 "5s"
	TransactionFee     *float64 `json:"transaction_fee,omitempty"`     // 手续费（MINA）
	Memo               *string  `json:"memo,omitempty"`                // 交易备注
	ExplorerTxURL      *string  `json:"explorer_tx_url,omitempty"`     // 浏览器交易链接模板，含一个 %s
	WorkerEndpoint     *string  `json:"worker_endpoint,omitempty"`     // 远程 worker WebSocket 地址，空则使用进程内 worker
	WalletMnemonicFile *string  `json:"wallet_mnemonic_file,omitempty"` // 本地钱包助记词文件，空则视为未安装钱包
	KeyStoreDir        *string  `json:"key_store_dir,omitempty"`        // 证明密钥目录，空则仅保存在内存
}

// UserAPIConfig 用户状态服务配置
type UserAPIConfig struct {
	Enabled    *bool   `json:"enabled,omitempty"`
	ListenAddr *string `json:"listen_addr,omitempty"`
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string { return &s }

// BoolPtr 返回布尔指针
func BoolPtr(b bool) *bool { return &b }

// Float64Ptr 返回浮点指针
func Float64Ptr(f float64) *float64 { return &f }
