package contract

import (
	"go.uber.org/fx"

	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
)

// Module 提供证明密钥存储
//
// 配置了 key_store_dir 时使用目录存储，worker 与 devnet 分进程运行也能校验彼此的证明。
func Module() fx.Option {
	return fx.Module("contract",
		fx.Provide(ProvideKeyStore),
	)
}

// ProvideKeyStore 按配置选择密钥存储
func ProvideKeyStore(opts *zkappconfig.ZkappOptions) KeyStore {
	if opts.KeyStoreDir != "" {
		return NewDirKeyStore(opts.KeyStoreDir)
	}
	return NewMemoryKeyStore()
}
