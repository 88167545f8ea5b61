package devnet

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/internal/core/contract"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
	"github.com/weisyn/zkapp/pkg/types"
)

// GenesisInput 进程内账本初始化依赖
type GenesisInput struct {
	fx.In

	Options *zkappconfig.ZkappOptions
	Ledger  *chain.LocalNetwork
	Keys    contract.KeyStore
	Wallets walletif.Environment
	Logger  log.Logger `optional:"true"`
}

// Module 使用进程内本地网络时，在启动前完成创世
func Module() fx.Option {
	return fx.Module("devnet",
		fx.Invoke(InitLocalLedger),
	)
}

// InitLocalLedger 部署合约并为钱包账户注资
//
// 仅在 network_id 为 local 且未配置 GraphQL 地址时生效；其余情况由外部网络提供账本。
func InitLocalLedger(in GenesisInput) error {
	if in.Options.NetworkID != chain.LocalNetworkID || in.Options.GraphQLEndpoint != "" {
		return nil
	}
	logger := logimpl.NewModuleLogger(in.Logger, "devnet")

	genesis, err := NewGenesis(context.Background(), in.Options, in.Wallets)
	if err != nil {
		return err
	}

	compiled, err := Bootstrap(in.Ledger, in.Keys, genesis)
	if err != nil {
		return err
	}
	if logger != nil {
		logger.Infof("本地账本创世完成: contract=%s, constraints=%d, funded=%d",
			genesis.Address, compiled.ConstraintCount(), len(genesis.Funded))
	}
	return nil
}

// NewGenesis 由配置生成创世内容：合约部署在配置的合约地址，钱包账户获得注资
//
// wallets 可以为 nil；extra 为额外需要注资的账户。
func NewGenesis(ctx context.Context, opts *zkappconfig.ZkappOptions, wallets walletif.Environment, extra ...types.PublicKey) (Genesis, error) {
	address, err := types.ParsePublicKey(opts.ContractAddress)
	if err != nil {
		return Genesis{}, fmt.Errorf("合约地址无效: %w", err)
	}
	genesis := Genesis{Address: address, Funded: append([]types.PublicKey(nil), extra...)}
	if wallets == nil {
		return genesis, nil
	}

	provider, ok := wallets.Lookup()
	if !ok {
		return genesis, nil
	}
	accounts, err := provider.RequestAccounts(ctx)
	if err != nil {
		return Genesis{}, fmt.Errorf("读取钱包账户失败: %w", err)
	}
	for _, a := range accounts {
		pk, err := types.ParsePublicKey(a)
		if err != nil {
			return Genesis{}, err
		}
		genesis.Funded = append(genesis.Funded, pk)
	}
	return genesis, nil
}
