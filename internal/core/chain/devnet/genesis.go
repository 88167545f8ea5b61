package devnet

import (
	"fmt"

	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/internal/core/contract"
	"github.com/weisyn/zkapp/pkg/types"
)

// DefaultFunding 创世账户默认余额（nanomina）
const DefaultFunding = 1000 * types.NanominaPerMina

// Genesis 本地账本的初始内容
type Genesis struct {
	Contract string            // 合约名，空则使用 Add
	Address  types.PublicKey   // 合约地址
	Funded   []types.PublicKey // 需要注资的账户
	Balance  uint64            // 每个账户的余额，0 则使用 DefaultFunding
}

// Bootstrap 编译合约、部署到账本并为账户注资
//
// 编译结果写入 keys，使同一 KeyStore 下的 worker 生成的证明能通过账本校验。
func Bootstrap(ledger *chain.LocalNetwork, keys contract.KeyStore, g Genesis) (*contract.Compiled, error) {
	name := g.Contract
	if name == "" {
		name = contract.AddContractName
	}
	class, err := contract.Load(name)
	if err != nil {
		return nil, err
	}
	compiled, err := class.Compile(keys)
	if err != nil {
		return nil, fmt.Errorf("编译合约 %s 失败: %w", name, err)
	}
	if err := ledger.Deploy(g.Address, compiled); err != nil {
		return nil, fmt.Errorf("部署合约失败: %w", err)
	}

	balance := g.Balance
	if balance == 0 {
		balance = DefaultFunding
	}
	for _, pk := range g.Funded {
		ledger.Fund(pk, balance)
	}
	return compiled, nil
}
