package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/internal/core/contract"
	"github.com/weisyn/zkapp/pkg/types"
)

// ZkappAddress 测试用合约地址
const ZkappAddress = "B62qkrit4M81pkWcs3Limog9Mn2tB4aQk2xLC9jmG82kKnFuXY7bM6a"

// PayerFunding 测试账户初始余额（nanomina）
const PayerFunding = 10 * types.NanominaPerMina

// LedgerFixture 已部署 Add 合约并注资手续费账户的本地账本
type LedgerFixture struct {
	Ledger   *chain.LocalNetwork
	Store    *contract.MemoryKeyStore
	Compiled *contract.Compiled
	Instance *contract.Instance
	Payer    *chain.KeyPair
	Zkapp    types.PublicKey
}

// NewLedgerFixture 创建账本夹具
func NewLedgerFixture(t testing.TB) *LedgerFixture {
	t.Helper()

	class, err := contract.Load(contract.AddContractName)
	require.NoError(t, err)
	store := contract.NewMemoryKeyStore()
	compiled, err := class.Compile(store)
	require.NoError(t, err)

	payer, err := chain.NewKeyPairFromSeed(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	zkapp := types.MustParsePublicKey(ZkappAddress)
	ledger := chain.NewLocalNetwork(&MockLogger{})
	ledger.Fund(payer.Public, PayerFunding)
	require.NoError(t, ledger.Deploy(zkapp, compiled))

	return &LedgerFixture{
		Ledger:   ledger,
		Store:    store,
		Compiled: compiled,
		Instance: contract.NewInstance(class, zkapp),
		Payer:    payer,
		Zkapp:    zkapp,
	}
}

// ProvedUpdate 基于当前链上状态构造并证明一笔更新交易，返回未签名的交易 JSON
func (f *LedgerFixture) ProvedUpdate(t testing.TB) string {
	t.Helper()
	acc, err := f.Ledger.FetchAccount(context.Background(), f.Zkapp)
	require.NoError(t, err)
	tx, err := f.Instance.BuildUpdate(acc)
	require.NoError(t, err)
	require.NoError(t, tx.Prove(f.Compiled))
	raw, err := tx.ToJSON()
	require.NoError(t, err)
	return raw
}

// SignCommand 为交易 JSON 补齐手续费支付方并签名
func SignCommand(t testing.TB, payer *chain.KeyPair, raw string, fee, nonce uint64) string {
	t.Helper()
	var cmd types.ZkappCommand
	require.NoError(t, json.Unmarshal([]byte(raw), &cmd))
	cmd.FeePayer = &types.FeePayer{
		PublicKey: payer.Public.String(),
		Fee:       strconv.FormatUint(fee, 10),
		Nonce:     strconv.FormatUint(nonce, 10),
	}
	sig, err := payer.Sign(cmd)
	require.NoError(t, err)
	cmd.FeePayer.Signature = sig
	out, err := json.Marshal(cmd)
	require.NoError(t, err)
	return string(out)
}
