package testutil

import (
	"context"
	"sync"

	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
	"github.com/weisyn/zkapp/pkg/types"
)

// ==================== 钱包 ====================

// FakeWallet 记录调用的钱包
//
// Submit 为空时 SendTransaction 返回固定哈希；否则交给 Submit 处理。
type FakeWallet struct {
	Accounts   []string
	AccountErr error
	Submit     func(ctx context.Context, args walletif.SendTransactionArgs) (*walletif.SendTransactionResult, error)

	mu   sync.Mutex
	sent []walletif.SendTransactionArgs
}

var _ walletif.Provider = (*FakeWallet)(nil)

// RequestAccounts 实现 wallet.Provider
func (w *FakeWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	if w.AccountErr != nil {
		return nil, w.AccountErr
	}
	return append([]string(nil), w.Accounts...), nil
}

// SendTransaction 实现 wallet.Provider
func (w *FakeWallet) SendTransaction(ctx context.Context, args walletif.SendTransactionArgs) (*walletif.SendTransactionResult, error) {
	w.mu.Lock()
	w.sent = append(w.sent, args)
	w.mu.Unlock()
	if w.Submit != nil {
		return w.Submit(ctx, args)
	}
	return &walletif.SendTransactionResult{Hash: "5JtestHash"}, nil
}

// Sent 已提交的交易参数
func (w *FakeWallet) Sent() []walletif.SendTransactionArgs {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]walletif.SendTransactionArgs(nil), w.sent...)
}

// ==================== 网络 ====================

// FetchCall 一次账户查询记录
type FetchCall struct {
	PublicKey types.PublicKey
	Found     bool
}

// ScriptedNetwork 包装真实网络，对指定账户的前 N 次查询返回"账户不存在"
type ScriptedNetwork struct {
	chainif.Network

	// OnFetch 每次查询后回调（可选）
	OnFetch func(call FetchCall)

	mu       sync.Mutex
	failures map[types.PublicKey]int
	calls    []FetchCall
}

// NewScriptedNetwork 创建脚本化网络
func NewScriptedNetwork(inner chainif.Network) *ScriptedNetwork {
	return &ScriptedNetwork{Network: inner, failures: make(map[types.PublicKey]int)}
}

// FailFetches 让 publicKey 的接下来 n 次查询返回 ErrAccountNotFound
func (n *ScriptedNetwork) FailFetches(publicKey types.PublicKey, times int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures[publicKey] = times
}

// FetchAccount 实现 chain.Network
func (n *ScriptedNetwork) FetchAccount(ctx context.Context, publicKey types.PublicKey) (*types.Account, error) {
	n.mu.Lock()
	fail := n.failures[publicKey] > 0
	if fail {
		n.failures[publicKey]--
	}
	n.mu.Unlock()

	var (
		acc *types.Account
		err error
	)
	if fail {
		err = chainif.ErrAccountNotFound
	} else {
		acc, err = n.Network.FetchAccount(ctx, publicKey)
	}

	call := FetchCall{PublicKey: publicKey, Found: err == nil}
	n.mu.Lock()
	n.calls = append(n.calls, call)
	n.mu.Unlock()
	if n.OnFetch != nil {
		n.OnFetch(call)
	}
	return acc, err
}

// FetchCount 指定账户的查询次数
func (n *ScriptedNetwork) FetchCount(publicKey types.PublicKey) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, c := range n.calls {
		if c.PublicKey == publicKey {
			count++
		}
	}
	return count
}

// StaticResolver 总是解析到同一个网络
type StaticResolver struct {
	Network chainif.Network
}

// Resolve 实现 chain.Resolver
func (r StaticResolver) Resolve(id, endpoint string) (chainif.Network, error) {
	return r.Network, nil
}
