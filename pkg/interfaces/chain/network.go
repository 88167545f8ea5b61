// Package chain 定义链网络访问接口
//
// 🎯 **职责**：
// - 查询账户快照（余额、nonce、zkApp 状态、验证密钥）
// - 提交已签名的 zkApp 交易并返回交易哈希
//
// 实现位于 internal/core/chain：远程 GraphQL 网络与进程内本地账本。
package chain

import (
	"context"
	"errors"

	"github.com/weisyn/zkapp/pkg/types"
)

// ErrAccountNotFound 账户不存在（尚未注资）
var ErrAccountNotFound = errors.New("account not found")

// Network 链网络接口
type Network interface {
	// ID 网络标识（berkeley / local ...）
	ID() string

	// FetchAccount 查询账户，账户不存在时返回 ErrAccountNotFound
	FetchAccount(ctx context.Context, publicKey types.PublicKey) (*types.Account, error)

	// SendZkapp 提交 zkApp 交易 JSON，返回交易哈希
	SendZkapp(ctx context.Context, commandJSON string) (string, error)
}

// Resolver 按网络标识解析 Network
type Resolver interface {
	// Resolve 返回 id 对应的网络；endpoint 为空时使用该网络的默认地址
	Resolve(id, endpoint string) (Network, error)
}
