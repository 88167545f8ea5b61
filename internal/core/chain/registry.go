package chain

import (
	"fmt"
	"sync"
	"time"

	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// DefaultEndpoints 已知网络的默认 GraphQL 地址
var DefaultEndpoints = map[string]string{
	"berkeley": "https://proxy.berkeley.minaexplorer.com/graphql",
}

// Registry 按网络标识解析 Network
//
// 📋 **解析规则**：
// - local 且未给出地址：进程内共享账本（未配置时报错）
// - 给出地址：连接该 GraphQL 地址（devnet 进程即以 local + 地址的方式访问）
// - 未给出地址：使用 DefaultEndpoints 中的默认地址
type Registry struct {
	local   *LocalNetwork
	timeout time.Duration
	logger  log.Logger

	mu      sync.Mutex
	remotes map[string]*RemoteNetwork
}

var _ chainif.Resolver = (*Registry)(nil)

// NewRegistry 创建网络注册表，local 可以为 nil
func NewRegistry(local *LocalNetwork, timeout time.Duration, logger log.Logger) *Registry {
	return &Registry{
		local:   local,
		timeout: timeout,
		logger:  logger,
		remotes: make(map[string]*RemoteNetwork),
	}
}

// Local 进程内账本（可能为 nil）
func (r *Registry) Local() *LocalNetwork {
	return r.local
}

// Resolve 实现 chain.Resolver
func (r *Registry) Resolve(id, endpoint string) (chainif.Network, error) {
	if id == "" {
		return nil, fmt.Errorf("empty network id")
	}
	if endpoint == "" {
		if id == LocalNetworkID {
			if r.local == nil {
				return nil, fmt.Errorf("local network is not available in this process")
			}
			return r.local, nil
		}
		def, ok := DefaultEndpoints[id]
		if !ok {
			return nil, fmt.Errorf("unknown network %q and no endpoint given", id)
		}
		endpoint = def
	}

	key := id + "|" + endpoint
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.remotes[key]; ok {
		return n, nil
	}
	n := NewRemoteNetwork(id, endpoint, r.timeout, r.logger)
	r.remotes[key] = n
	return n, nil
}
