package registry

import (
	"github.com/google/uuid"

	"github.com/weisyn/zkapp/internal/core/contract"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/types"
)

// Session worker 本地会话状态
//
// 📋 **填充顺序**：load → compile → init → build → prove → serialize。
// 会话内从不重置；连接断开即销毁。
type Session struct {
	ID string

	network  chainif.Network
	class    *contract.Class
	compiled *contract.Compiled
	instance *contract.Instance
	tx       *contract.UpdateTransaction

	// 最近一次 fetch-account 的结果
	accounts map[types.PublicKey]*types.Account
}

func newSession() *Session {
	return &Session{
		ID:       uuid.NewString(),
		accounts: make(map[types.PublicKey]*types.Account),
	}
}

// SessionState 会话进度快照（只读，用于日志与测试）
type SessionState struct {
	NetworkSelected bool
	Loaded          bool
	Compiled        bool
	Initialized     bool
	TxBuilt         bool
	TxProved        bool
	CachedAccounts  int
}

func (s *Session) state() SessionState {
	return SessionState{
		NetworkSelected: s.network != nil,
		Loaded:          s.class != nil,
		Compiled:        s.compiled != nil,
		Initialized:     s.instance != nil,
		TxBuilt:         s.tx != nil,
		TxProved:        s.tx != nil && s.tx.Proved(),
		CachedAccounts:  len(s.accounts),
	}
}

// contractAccount 已缓存的合约账户
func (s *Session) contractAccount() (*types.Account, bool) {
	if s.instance == nil {
		return nil, false
	}
	acc, ok := s.accounts[s.instance.Address]
	return acc, ok
}
