// Package store 共享的界面状态存储
//
// 🎯 **约束**：
// - 只能通过类型化的 setter 修改状态，每次修改发布 store.changed 事件（参数为新快照）
// - 修改由读写锁串行化，同一时刻只有一个写者
// - 快照带递增版本号，观察者据此丢弃过期通知
package store

import (
	"sync"

	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkapp/pkg/types"
)

// State 界面状态
type State struct {
	Version uint64 `json:"version"`

	// HasWallet 三态：nil 表示尚未检测
	HasWallet           *bool   `json:"hasWallet"`
	HasBeenSetup        bool    `json:"hasBeenSetup"`
	AccountExists       bool    `json:"accountExists"`
	Num                 *string `json:"num"`
	PublicKey           string  `json:"publicKey,omitempty"`
	ZkappPublicKey      string  `json:"zkappPublicKey,omitempty"`
	CreatingTransaction bool    `json:"creatingTransaction"`

	// SetupError 最近一次初始化失败的原因，成功后清空
	SetupError string `json:"setupError,omitempty"`
}

func (s State) clone() State {
	if s.HasWallet != nil {
		v := *s.HasWallet
		s.HasWallet = &v
	}
	if s.Num != nil {
		v := *s.Num
		s.Num = &v
	}
	return s
}

// SetupParams 初始化完成时一次性写入的字段
type SetupParams struct {
	PublicKey      string
	ZkappPublicKey string
	AccountExists  bool
	Num            string
}

// Store 状态存储
type Store struct {
	mu    sync.RWMutex
	state State

	bus    event.EventBus
	logger log.Logger
}

// New 创建状态存储，bus 可以为 nil
func New(bus event.EventBus, logger log.Logger) *Store {
	return &Store{bus: bus, logger: logger}
}

// Snapshot 返回状态副本
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// update 在写锁内修改状态，changed 为 false 时不发布事件
func (s *Store) update(mutate func(st *State) bool) bool {
	s.mu.Lock()
	if !mutate(&s.state) {
		s.mu.Unlock()
		return false
	}
	s.state.Version++
	snapshot := s.state.clone()
	s.mu.Unlock()

	// 在锁外发布，订阅者可以安全地调用 Snapshot
	if s.bus != nil {
		s.bus.Publish(types.EventTypeStoreChanged, snapshot)
	}
	if s.logger != nil {
		s.logger.Debugf("状态已更新: version=%d", snapshot.Version)
	}
	return true
}

// SetupState 写入初始化结果（同时标记已初始化、钱包存在）
func (s *Store) SetupState(p SetupParams) {
	s.update(func(st *State) bool {
		hasWallet := true
		num := p.Num
		st.HasBeenSetup = true
		st.HasWallet = &hasWallet
		st.PublicKey = p.PublicKey
		st.ZkappPublicKey = p.ZkappPublicKey
		st.AccountExists = p.AccountExists
		st.Num = &num
		st.SetupError = ""
		return true
	})
}

// SetSetupError 记录初始化失败原因，空串表示清除；值不变时不发布
func (s *Store) SetSetupError(msg string) {
	s.update(func(st *State) bool {
		if st.SetupError == msg {
			return false
		}
		st.SetupError = msg
		return true
	})
}

// SetHasWallet 记录钱包检测结果
func (s *Store) SetHasWallet(v bool) {
	s.update(func(st *State) bool {
		st.HasWallet = &v
		return true
	})
}

// SetAccountExists 记录账户是否已注资
func (s *Store) SetAccountExists(v bool) {
	s.update(func(st *State) bool {
		st.AccountExists = v
		return true
	})
}

// SetCreatingTransaction 设置交易进行中标志
func (s *Store) SetCreatingTransaction(v bool) {
	s.update(func(st *State) bool {
		st.CreatingTransaction = v
		return true
	})
}

// SetNum 更新当前合约值
func (s *Store) SetNum(v string) {
	s.update(func(st *State) bool {
		st.Num = &v
		return true
	})
}

// TryBeginTransaction 交易未在进行时置位并返回 true
func (s *Store) TryBeginTransaction() bool {
	return s.update(func(st *State) bool {
		if st.CreatingTransaction {
			return false
		}
		st.CreatingTransaction = true
		return true
	})
}
