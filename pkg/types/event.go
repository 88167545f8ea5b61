// Package types provides event type definitions.
package types

// EventType 事件类型
type EventType string

const (
	// EventTypeStoreChanged 状态存储发生变更（参数：StateSnapshot）
	EventTypeStoreChanged EventType = "store.changed"

	// EventTypeSetupCompleted 初始化流程完成（参数：StateSnapshot）
	EventTypeSetupCompleted EventType = "orchestrator.setup_completed"

	// EventTypeTransactionSent 交易已提交给钱包并广播（参数：交易哈希 string）
	EventTypeTransactionSent EventType = "orchestrator.transaction_sent"
)
