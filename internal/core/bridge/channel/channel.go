// Package channel 提供 worker 边界的双向消息通道
//
// 通道保持消息边界，每帧是一条完整的 JSON 信封。
// 同一方向内保序；协议不依赖跨方向的顺序。
package channel

import (
	"context"
	"errors"
)

// ErrClosed 通道已关闭
var ErrClosed = errors.New("channel closed")

// Conn 双向帧通道
//
// Send 可被多个 goroutine 并发调用；Receive 只允许一个读者。
type Conn interface {
	// Send 发送一帧
	Send(ctx context.Context, frame []byte) error
	// Receive 阻塞直到收到一帧、通道关闭或 ctx 取消
	Receive(ctx context.Context) ([]byte, error)
	// Close 关闭通道，两端随后的操作都返回 ErrClosed
	Close() error
}
