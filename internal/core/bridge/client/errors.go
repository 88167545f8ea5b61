package client

import (
	"errors"

	"github.com/weisyn/zkapp/internal/core/bridge/protocol"
)

var (
	// ErrNotReady worker 端前置条件未满足
	ErrNotReady = errors.New("worker: precondition not met")
	// ErrClosed 通道已关闭，所有等待中的调用以此失败
	ErrClosed = errors.New("worker: connection closed")
	// ErrMalformedResponse 响应状态无法识别
	ErrMalformedResponse = errors.New("worker: malformed response")
)

// RemoteError worker 端执行失败
type RemoteError = protocol.RemoteError
