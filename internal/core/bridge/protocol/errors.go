package protocol

import (
	"errors"
	"fmt"
)

// ErrorCode 远程错误码
type ErrorCode string

const (
	CodeInvalidArgs      ErrorCode = "invalid_args"
	CodeUnknownOperation ErrorCode = "unknown_operation"
	CodeExecutionFailed  ErrorCode = "execution_failed"
	CodePanic            ErrorCode = "panic"
)

var (
	// ErrUnknownOperation 操作名不在集合内
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrInvalidArgs 参数不符合操作的参数结构
	ErrInvalidArgs = errors.New("invalid arguments")
)

// RemoteError worker 端执行失败时随响应返回的错误
type RemoteError struct {
	Op      Operation `json:"op"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed (%s): %s", e.Op, e.Code, e.Message)
}

// NewRemoteError 按错误类型推断错误码
func NewRemoteError(op Operation, err error) *RemoteError {
	code := CodeExecutionFailed
	switch {
	case errors.Is(err, ErrInvalidArgs):
		code = CodeInvalidArgs
	case errors.Is(err, ErrUnknownOperation):
		code = CodeUnknownOperation
	}
	return &RemoteError{Op: op, Code: code, Message: err.Error()}
}
