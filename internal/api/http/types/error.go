// Package types provides HTTP error type definitions.
package types

import "time"

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code      string `json:"code"`                // 错误码
	Message   string `json:"message"`             // 错误消息
	RequestID string `json:"requestId,omitempty"` // 请求ID
	Timestamp string `json:"timestamp,omitempty"` // 时间戳
}

// 错误码
const (
	// 流程状态（409）
	ErrNotSetup      = "NOT_SETUP"
	ErrNoWallet      = "NO_WALLET"
	ErrTxInFlight    = "TX_IN_FLIGHT"
	ErrNoTransaction = "NO_TRANSACTION"

	// 钱包（403）
	ErrUserRejected = "USER_REJECTED"

	// worker（502/503）
	ErrWorkerFailed      = "WORKER_FAILED"
	ErrWorkerUnavailable = "WORKER_UNAVAILABLE"
	ErrNoValue           = "NO_VALUE"

	// 服务器错误码（500-599）
	ErrInternal = "INTERNAL"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// WithRequestID 添加请求ID
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.Error.RequestID = requestID
	return e
}
