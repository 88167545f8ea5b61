// Package protocol 定义 worker 边界上的消息信封
//
// 🎯 **协议要点**：
// - 操作集合封闭，Operation.Valid 拒绝集合之外的名字
// - 请求与响应只携带 JSON 数据，公钥一律以 base58 字符串传递
// - 响应只按 ID 与请求配对，与到达顺序无关
package protocol

import (
	"encoding/json"
)

// Operation 远程操作名
type Operation string

const (
	OpNetworkSelect          Operation = "network-select"
	OpLoadContract           Operation = "load-contract"
	OpCompileContract        Operation = "compile-contract"
	OpFetchAccount           Operation = "fetch-account"
	OpInitContractInstance   Operation = "init-contract-instance"
	OpBuildUpdateTransaction Operation = "build-update-transaction"
	OpProveTransaction       Operation = "prove-transaction"
	OpSerializeTransaction   Operation = "serialize-transaction"
	OpFetchCurrentValue      Operation = "fetch-current-value"
)

// Operations 全部操作（按会话中的典型调用顺序）
var Operations = []Operation{
	OpNetworkSelect,
	OpLoadContract,
	OpCompileContract,
	OpFetchAccount,
	OpInitContractInstance,
	OpBuildUpdateTransaction,
	OpProveTransaction,
	OpSerializeTransaction,
	OpFetchCurrentValue,
}

// Valid 是否属于已知操作
func (op Operation) Valid() bool {
	switch op {
	case OpNetworkSelect, OpLoadContract, OpCompileContract, OpFetchAccount,
		OpInitContractInstance, OpBuildUpdateTransaction, OpProveTransaction,
		OpSerializeTransaction, OpFetchCurrentValue:
		return true
	}
	return false
}

func (op Operation) String() string {
	return string(op)
}

// Status 响应状态
type Status string

const (
	// StatusOK 执行成功，Result 可能为空
	StatusOK Status = "ok"
	// StatusNotReady 前置条件未满足，会话状态未改变
	StatusNotReady Status = "not_ready"
	// StatusError 执行失败，Error 非空
	StatusError Status = "error"
)

// Request 请求信封
type Request struct {
	ID   uint64          `json:"id"`
	Op   Operation       `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Response 响应信封
type Response struct {
	ID     uint64          `json:"id"`
	Status Status          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RemoteError    `json:"error,omitempty"`
}

// NewRequest 编码参数并构造请求，args 为 nil 时不携带参数
func NewRequest(id uint64, op Operation, args interface{}) (*Request, error) {
	req := &Request{ID: id, Op: op}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		req.Args = raw
	}
	return req, nil
}

// OK 构造成功响应，result 为 nil 时结果为空
func OK(id uint64, result interface{}) (*Response, error) {
	resp := &Response{ID: id, Status: StatusOK}
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		resp.Result = raw
	}
	return resp, nil
}

// NotReady 构造前置条件未满足响应
func NotReady(id uint64) *Response {
	return &Response{ID: id, Status: StatusNotReady}
}

// Failed 构造失败响应
func Failed(id uint64, err *RemoteError) *Response {
	return &Response{ID: id, Status: StatusError, Error: err}
}

// EncodeRequest 编码请求帧
func EncodeRequest(req *Request) ([]byte, error) {
	return json.Marshal(req)
}

// DecodeRequest 解码请求帧
func DecodeRequest(frame []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(frame, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// EncodeResponse 编码响应帧
func EncodeResponse(resp *Response) ([]byte, error) {
	return json.Marshal(resp)
}

// DecodeResponse 解码响应帧
func DecodeResponse(frame []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(frame, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
