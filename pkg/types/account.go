// Package types 链上账户与 zkApp 相关的共享数据结构
//
// 这些类型会穿越 worker 边界，因此只包含可 JSON 序列化的基础字段：
// 公钥一律以 base58 字符串表示，金额与 nonce 以十进制字符串表示（与 GraphQL 接口一致）。
package types

// Account 链上账户快照
type Account struct {
	PublicKey       string   `json:"publicKey"`
	Nonce           string   `json:"nonce"`
	Balance         Balance  `json:"balance"`
	ZkappState      []string `json:"zkappState,omitempty"`      // zkApp 状态槽（十进制字段元素）
	VerificationKey string   `json:"verificationKey,omitempty"` // base64 编码的验证密钥
}

// Balance 账户余额（nanomina，十进制字符串）
type Balance struct {
	Total string `json:"total"`
}

// IsZkapp 账户是否已部署 zkApp
func (a *Account) IsZkapp() bool {
	return a != nil && a.VerificationKey != ""
}

// StateAt 读取指定状态槽，越界返回 false
func (a *Account) StateAt(slot int) (string, bool) {
	if a == nil || slot < 0 || slot >= len(a.ZkappState) {
		return "", false
	}
	return a.ZkappState[slot], true
}

// FetchError 账户查询错误
//
// 账户不存在（尚未注资）时不会作为失败返回，而是体现在该字段上，
// 轮询逻辑据此判断是否需要继续等待。
type FetchError struct {
	StatusCode int    `json:"statusCode"`
	StatusText string `json:"statusText"`
}

// FetchAccountResult fetch-account 操作的返回结构
type FetchAccountResult struct {
	Account *Account    `json:"account,omitempty"`
	Error   *FetchError `json:"error,omitempty"`
}
