// Package wallet 定义浏览器钱包风格的签名与提交接口
//
// 编排器只通过 Environment 获取钱包，钱包不存在时走"未安装钱包"分支。
package wallet

import (
	"context"
	"errors"
)

// ErrUserRejected 用户拒绝签名或钱包已锁定
var ErrUserRejected = errors.New("user rejected the request")

// FeePayer 手续费参数
type FeePayer struct {
	Fee  float64 `json:"fee"` // 单位 MINA
	Memo string  `json:"memo"`
}

// SendTransactionArgs 提交交易参数
type SendTransactionArgs struct {
	Transaction string   `json:"transaction"`
	FeePayer    FeePayer `json:"feePayer"`
}

// SendTransactionResult 提交结果
type SendTransactionResult struct {
	Hash string `json:"hash"`
}

// Provider 钱包提供者
type Provider interface {
	// RequestAccounts 返回钱包内的账户地址（base58）
	RequestAccounts(ctx context.Context) ([]string, error)

	// SendTransaction 补齐手续费支付方、签名并提交交易
	SendTransaction(ctx context.Context, args SendTransactionArgs) (*SendTransactionResult, error)
}

// Environment 钱包宿主环境
type Environment interface {
	// Lookup 返回已安装的钱包，未安装时第二个返回值为 false
	Lookup() (Provider, bool)
}

// StaticEnvironment 固定的钱包环境，Provider 为 nil 表示未安装
type StaticEnvironment struct {
	Provider Provider
}

// Lookup 实现 Environment
func (e StaticEnvironment) Lookup() (Provider, bool) {
	return e.Provider, e.Provider != nil
}
