package contract

import "errors"

var (
	// ErrUnknownContract 未注册的合约名
	ErrUnknownContract = errors.New("unknown contract")

	// ErrNoState 账户上没有可读的合约状态
	ErrNoState = errors.New("account has no contract state")

	// ErrNotProved 交易尚未生成证明
	ErrNotProved = errors.New("transaction has not been proved")

	// ErrInvalidProof 证明校验失败
	ErrInvalidProof = errors.New("invalid proof")
)
