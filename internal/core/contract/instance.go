package contract

import (
	"math/big"

	"github.com/weisyn/zkapp/pkg/types"
)

// NumSlot num 所在的状态槽
const NumSlot = 0

// InitialNum 部署时写入的初始值
const InitialNum = "1"

// Instance 绑定到链上地址的合约实例
type Instance struct {
	Address types.PublicKey
	Class   *Class
}

// NewInstance 创建合约实例
func NewInstance(class *Class, address types.PublicKey) *Instance {
	return &Instance{Address: address, Class: class}
}

// ReadNum 从合约账户快照读取 num
// 账户未部署或状态槽为空时返回 false
func (i *Instance) ReadNum(account *types.Account) (string, bool) {
	if account == nil || account.PublicKey != i.Address.String() {
		return "", false
	}
	v, ok := account.StateAt(NumSlot)
	if !ok || v == "" {
		return "", false
	}
	if _, ok := new(big.Int).SetString(v, 10); !ok {
		return "", false
	}
	return v, true
}
