// Package contract 提供 Add zkApp 合约：电路定义、编译、证明与验证
//
// 🎯 **合约语义**：
// 合约在状态槽 0 保存一个数字 num，唯一的方法 update() 将其加 2。
// 每次 update 产生一个 groth16 证明，公开输入为 (old, new)，
// 链上用部署时登记的验证密钥校验证明后再写入新状态。
package contract

import (
	"github.com/consensys/gnark/frontend"
)

// UpdateStep update() 每次增加的步长
const UpdateStep = 2

// AddCircuit update() 方法对应的电路
type AddCircuit struct {
	Old  frontend.Variable `gnark:",public"`
	New  frontend.Variable `gnark:",public"`
	Step frontend.Variable
}

// Define 约束：Step == 2 且 New == Old + Step
func (c *AddCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.Step, UpdateStep)
	api.AssertIsEqual(c.New, api.Add(c.Old, c.Step))
	return nil
}
