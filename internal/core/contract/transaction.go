package contract

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/weisyn/zkapp/pkg/types"
)

// UpdateTransaction 调用 update() 的待提交交易
type UpdateTransaction struct {
	ZkappAddress string
	OldNum       string
	NewNum       string
	Proof        []byte // 序列化的 groth16 证明，Prove 之前为空
}

// BuildUpdate 基于合约账户当前状态构造 update 交易
func (i *Instance) BuildUpdate(account *types.Account) (*UpdateTransaction, error) {
	old, ok := i.ReadNum(account)
	if !ok {
		return nil, ErrNoState
	}
	oldInt, ok := new(big.Int).SetString(old, 10)
	if !ok {
		return nil, fmt.Errorf("%w: 非十进制字段值 %q", ErrNoState, old)
	}
	newInt := new(big.Int).Add(oldInt, big.NewInt(UpdateStep))

	return &UpdateTransaction{
		ZkappAddress: i.Address.String(),
		OldNum:       old,
		NewNum:       newInt.String(),
	}, nil
}

// Proved 是否已生成证明
func (tx *UpdateTransaction) Proved() bool {
	return len(tx.Proof) > 0
}

// Prove 使用编译产物为交易生成证明
func (tx *UpdateTransaction) Prove(compiled *Compiled) error {
	restore := silenceGnark()
	defer restore()

	assignment := &AddCircuit{Old: tx.OldNum, New: tx.NewNum, Step: UpdateStep}
	witness, err := frontend.NewWitness(assignment, curve.ScalarField())
	if err != nil {
		return fmt.Errorf("构建witness失败: %w", err)
	}

	proof, err := groth16.Prove(compiled.ccs, compiled.pk, witness)
	if err != nil {
		return fmt.Errorf("生成证明失败: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return fmt.Errorf("序列化证明失败: %w", err)
	}
	tx.Proof = buf.Bytes()
	return nil
}

// ToJSON 序列化为 zkApp 交易 JSON（不含手续费支付方）
func (tx *UpdateTransaction) ToJSON() (string, error) {
	if !tx.Proved() {
		return "", ErrNotProved
	}
	cmd := types.ZkappCommand{
		ZkappAddress: tx.ZkappAddress,
		Update: types.StateUpdate{
			Slot: NumSlot,
			Old:  tx.OldNum,
			New:  tx.NewNum,
		},
		Proof: base64.StdEncoding.EncodeToString(tx.Proof),
	}
	b, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyUpdate 用 base64 验证密钥校验一次状态更新的证明
func VerifyUpdate(verificationKey, oldNum, newNum, proofB64 string) error {
	vkBytes, err := base64.StdEncoding.DecodeString(verificationKey)
	if err != nil {
		return fmt.Errorf("%w: bad verification key encoding", ErrInvalidProof)
	}
	proofBytes, err := base64.StdEncoding.DecodeString(proofB64)
	if err != nil {
		return fmt.Errorf("%w: bad proof encoding", ErrInvalidProof)
	}

	vk := groth16.NewVerifyingKey(curve)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	proof := groth16.NewProof(curve)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}

	assignment := &AddCircuit{Old: oldNum, New: newNum}
	witness, err := frontend.NewWitness(assignment, curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}

	restore := silenceGnark()
	defer restore()
	if err := groth16.Verify(proof, vk, witness); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProof, err)
	}
	return nil
}
