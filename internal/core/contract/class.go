package contract

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// curve 合约证明统一使用 BN254
const curve = ecc.BN254

// AddContractName load-contract 加载的合约名
const AddContractName = "Add"

// Class 合约类（load-contract 的产物）
type Class struct {
	Name       string
	newCircuit func() frontend.Circuit
}

var classes = map[string]*Class{
	AddContractName: {
		Name:       AddContractName,
		newCircuit: func() frontend.Circuit { return &AddCircuit{} },
	},
}

// Load 按名称加载合约类
func Load(name string) (*Class, error) {
	class, ok := classes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContract, name)
	}
	return class, nil
}

// Compiled 编译产物：约束系统与 groth16 密钥对
type Compiled struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey

	Duration  time.Duration // 编译耗时
	FromCache bool          // 密钥是否来自 KeyStore
}

// Compile 编译电路并准备密钥
//
// 约束系统每次重新编译（确定性）；密钥优先从 store 读取，
// 不存在时执行 groth16.Setup 并写回 store，保证同一 store 下
// worker 生成的证明能被部署时登记的验证密钥校验。store 为 nil 时每次重新 Setup。
func (c *Class) Compile(store KeyStore) (*Compiled, error) {
	start := time.Now()
	restore := silenceGnark()
	defer restore()

	ccs, err := frontend.Compile(curve.ScalarField(), r1cs.NewBuilder, c.newCircuit())
	if err != nil {
		return nil, fmt.Errorf("编译电路失败: %w", err)
	}

	compiled := &Compiled{ccs: ccs}
	if store != nil {
		pk, vk, ok, err := store.Load(c.Name)
		if err != nil {
			return nil, fmt.Errorf("读取密钥失败: %w", err)
		}
		if ok {
			compiled.pk, compiled.vk, compiled.FromCache = pk, vk, true
		}
	}

	if !compiled.FromCache {
		pk, vk, err := groth16.Setup(ccs)
		if err != nil {
			return nil, fmt.Errorf("生成可信设置失败: %w", err)
		}
		compiled.pk, compiled.vk = pk, vk
		if store != nil {
			if err := store.Save(c.Name, pk, vk); err != nil {
				return nil, fmt.Errorf("保存密钥失败: %w", err)
			}
		}
	}

	compiled.Duration = time.Since(start)
	return compiled, nil
}

// ConstraintCount 约束数量
func (c *Compiled) ConstraintCount() int {
	return c.ccs.GetNbConstraints()
}

// VerificationKey 返回 base64 编码的验证密钥（部署时写入账户）
func (c *Compiled) VerificationKey() (string, error) {
	var buf bytes.Buffer
	if _, err := c.vk.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("序列化验证密钥失败: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// silenceGnark 禁用 gnark 库的日志输出，返回恢复函数
// gnark 使用 zerolog，编译和证明期间会输出大量调试信息
func silenceGnark() func() {
	old := gnarklogger.Logger()
	gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))
	return func() { gnarklogger.Set(old) }
}
