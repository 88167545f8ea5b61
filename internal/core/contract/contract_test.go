package contract

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkapp/pkg/types"
)

const zkappAddress = "B62qkrit4M81pkWcs3Limog9Mn2tB4aQk2xLC9jmG82kKnFuXY7bM6a"

func zkappAccount(num string) *types.Account {
	return &types.Account{
		PublicKey:  zkappAddress,
		Nonce:      "0",
		Balance:    types.Balance{Total: "0"},
		ZkappState: []string{num, "0", "0", "0", "0", "0", "0", "0"},
	}
}

func TestAddCircuit_Constraints(t *testing.T) {
	assert := test.NewAssert(t)

	assert.CheckCircuit(
		&AddCircuit{},
		test.WithValidAssignment(&AddCircuit{Old: 1, New: 3, Step: 2}),
		test.WithInvalidAssignment(&AddCircuit{Old: 1, New: 4, Step: 3}),
		test.WithInvalidAssignment(&AddCircuit{Old: 1, New: 4, Step: 2}),
		test.WithCurves(ecc.BN254),
	)
}

func TestLoad(t *testing.T) {
	class, err := Load(AddContractName)
	require.NoError(t, err)
	assert.Equal(t, "Add", class.Name)

	_, err = Load("Square")
	assert.ErrorIs(t, err, ErrUnknownContract)
}

func TestInstance_ReadNum(t *testing.T) {
	class, _ := Load(AddContractName)
	inst := NewInstance(class, types.MustParsePublicKey(zkappAddress))

	num, ok := inst.ReadNum(zkappAccount("5"))
	assert.True(t, ok)
	assert.Equal(t, "5", num)

	_, ok = inst.ReadNum(nil)
	assert.False(t, ok)
	_, ok = inst.ReadNum(&types.Account{PublicKey: zkappAddress})
	assert.False(t, ok, "未部署的账户没有状态")
}

func TestUpdate_ProveAndVerify(t *testing.T) {
	class, err := Load(AddContractName)
	require.NoError(t, err)
	compiled, err := class.Compile(NewMemoryKeyStore())
	require.NoError(t, err)
	assert.Positive(t, compiled.ConstraintCount())

	inst := NewInstance(class, types.MustParsePublicKey(zkappAddress))
	tx, err := inst.BuildUpdate(zkappAccount("1"))
	require.NoError(t, err)
	assert.Equal(t, "1", tx.OldNum)
	assert.Equal(t, "3", tx.NewNum)

	_, err = tx.ToJSON()
	assert.ErrorIs(t, err, ErrNotProved)

	require.NoError(t, tx.Prove(compiled))
	raw, err := tx.ToJSON()
	require.NoError(t, err)

	var cmd types.ZkappCommand
	require.NoError(t, json.Unmarshal([]byte(raw), &cmd))
	assert.Nil(t, cmd.FeePayer)
	assert.Equal(t, zkappAddress, cmd.ZkappAddress)
	assert.Equal(t, types.StateUpdate{Slot: 0, Old: "1", New: "3"}, cmd.Update)

	vk, err := compiled.VerificationKey()
	require.NoError(t, err)
	require.NoError(t, VerifyUpdate(vk, cmd.Update.Old, cmd.Update.New, cmd.Proof))

	// 篡改公开输入
	err = VerifyUpdate(vk, "1", "5", cmd.Proof)
	assert.ErrorIs(t, err, ErrInvalidProof)

	// 非法编码
	err = VerifyUpdate(vk, "1", "3", "!!")
	assert.ErrorIs(t, err, ErrInvalidProof)
}

func TestUpdate_NoState(t *testing.T) {
	class, _ := Load(AddContractName)
	inst := NewInstance(class, types.MustParsePublicKey(zkappAddress))
	_, err := inst.BuildUpdate(&types.Account{PublicKey: zkappAddress})
	assert.ErrorIs(t, err, ErrNoState)

	// 字段值不是十进制整数
	for _, v := range []string{"abc", "0x10", "1.5"} {
		tx, err := inst.BuildUpdate(zkappAccount(v))
		assert.ErrorIs(t, err, ErrNoState, v)
		assert.Nil(t, tx)
	}
}

func TestDirKeyStore_SharesKeys(t *testing.T) {
	dir := t.TempDir()
	class, _ := Load(AddContractName)

	first, err := class.Compile(NewDirKeyStore(dir))
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := class.Compile(NewDirKeyStore(dir))
	require.NoError(t, err)
	assert.True(t, second.FromCache)

	vk1, err := first.VerificationKey()
	require.NoError(t, err)
	vk2, err := second.VerificationKey()
	require.NoError(t, err)
	assert.Equal(t, vk1, vk2)

	// 第二次编译产生的证明可被第一次的验证密钥校验
	inst := NewInstance(class, types.MustParsePublicKey(zkappAddress))
	tx, err := inst.BuildUpdate(zkappAccount("7"))
	require.NoError(t, err)
	require.NoError(t, tx.Prove(second))
	require.NoError(t, VerifyUpdate(vk1, "7", "9", base64.StdEncoding.EncodeToString(tx.Proof)))
}
