package chain_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/internal/core/testutil"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/types"
)

const testFee = types.NanominaPerMina / 10

func TestLocalNetwork_FetchAccount(t *testing.T) {
	f := testutil.NewLedgerFixture(t)
	ctx := context.Background()

	acc, err := f.Ledger.FetchAccount(ctx, f.Zkapp)
	require.NoError(t, err)
	assert.True(t, acc.IsZkapp())
	assert.Len(t, acc.ZkappState, 8)
	num, ok := f.Instance.ReadNum(acc)
	assert.True(t, ok)
	assert.Equal(t, "1", num)

	payer, err := f.Ledger.FetchAccount(ctx, f.Payer.Public)
	require.NoError(t, err)
	assert.False(t, payer.IsZkapp())
	assert.Equal(t, strconv.FormatUint(testutil.PayerFunding, 10), payer.Balance.Total)
	assert.Equal(t, "0", payer.Nonce)

	stranger, err := chain.NewKeyPairFromSeed(make([]byte, 32))
	require.NoError(t, err)
	_, err = f.Ledger.FetchAccount(ctx, stranger.Public)
	assert.ErrorIs(t, err, chainif.ErrAccountNotFound)
}

func TestLocalNetwork_SendZkapp(t *testing.T) {
	f := testutil.NewLedgerFixture(t)
	ctx := context.Background()

	cmd := testutil.SignCommand(t, f.Payer, f.ProvedUpdate(t), testFee, 0)
	hash, err := f.Ledger.SendZkapp(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, chain.TransactionHash([]byte(cmd)), hash)
	assert.Equal(t, []string{hash}, f.Ledger.Transactions())

	acc, err := f.Ledger.FetchAccount(ctx, f.Zkapp)
	require.NoError(t, err)
	num, _ := f.Instance.ReadNum(acc)
	assert.Equal(t, "3", num)

	payer, err := f.Ledger.FetchAccount(ctx, f.Payer.Public)
	require.NoError(t, err)
	assert.Equal(t, "1", payer.Nonce)
	assert.Equal(t, strconv.FormatUint(testutil.PayerFunding-testFee, 10), payer.Balance.Total)

	// 重放：nonce 已前进
	_, err = f.Ledger.SendZkapp(ctx, cmd)
	assert.ErrorIs(t, err, chain.ErrBadNonce)

	// 第二笔基于新状态
	cmd2 := testutil.SignCommand(t, f.Payer, f.ProvedUpdate(t), testFee, 1)
	_, err = f.Ledger.SendZkapp(ctx, cmd2)
	require.NoError(t, err)
	acc, err = f.Ledger.FetchAccount(ctx, f.Zkapp)
	require.NoError(t, err)
	num, _ = f.Instance.ReadNum(acc)
	assert.Equal(t, "5", num)
}

func TestLocalNetwork_SendZkapp_Rejections(t *testing.T) {
	f := testutil.NewLedgerFixture(t)
	ctx := context.Background()
	raw := f.ProvedUpdate(t)

	tests := []struct {
		name    string
		command func() string
		wantErr error
	}{
		{
			name:    "非法JSON",
			command: func() string { return "{" },
			wantErr: chain.ErrInvalidCommand,
		},
		{
			name:    "缺少手续费支付方",
			command: func() string { return raw },
			wantErr: chain.ErrInvalidCommand,
		},
		{
			name:    "nonce错误",
			command: func() string { return testutil.SignCommand(t, f.Payer, raw, testFee, 4) },
			wantErr: chain.ErrBadNonce,
		},
		{
			name: "余额不足",
			command: func() string {
				return testutil.SignCommand(t, f.Payer, raw, testutil.PayerFunding+1, 0)
			},
			wantErr: chain.ErrInsufficientBalance,
		},
		{
			name: "未注资账户",
			command: func() string {
				stranger, err := chain.NewKeyPairFromSeed(make([]byte, 32))
				require.NoError(t, err)
				return testutil.SignCommand(t, stranger, raw, testFee, 0)
			},
			wantErr: chainif.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Ledger.SendZkapp(ctx, tt.command())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// 所有被拒绝的交易都不改变状态
	acc, err := f.Ledger.FetchAccount(ctx, f.Zkapp)
	require.NoError(t, err)
	num, _ := f.Instance.ReadNum(acc)
	assert.Equal(t, "1", num)
	assert.Empty(t, f.Ledger.Transactions())
}

func TestLocalNetwork_SendZkapp_StaleState(t *testing.T) {
	f := testutil.NewLedgerFixture(t)
	ctx := context.Background()

	stale := f.ProvedUpdate(t)
	_, err := f.Ledger.SendZkapp(ctx, testutil.SignCommand(t, f.Payer, f.ProvedUpdate(t), testFee, 0))
	require.NoError(t, err)

	// 基于旧状态 1 的交易在状态变为 3 之后被拒绝
	_, err = f.Ledger.SendZkapp(ctx, testutil.SignCommand(t, f.Payer, stale, testFee, 1))
	assert.ErrorIs(t, err, chain.ErrStateMismatch)
}

func TestLocalNetwork_ContextCancelled(t *testing.T) {
	f := testutil.NewLedgerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Ledger.FetchAccount(ctx, f.Zkapp)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.Ledger.SendZkapp(ctx, "{}")
	assert.ErrorIs(t, err, context.Canceled)
}
