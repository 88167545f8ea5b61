package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/weisyn/zkapp/internal/core/chain"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
	"github.com/weisyn/zkapp/pkg/types"
)

// LocalWallet 单账户助记词钱包
//
// 🎯 **SendTransaction 流程**：
// 1. 解析未签名的交易 JSON
// 2. 从网络读取本账户 nonce
// 3. 填写手续费支付方（手续费换算为 nanomina、memo、nonce）并签名
// 4. 通过网络提交并返回交易哈希
type LocalWallet struct {
	keys    *chain.KeyPair
	network chainif.Network
	logger  log.Logger
	locked  atomic.Bool
}

var _ walletif.Provider = (*LocalWallet)(nil)

// NewLocalWallet 由助记词创建钱包
func NewLocalWallet(mnemonic, passphrase string, network chainif.Network, logger log.Logger) (*LocalWallet, error) {
	seed, err := MnemonicToSeed(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	keys, err := chain.NewKeyPairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return &LocalWallet{keys: keys, network: network, logger: logger}, nil
}

// Address 账户地址（base58）
func (w *LocalWallet) Address() string {
	return w.keys.Public.String()
}

// PublicKey 账户公钥
func (w *LocalWallet) PublicKey() types.PublicKey {
	return w.keys.Public
}

// Lock 锁定钱包，此后的请求都被拒绝
func (w *LocalWallet) Lock() {
	w.locked.Store(true)
}

// Unlock 解锁钱包
func (w *LocalWallet) Unlock() {
	w.locked.Store(false)
}

// RequestAccounts 实现 wallet.Provider
func (w *LocalWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	if w.locked.Load() {
		return nil, walletif.ErrUserRejected
	}
	return []string{w.Address()}, nil
}

// SendTransaction 实现 wallet.Provider
func (w *LocalWallet) SendTransaction(ctx context.Context, args walletif.SendTransactionArgs) (*walletif.SendTransactionResult, error) {
	if w.locked.Load() {
		return nil, walletif.ErrUserRejected
	}

	var cmd types.ZkappCommand
	if err := json.Unmarshal([]byte(args.Transaction), &cmd); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	fee, err := feeToNanomina(args.FeePayer.Fee)
	if err != nil {
		return nil, err
	}

	account, err := w.network.FetchAccount(ctx, w.keys.Public)
	if err != nil {
		if errors.Is(err, chainif.ErrAccountNotFound) {
			return nil, fmt.Errorf("fee payer %s is not funded: %w", w.Address(), err)
		}
		return nil, fmt.Errorf("fetch fee payer account: %w", err)
	}

	cmd.FeePayer = &types.FeePayer{
		PublicKey: w.Address(),
		Fee:       strconv.FormatUint(fee, 10),
		Nonce:     account.Nonce,
		Memo:      args.FeePayer.Memo,
	}
	signature, err := w.keys.Sign(cmd)
	if err != nil {
		return nil, err
	}
	cmd.FeePayer.Signature = signature

	signed, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode signed transaction: %w", err)
	}
	hash, err := w.network.SendZkapp(ctx, string(signed))
	if err != nil {
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	if w.logger != nil {
		w.logger.Infof("钱包已提交交易: hash=%s, fee=%s nanomina, nonce=%s", hash, cmd.FeePayer.Fee, cmd.FeePayer.Nonce)
	}
	return &walletif.SendTransactionResult{Hash: hash}, nil
}

// feeToNanomina MINA 换算为 nanomina
func feeToNanomina(fee float64) (uint64, error) {
	if fee <= 0 || math.IsNaN(fee) || math.IsInf(fee, 0) {
		return 0, fmt.Errorf("invalid fee: %v", fee)
	}
	return uint64(math.Round(fee * types.NanominaPerMina)), nil
}
