package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/weisyn/zkapp/internal/core/contract"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkapp/pkg/types"
)

// LocalNetworkID 本地网络标识
const LocalNetworkID = "local"

// zkappStateSize 每个 zkApp 账户的状态槽数量
const zkappStateSize = 8

var (
	// ErrInvalidCommand 交易格式错误
	ErrInvalidCommand = errors.New("invalid zkapp command")
	// ErrBadNonce nonce 不匹配
	ErrBadNonce = errors.New("bad nonce")
	// ErrInsufficientBalance 余额不足以支付手续费
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNotZkapp 目标账户未部署合约
	ErrNotZkapp = errors.New("account is not a zkapp")
	// ErrStateMismatch 交易的旧状态与链上不一致
	ErrStateMismatch = errors.New("zkapp state precondition failed")
)

// ledgerAccount 账本中的账户
type ledgerAccount struct {
	publicKey       types.PublicKey
	balance         uint64 // nanomina
	nonce           uint64
	zkappState      []string
	verificationKey string
}

func (a *ledgerAccount) snapshot() *types.Account {
	acc := &types.Account{
		PublicKey:       a.publicKey.String(),
		Nonce:           strconv.FormatUint(a.nonce, 10),
		Balance:         types.Balance{Total: strconv.FormatUint(a.balance, 10)},
		VerificationKey: a.verificationKey,
	}
	if a.zkappState != nil {
		acc.ZkappState = append([]string(nil), a.zkappState...)
	}
	return acc
}

// LocalNetwork 进程内账本
//
// 🎯 **用途**：离线开发与测试，devnet 服务通过 GraphQL 对外暴露它。
// 提交的交易会依次校验：格式、nonce、余额、签名、合约状态前置条件、groth16 证明。
type LocalNetwork struct {
	logger log.Logger

	mu       sync.RWMutex
	accounts map[types.PublicKey]*ledgerAccount
	txs      []string // 已接受的交易哈希（按顺序）
}

var _ chainif.Network = (*LocalNetwork)(nil)

// NewLocalNetwork 创建空账本
func NewLocalNetwork(logger log.Logger) *LocalNetwork {
	return &LocalNetwork{
		logger:   logger,
		accounts: make(map[types.PublicKey]*ledgerAccount),
	}
}

// ID 实现 chain.Network
func (n *LocalNetwork) ID() string {
	return LocalNetworkID
}

// Fund 为账户注资（账户不存在时创建）
func (n *LocalNetwork) Fund(publicKey types.PublicKey, nanomina uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	acc := n.accountLocked(publicKey)
	acc.balance += nanomina
	if n.logger != nil {
		n.logger.Infof("本地账本注资: %s +%d", publicKey, nanomina)
	}
}

// Deploy 在地址上部署合约：登记验证密钥并写入初始状态
func (n *LocalNetwork) Deploy(address types.PublicKey, compiled *contract.Compiled) error {
	vk, err := compiled.VerificationKey()
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	acc := n.accountLocked(address)
	acc.verificationKey = vk
	acc.zkappState = make([]string, zkappStateSize)
	for i := range acc.zkappState {
		acc.zkappState[i] = "0"
	}
	acc.zkappState[contract.NumSlot] = contract.InitialNum
	if n.logger != nil {
		n.logger.Infof("本地账本部署合约: %s", address)
	}
	return nil
}

func (n *LocalNetwork) accountLocked(publicKey types.PublicKey) *ledgerAccount {
	acc, ok := n.accounts[publicKey]
	if !ok {
		acc = &ledgerAccount{publicKey: publicKey}
		n.accounts[publicKey] = acc
	}
	return acc
}

// FetchAccount 实现 chain.Network
func (n *LocalNetwork) FetchAccount(ctx context.Context, publicKey types.PublicKey) (*types.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	acc, ok := n.accounts[publicKey]
	if !ok {
		return nil, chainif.ErrAccountNotFound
	}
	return acc.snapshot(), nil
}

// SendZkapp 实现 chain.Network
func (n *LocalNetwork) SendZkapp(ctx context.Context, commandJSON string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var cmd types.ZkappCommand
	if err := json.Unmarshal([]byte(commandJSON), &cmd); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	if cmd.FeePayer == nil {
		return "", fmt.Errorf("%w: missing fee payer", ErrInvalidCommand)
	}
	feePayerKey, err := types.ParsePublicKey(cmd.FeePayer.PublicKey)
	if err != nil {
		return "", fmt.Errorf("%w: fee payer: %v", ErrInvalidCommand, err)
	}
	zkappKey, err := types.ParsePublicKey(cmd.ZkappAddress)
	if err != nil {
		return "", fmt.Errorf("%w: zkapp address: %v", ErrInvalidCommand, err)
	}
	fee, err := strconv.ParseUint(cmd.FeePayer.Fee, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: fee: %v", ErrInvalidCommand, err)
	}
	nonce, err := strconv.ParseUint(cmd.FeePayer.Nonce, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %v", ErrInvalidCommand, err)
	}
	if err := VerifySignature(cmd); err != nil {
		return "", err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	payer, ok := n.accounts[feePayerKey]
	if !ok {
		return "", fmt.Errorf("fee payer: %w", chainif.ErrAccountNotFound)
	}
	if payer.nonce != nonce {
		return "", fmt.Errorf("%w: expected %d, got %d", ErrBadNonce, payer.nonce, nonce)
	}
	if payer.balance < fee {
		return "", fmt.Errorf("%w: balance %d < fee %d", ErrInsufficientBalance, payer.balance, fee)
	}

	zkapp, ok := n.accounts[zkappKey]
	if !ok || zkapp.verificationKey == "" {
		return "", ErrNotZkapp
	}
	slot := cmd.Update.Slot
	if slot < 0 || slot >= len(zkapp.zkappState) {
		return "", fmt.Errorf("%w: slot %d", ErrInvalidCommand, slot)
	}
	if zkapp.zkappState[slot] != cmd.Update.Old {
		return "", fmt.Errorf("%w: on-chain %s, command %s", ErrStateMismatch, zkapp.zkappState[slot], cmd.Update.Old)
	}
	if err := contract.VerifyUpdate(zkapp.verificationKey, cmd.Update.Old, cmd.Update.New, cmd.Proof); err != nil {
		return "", err
	}

	payer.balance -= fee
	payer.nonce++
	zkapp.zkappState[slot] = cmd.Update.New

	hash := TransactionHash([]byte(commandJSON))
	n.txs = append(n.txs, hash)
	if n.logger != nil {
		n.logger.Infof("本地账本接受交易: hash=%s, %s -> %s", hash, cmd.Update.Old, cmd.Update.New)
	}
	return hash, nil
}

// Transactions 已接受的交易哈希
func (n *LocalNetwork) Transactions() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.txs...)
}
