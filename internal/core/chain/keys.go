// Package chain 提供链网络访问：远程 GraphQL 网络、进程内本地账本与网络注册表
package chain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/weisyn/zkapp/pkg/types"
)

// seedSize 派生密钥使用的种子长度
const seedSize = 32

// ErrBadSignature 签名校验失败
var ErrBadSignature = errors.New("bad signature")

// KeyPair 账户密钥对（secp256k1）
type KeyPair struct {
	private *btcec.PrivateKey
	Public  types.PublicKey
}

// NewKeyPairFromSeed 由种子前 32 字节派生密钥对
//
// 私钥标量取 blake2b-256(seed)，任意种子（包括全零）都能得到有效私钥。
func NewKeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) < seedSize {
		return nil, fmt.Errorf("seed too short: %d bytes", len(seed))
	}
	scalar := blake2b.Sum256(seed[:seedSize])
	priv, pub := btcec.PrivKeyFromBytes(scalar[:])
	return &KeyPair{private: priv, Public: PublicKeyFromBtcec(pub)}, nil
}

// PublicKeyFromBtcec 压缩公钥 → x 坐标 + 奇偶位
func PublicKeyFromBtcec(pub *btcec.PublicKey) types.PublicKey {
	compressed := pub.SerializeCompressed()
	var pk types.PublicKey
	copy(pk.X[:], compressed[1:])
	pk.IsOdd = compressed[0] == 0x03
	return pk
}

func toBtcec(pk types.PublicKey) (*btcec.PublicKey, error) {
	compressed := make([]byte, 0, 33)
	if pk.IsOdd {
		compressed = append(compressed, 0x03)
	} else {
		compressed = append(compressed, 0x02)
	}
	compressed = append(compressed, pk.X[:]...)
	return btcec.ParsePubKey(compressed)
}

// SigningPayload 手续费支付方签名覆盖的字节：去掉签名后的交易 JSON
func SigningPayload(cmd types.ZkappCommand) ([]byte, error) {
	if cmd.FeePayer != nil {
		fp := *cmd.FeePayer
		fp.Signature = ""
		cmd.FeePayer = &fp
	}
	return json.Marshal(cmd)
}

func signingDigest(cmd types.ZkappCommand) ([]byte, error) {
	payload, err := SigningPayload(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshal signing payload: %w", err)
	}
	digest := blake2b.Sum256(payload)
	return digest[:], nil
}

// Sign 为交易签名，返回 base58 编码的 DER 签名
func (k *KeyPair) Sign(cmd types.ZkappCommand) (string, error) {
	digest, err := signingDigest(cmd)
	if err != nil {
		return "", err
	}
	return base58.Encode(ecdsa.Sign(k.private, digest).Serialize()), nil
}

// VerifySignature 校验手续费支付方签名
func VerifySignature(cmd types.ZkappCommand) error {
	if cmd.FeePayer == nil || cmd.FeePayer.Signature == "" {
		return fmt.Errorf("%w: missing", ErrBadSignature)
	}
	pk, err := types.ParsePublicKey(cmd.FeePayer.PublicKey)
	if err != nil {
		return err
	}
	pub, err := toBtcec(pk)
	if err != nil {
		return fmt.Errorf("%w: fee payer key is not on secp256k1: %v", ErrBadSignature, err)
	}
	raw, err := base58.Decode(cmd.FeePayer.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	sig, err := ecdsa.ParseDERSignature(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	digest, err := signingDigest(cmd)
	if err != nil {
		return err
	}
	if !sig.Verify(digest, pub) {
		return ErrBadSignature
	}
	return nil
}
