package types

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// ============================================================================
// 🔑 公钥编码
// ============================================================================
//
// 公钥采用 base58check 编码（双 SHA-256 校验和），格式：
//
//	version(0xcb) ‖ 0x01 ‖ 0x01 ‖ x(32 字节) ‖ isOdd(1 字节)
//
// 编码后为 55 个字符、以 "B62" 开头的字符串。

const (
	// PublicKeyVersion base58check 版本字节
	PublicKeyVersion byte = 0xcb

	publicKeyPayloadLen = 35
	publicKeyTag        = 0x01
)

// ErrInvalidPublicKey 公钥格式错误
var ErrInvalidPublicKey = errors.New("invalid public key")

// PublicKey 压缩形式的公钥（x 坐标 + 奇偶位）
type PublicKey struct {
	X     [32]byte
	IsOdd bool
}

// ParsePublicKey 解析 base58check 公钥字符串
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	payload, version, err := base58.CheckDecode(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if version != PublicKeyVersion {
		return pk, fmt.Errorf("%w: unexpected version byte 0x%02x", ErrInvalidPublicKey, version)
	}
	if len(payload) != publicKeyPayloadLen || payload[0] != publicKeyTag || payload[1] != publicKeyTag {
		return pk, fmt.Errorf("%w: malformed payload", ErrInvalidPublicKey)
	}
	switch payload[34] {
	case 0:
	case 1:
		pk.IsOdd = true
	default:
		return pk, fmt.Errorf("%w: bad parity byte", ErrInvalidPublicKey)
	}
	copy(pk.X[:], payload[2:34])
	return pk, nil
}

// MustParsePublicKey 解析失败时 panic，仅用于常量地址
func MustParsePublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String 返回 base58check 编码
func (k PublicKey) String() string {
	payload := make([]byte, 0, publicKeyPayloadLen)
	payload = append(payload, publicKeyTag, publicKeyTag)
	payload = append(payload, k.X[:]...)
	if k.IsOdd {
		payload = append(payload, 1)
	} else {
		payload = append(payload, 0)
	}
	return base58.CheckEncode(payload, PublicKeyVersion)
}

// IsZero 是否为零值
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

// MarshalText 实现 encoding.TextMarshaler
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (k *PublicKey) UnmarshalText(b []byte) error {
	pk, err := ParsePublicKey(string(b))
	if err != nil {
		return err
	}
	*k = pk
	return nil
}
