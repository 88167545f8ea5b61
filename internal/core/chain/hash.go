package chain

import (
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// TransactionHash 交易哈希：blake2b-256 后 base58 编码
func TransactionHash(commandJSON []byte) string {
	sum := blake2b.Sum256(commandJSON)
	return base58.Encode(sum[:])
}
