package types

// ZkappCommand 提交上链的 zkApp 交易
//
// serialize-transaction 产出的 JSON 不含 FeePayer，
// 由钱包在 SendTransaction 时补齐手续费、nonce 与签名。
type ZkappCommand struct {
	FeePayer     *FeePayer   `json:"feePayer,omitempty"`
	ZkappAddress string      `json:"zkappAddress"`
	Update       StateUpdate `json:"update"`
	Proof        string      `json:"proof"` // base64 编码的 groth16 证明
}

// StateUpdate 单个状态槽的前后值（十进制字符串）
type StateUpdate struct {
	Slot int    `json:"slot"`
	Old  string `json:"old"`
	New  string `json:"new"`
}

// FeePayer 手续费支付方
type FeePayer struct {
	PublicKey string `json:"publicKey"`
	Fee       string `json:"fee"`   // nanomina
	Nonce     string `json:"nonce"`
	Memo      string `json:"memo"`
	Signature string `json:"signature,omitempty"` // base58 编码的 secp256k1 DER 签名
}

// NanominaPerMina 1 MINA = 10^9 nanomina
const NanominaPerMina = 1_000_000_000
