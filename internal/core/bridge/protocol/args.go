package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/weisyn/zkapp/pkg/types"
)

// ============================================================================
// 参数
// ============================================================================

// NetworkArgs network-select 参数
type NetworkArgs struct {
	NetworkID string `json:"networkId" validate:"required,oneof=berkeley local"`
	Endpoint  string `json:"endpoint" validate:"required_unless=NetworkID local,omitempty,url"`
}

// PublicKeyArgs fetch-account 与 init-contract-instance 参数
type PublicKeyArgs struct {
	PublicKey58 string `json:"publicKey58" validate:"required,minakey"`
}

// ============================================================================
// 结果
// ============================================================================

// FetchAccountResult fetch-account 结果：账户不存在体现为 Error 字段而非失败
type FetchAccountResult = types.FetchAccountResult

// CompileResult compile-contract 结果
type CompileResult struct {
	Constraints int   `json:"constraints"`
	DurationMs  int64 `json:"durationMs"`
	FromCache   bool  `json:"fromCache"`
}

// CurrentValueResult fetch-current-value 结果
type CurrentValueResult struct {
	Value string `json:"value"`
}

// TransactionJSONResult serialize-transaction 结果
type TransactionJSONResult struct {
	Transaction string `json:"transaction"`
}

// ============================================================================
// 校验
// ============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// minakey: base58check 编码的账户公钥
	if err := v.RegisterValidation("minakey", func(fl validator.FieldLevel) bool {
		_, err := types.ParsePublicKey(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// DecodeArgs 严格解码并校验参数；任何失败都包装为 ErrInvalidArgs
func DecodeArgs(raw json.RawMessage, dst interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: missing arguments", ErrInvalidArgs)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

// DecodeResult 解码结果，空结果时返回 false
func DecodeResult(raw json.RawMessage, dst interface{}) (bool, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode result: %w", err)
	}
	return true, nil
}
