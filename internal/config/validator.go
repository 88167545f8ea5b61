package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/weisyn/zkapp/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

var knownNetworks = map[string]bool{
	"berkeley": true,
	"local":    true,
}

// ValidateMandatoryConfig 验证用户显式设置的配置项
//
// 📋 **检查项**：
// - zkapp.network_id 必须是已知网络
// - 远程网络必须有 graphql_endpoint
// - zkapp.contract_address 必须是合法 base58check 公钥
// - 时长字段必须可解析且为非负值，轮询间隔必须为正
// - 手续费必须为正
// - explorer_tx_url 必须包含一个 %s
//
// 未设置的字段使用默认值，默认值本身总是合法的。
func ValidateMandatoryConfig(userConfig *types.UserConfig) error {
	if userConfig == nil || userConfig.Zkapp == nil {
		return nil
	}
	z := userConfig.Zkapp
	var errs []error

	if z.NetworkID != nil && !knownNetworks[*z.NetworkID] {
		errs = append(errs, &ValidationError{
			Field:   "zkapp.network_id",
			Message: fmt.Sprintf("未知网络 %q，可选值: berkeley, local", *z.NetworkID),
		})
	}
	if z.GraphQLEndpoint != nil && *z.GraphQLEndpoint == "" && (z.NetworkID == nil || *z.NetworkID != "local") {
		errs = append(errs, &ValidationError{
			Field:   "zkapp.graphql_endpoint",
			Message: "远程网络必须配置 GraphQL 地址",
		})
	}
	if z.ContractAddress != nil {
		if _, err := types.ParsePublicKey(*z.ContractAddress); err != nil {
			errs = append(errs, &ValidationError{
				Field:   "zkapp.contract_address",
				Message: err.Error(),
			})
		}
	}
	if z.WarmupDelay != nil {
		if d, err := time.ParseDuration(*z.WarmupDelay); err != nil || d < 0 {
			errs = append(errs, &ValidationError{
				Field:   "zkapp.warmup_delay",
				Message: fmt.Sprintf("无效时长 %q", *z.WarmupDelay),
			})
		}
	}
	if z.PollInterval != nil {
		if d, err := time.ParseDuration(*z.PollInterval); err != nil || d <= 0 {
			errs = append(errs, &ValidationError{
				Field:   "zkapp.poll_interval",
				Message: fmt.Sprintf("无效时长 %q，必须大于 0", *z.PollInterval),
			})
		}
	}
	if z.TransactionFee != nil && *z.TransactionFee <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "zkapp.transaction_fee",
			Message: "手续费必须大于 0",
		})
	}
	if z.ExplorerTxURL != nil && strings.Count(*z.ExplorerTxURL, "%s") != 1 {
		errs = append(errs, &ValidationError{
			Field:   "zkapp.explorer_tx_url",
			Message: "链接模板必须包含且仅包含一个 %s",
		})
	}

	return errors.Join(errs...)
}
