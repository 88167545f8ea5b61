package client

import (
	"context"

	"github.com/weisyn/zkapp/internal/core/bridge/protocol"
)

// SelectNetwork network-select
func (c *Client) SelectNetwork(ctx context.Context, networkID, endpoint string) error {
	_, err := c.call(ctx, protocol.OpNetworkSelect, &protocol.NetworkArgs{NetworkID: networkID, Endpoint: endpoint}, nil)
	return err
}

// LoadContract load-contract
func (c *Client) LoadContract(ctx context.Context) error {
	_, err := c.call(ctx, protocol.OpLoadContract, nil, nil)
	return err
}

// CompileContract compile-contract
func (c *Client) CompileContract(ctx context.Context) (*protocol.CompileResult, error) {
	var result protocol.CompileResult
	if _, err := c.call(ctx, protocol.OpCompileContract, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchAccount fetch-account；账户不存在体现在结果的 Error 字段
func (c *Client) FetchAccount(ctx context.Context, publicKey58 string) (*protocol.FetchAccountResult, error) {
	var result protocol.FetchAccountResult
	if _, err := c.call(ctx, protocol.OpFetchAccount, &protocol.PublicKeyArgs{PublicKey58: publicKey58}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InitContractInstance init-contract-instance
func (c *Client) InitContractInstance(ctx context.Context, publicKey58 string) error {
	_, err := c.call(ctx, protocol.OpInitContractInstance, &protocol.PublicKeyArgs{PublicKey58: publicKey58}, nil)
	return err
}

// BuildUpdateTransaction build-update-transaction
func (c *Client) BuildUpdateTransaction(ctx context.Context) error {
	_, err := c.call(ctx, protocol.OpBuildUpdateTransaction, nil, nil)
	return err
}

// ProveTransaction prove-transaction
func (c *Client) ProveTransaction(ctx context.Context) error {
	_, err := c.call(ctx, protocol.OpProveTransaction, nil, nil)
	return err
}

// SerializeTransaction serialize-transaction；结果为空时返回 ""
func (c *Client) SerializeTransaction(ctx context.Context) (string, error) {
	var result protocol.TransactionJSONResult
	if _, err := c.call(ctx, protocol.OpSerializeTransaction, nil, &result); err != nil {
		return "", err
	}
	return result.Transaction, nil
}

// FetchCurrentValue fetch-current-value；合约账户没有状态时 ok 为 false
func (c *Client) FetchCurrentValue(ctx context.Context) (value string, ok bool, err error) {
	var result protocol.CurrentValueResult
	present, err := c.call(ctx, protocol.OpFetchCurrentValue, nil, &result)
	if err != nil || !present {
		return "", false, err
	}
	return result.Value, true, nil
}
