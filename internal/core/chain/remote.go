package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/machinebox/graphql"

	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkapp/pkg/types"
)

const accountQuery = `query Account($publicKey: PublicKey!) {
  account(publicKey: $publicKey) {
    publicKey
    nonce
    balance { total }
    zkappState
    verificationKey { verificationKey }
  }
}`

const sendZkappMutation = `mutation SendZkapp($input: SendZkappInput!) {
  sendZkapp(input: $input) {
    zkapp { hash }
  }
}`

// graphqlErrorPrefix graphql 客户端为服务端错误加的前缀
const graphqlErrorPrefix = "graphql: "

// RemoteNetwork 通过 GraphQL over HTTP 访问链
type RemoteNetwork struct {
	id       string
	endpoint string
	client   *graphql.Client
	logger   log.Logger
}

var _ chainif.Network = (*RemoteNetwork)(nil)

// NewRemoteNetwork 创建远程网络客户端
func NewRemoteNetwork(id, endpoint string, timeout time.Duration, logger log.Logger) *RemoteNetwork {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	client := graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient))
	if logger != nil {
		client.Log = func(s string) { logger.Debugf("[graphql %s] %s", id, s) }
	}
	return &RemoteNetwork{
		id:       id,
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// ID 实现 chain.Network
func (n *RemoteNetwork) ID() string {
	return n.id
}

// Endpoint GraphQL 地址
func (n *RemoteNetwork) Endpoint() string {
	return n.endpoint
}

// GraphQLError 服务端返回的 GraphQL 错误
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("graphql error: %v", e.Messages)
}

// run 执行请求，服务端错误转换为 *GraphQLError
func (n *RemoteNetwork) run(ctx context.Context, req *graphql.Request, result interface{}) error {
	err := n.client.Run(ctx, req, result)
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &urlErr) {
		return fmt.Errorf("graphql request: %w", err)
	}
	// 客户端只带回第一条服务端错误
	if msg := err.Error(); strings.HasPrefix(msg, graphqlErrorPrefix) {
		return &GraphQLError{Messages: []string{strings.TrimPrefix(msg, graphqlErrorPrefix)}}
	}
	return fmt.Errorf("graphql response: %w", err)
}

type accountData struct {
	Account *struct {
		PublicKey       string        `json:"publicKey"`
		Nonce           string        `json:"nonce"`
		Balance         types.Balance `json:"balance"`
		ZkappState      []string      `json:"zkappState"`
		VerificationKey *struct {
			VerificationKey string `json:"verificationKey"`
		} `json:"verificationKey"`
	} `json:"account"`
}

// FetchAccount 实现 chain.Network
func (n *RemoteNetwork) FetchAccount(ctx context.Context, publicKey types.PublicKey) (*types.Account, error) {
	req := graphql.NewRequest(accountQuery)
	req.Var("publicKey", publicKey.String())

	var data accountData
	if err := n.run(ctx, req, &data); err != nil {
		return nil, err
	}
	if data.Account == nil {
		return nil, chainif.ErrAccountNotFound
	}
	acc := &types.Account{
		PublicKey:  data.Account.PublicKey,
		Nonce:      data.Account.Nonce,
		Balance:    data.Account.Balance,
		ZkappState: data.Account.ZkappState,
	}
	if data.Account.VerificationKey != nil {
		acc.VerificationKey = data.Account.VerificationKey.VerificationKey
	}
	return acc, nil
}

type sendZkappData struct {
	SendZkapp struct {
		Zkapp struct {
			Hash string `json:"hash"`
		} `json:"zkapp"`
	} `json:"sendZkapp"`
}

// SendZkapp 实现 chain.Network
func (n *RemoteNetwork) SendZkapp(ctx context.Context, commandJSON string) (string, error) {
	req := graphql.NewRequest(sendZkappMutation)
	req.Var("input", map[string]interface{}{"zkappCommand": commandJSON})

	var data sendZkappData
	if err := n.run(ctx, req, &data); err != nil {
		return "", err
	}
	if data.SendZkapp.Zkapp.Hash == "" {
		return "", fmt.Errorf("sendZkapp returned no hash")
	}
	return data.SendZkapp.Zkapp.Hash, nil
}
