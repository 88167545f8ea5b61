package devnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/weisyn/zkapp/internal/core/chain"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/types"
)

// publicKeyScalar GraphQL PublicKey 标量
type publicKeyScalar struct {
	types.PublicKey
}

func (publicKeyScalar) ImplementsGraphQLType(name string) bool {
	return name == "PublicKey"
}

func (k *publicKeyScalar) UnmarshalGraphQL(input interface{}) error {
	s, ok := input.(string)
	if !ok {
		return fmt.Errorf("PublicKey must be a string, got %T", input)
	}
	pk, err := types.ParsePublicKey(s)
	if err != nil {
		return err
	}
	k.PublicKey = pk
	return nil
}

func (k publicKeyScalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// resolver 根解析器
type resolver struct {
	ledger *chain.LocalNetwork
}

func (r *resolver) Account(ctx context.Context, args struct{ PublicKey publicKeyScalar }) (*accountResolver, error) {
	acc, err := r.ledger.FetchAccount(ctx, args.PublicKey.PublicKey)
	if errors.Is(err, chainif.ErrAccountNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &accountResolver{account: acc, key: args.PublicKey}, nil
}

type sendZkappArgs struct {
	Input struct {
		ZkappCommand string
	}
}

func (r *resolver) SendZkapp(ctx context.Context, args sendZkappArgs) (*sendZkappPayload, error) {
	hash, err := r.ledger.SendZkapp(ctx, args.Input.ZkappCommand)
	if err != nil {
		return nil, err
	}
	return &sendZkappPayload{hash: hash}, nil
}

type sendZkappPayload struct {
	hash string
}

func (p *sendZkappPayload) Zkapp() *zkappCommandResult {
	return &zkappCommandResult{hash: p.hash}
}

type zkappCommandResult struct {
	hash string
}

func (z *zkappCommandResult) Hash() string {
	return z.hash
}

type accountResolver struct {
	account *types.Account
	key     publicKeyScalar
}

func (a *accountResolver) PublicKey() publicKeyScalar {
	return a.key
}

func (a *accountResolver) Nonce() string {
	return a.account.Nonce
}

func (a *accountResolver) Balance() *balanceResolver {
	return &balanceResolver{total: a.account.Balance.Total}
}

func (a *accountResolver) ZkappState() *[]string {
	if a.account.ZkappState == nil {
		return nil
	}
	state := a.account.ZkappState
	return &state
}

func (a *accountResolver) VerificationKey() *verificationKeyResolver {
	if !a.account.IsZkapp() {
		return nil
	}
	return &verificationKeyResolver{data: a.account.VerificationKey}
}

type balanceResolver struct {
	total string
}

func (b *balanceResolver) Total() string {
	return b.total
}

type verificationKeyResolver struct {
	data string
}

func (v *verificationKeyResolver) VerificationKey() string {
	return v.data
}
