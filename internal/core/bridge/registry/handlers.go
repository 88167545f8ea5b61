package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/weisyn/zkapp/internal/core/bridge/protocol"
	"github.com/weisyn/zkapp/internal/core/contract"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/types"
)

// errNotReady 前置条件未满足，映射为 not_ready 响应
var errNotReady = errors.New("precondition not met")

// handlerFunc 操作处理函数
type handlerFunc func(ctx context.Context, args json.RawMessage) (interface{}, error)

// buildHandlers 构造固定的操作表
func (w *Worker) buildHandlers() map[protocol.Operation]handlerFunc {
	return map[protocol.Operation]handlerFunc{
		protocol.OpNetworkSelect:          w.networkSelect,
		protocol.OpLoadContract:           w.loadContract,
		protocol.OpCompileContract:        w.compileContract,
		protocol.OpFetchAccount:           w.fetchAccount,
		protocol.OpInitContractInstance:   w.initContractInstance,
		protocol.OpBuildUpdateTransaction: w.buildUpdateTransaction,
		protocol.OpProveTransaction:       w.proveTransaction,
		protocol.OpSerializeTransaction:   w.serializeTransaction,
		protocol.OpFetchCurrentValue:      w.fetchCurrentValue,
	}
}

func (w *Worker) networkSelect(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args protocol.NetworkArgs
	if err := protocol.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}
	network, err := w.networks.Resolve(args.NetworkID, args.Endpoint)
	if err != nil {
		return nil, err
	}
	w.session.network = network
	w.logger.Infof("已选择网络: %s", network.ID())
	return nil, nil
}

func (w *Worker) loadContract(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	if w.session.class != nil {
		return nil, nil
	}
	class, err := contract.Load(contract.AddContractName)
	if err != nil {
		return nil, err
	}
	w.session.class = class
	return nil, nil
}

func (w *Worker) compileContract(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	if w.session.class == nil {
		return nil, errNotReady
	}
	compiled := w.session.compiled
	if compiled == nil {
		var err error
		compiled, err = w.session.class.Compile(w.keys)
		if err != nil {
			return nil, err
		}
		w.session.compiled = compiled
		w.logger.Infof("合约编译完成: constraints=%d, 耗时=%s, 缓存密钥=%v",
			compiled.ConstraintCount(), compiled.Duration, compiled.FromCache)
	}
	return &protocol.CompileResult{
		Constraints: compiled.ConstraintCount(),
		DurationMs:  compiled.Duration.Milliseconds(),
		FromCache:   compiled.FromCache,
	}, nil
}

func (w *Worker) fetchAccount(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args protocol.PublicKeyArgs
	if err := protocol.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if w.session.network == nil {
		return nil, errNotReady
	}
	publicKey, err := types.ParsePublicKey(args.PublicKey58)
	if err != nil {
		return nil, err
	}

	account, err := w.session.network.FetchAccount(ctx, publicKey)
	switch {
	case err == nil:
		w.session.accounts[publicKey] = account
		return &protocol.FetchAccountResult{Account: account}, nil
	case errors.Is(err, chainif.ErrAccountNotFound):
		return &protocol.FetchAccountResult{Error: &types.FetchError{
			StatusCode: http.StatusNotFound,
			StatusText: "account " + args.PublicKey58 + " not found",
		}}, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		// 网络故障同样以结果中的错误字段返回，由调用方决定是否重试
		w.logger.Warnf("查询账户失败: %s: %v", args.PublicKey58, err)
		return &protocol.FetchAccountResult{Error: &types.FetchError{
			StatusCode: http.StatusBadGateway,
			StatusText: err.Error(),
		}}, nil
	}
}

func (w *Worker) initContractInstance(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args protocol.PublicKeyArgs
	if err := protocol.DecodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if w.session.class == nil || w.session.compiled == nil {
		return nil, errNotReady
	}
	address, err := types.ParsePublicKey(args.PublicKey58)
	if err != nil {
		return nil, err
	}
	w.session.instance = contract.NewInstance(w.session.class, address)
	return nil, nil
}

func (w *Worker) buildUpdateTransaction(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	account, ok := w.session.contractAccount()
	if !ok {
		return nil, errNotReady
	}
	tx, err := w.session.instance.BuildUpdate(account)
	if err != nil {
		return nil, err
	}
	w.session.tx = tx
	return nil, nil
}

func (w *Worker) proveTransaction(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	if w.session.tx == nil || w.session.compiled == nil {
		return nil, errNotReady
	}
	if err := w.session.tx.Prove(w.session.compiled); err != nil {
		return nil, err
	}
	return nil, nil
}

func (w *Worker) serializeTransaction(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	if w.session.tx == nil || !w.session.tx.Proved() {
		return nil, errNotReady
	}
	transaction, err := w.session.tx.ToJSON()
	if err != nil {
		return nil, err
	}
	return &protocol.TransactionJSONResult{Transaction: transaction}, nil
}

func (w *Worker) fetchCurrentValue(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	account, ok := w.session.contractAccount()
	if !ok {
		return nil, errNotReady
	}
	value, ok := w.session.instance.ReadNum(account)
	if !ok {
		return nil, nil
	}
	return &protocol.CurrentValueResult{Value: value}, nil
}
