// Package registry 实现 worker 端的远程操作注册表
//
// 🎯 **执行模型**：
// - 一个 Worker 对应一条通道与一个会话
// - Serve 单线程循环：收一帧、解码、分发、回复，操作之间从不并发
// - 每个操作都被包装：返回错误或 panic 都会产生 error 响应
package registry

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/weisyn/zkapp/internal/core/bridge/channel"
	"github.com/weisyn/zkapp/internal/core/bridge/protocol"
	"github.com/weisyn/zkapp/internal/core/contract"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// Deps Worker 依赖
type Deps struct {
	Keys     contract.KeyStore
	Networks chainif.Resolver
	Logger   log.Logger
	Metrics  *metrics.Metrics // 可选
}

// Worker 远程操作执行者
type Worker struct {
	session  *Session
	handlers map[protocol.Operation]handlerFunc

	keys     contract.KeyStore
	networks chainif.Resolver
	logger   log.Logger
	metrics  *metrics.Metrics
}

// NewWorker 创建 Worker 与新会话
func NewWorker(deps Deps) *Worker {
	w := &Worker{
		session:  newSession(),
		keys:     deps.Keys,
		networks: deps.Networks,
		metrics:  deps.Metrics,
	}
	logger := deps.Logger
	if logger == nil {
		logger = logimpl.GetLogger()
	}
	w.logger = logger.With("session", w.session.ID)
	w.handlers = w.buildHandlers()
	return w
}

// SessionID 会话标识
func (w *Worker) SessionID() string {
	return w.session.ID
}

// State 会话进度
//
// 仅在 Serve 未运行或同一 goroutine 中调用。
func (w *Worker) State() SessionState {
	return w.session.state()
}

// Serve 在通道上处理请求，直到通道关闭或 ctx 取消
func (w *Worker) Serve(ctx context.Context, conn channel.Conn) error {
	w.logger.Infof("worker 会话开始")
	defer w.logger.Infof("worker 会话结束")

	for {
		frame, err := conn.Receive(ctx)
		if err != nil {
			if errors.Is(err, channel.ErrClosed) {
				return nil
			}
			return err
		}

		req, err := protocol.DecodeRequest(frame)
		if err != nil {
			// 没有可用的 id，无法回复
			w.logger.Warnf("丢弃无法解码的请求帧: %v", err)
			continue
		}

		resp := w.Handle(ctx, req)
		out, err := protocol.EncodeResponse(resp)
		if err != nil {
			w.logger.Errorf("编码响应失败: id=%d, op=%s: %v", req.ID, req.Op, err)
			out, _ = protocol.EncodeResponse(protocol.Failed(req.ID, protocol.NewRemoteError(req.Op, err)))
		}
		if err := conn.Send(ctx, out); err != nil {
			if errors.Is(err, channel.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// Handle 执行单个请求并构造响应，从不 panic
func (w *Worker) Handle(ctx context.Context, req *protocol.Request) (resp *protocol.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			w.logger.Errorf("操作 panic: op=%s, panic=%v\n%s", req.Op, rec, debug.Stack())
			resp = protocol.Failed(req.ID, &protocol.RemoteError{
				Op:      req.Op,
				Code:    protocol.CodePanic,
				Message: fmt.Sprint(rec),
			})
		}
		w.metrics.WorkerOperation(string(req.Op), string(resp.Status))
	}()

	if !req.Op.Valid() {
		w.logger.Warnf("未知操作: id=%d, op=%q", req.ID, req.Op)
		return protocol.Failed(req.ID, protocol.NewRemoteError(req.Op,
			fmt.Errorf("%w: %q", protocol.ErrUnknownOperation, req.Op)))
	}
	handler, ok := w.handlers[req.Op]
	if !ok {
		return protocol.Failed(req.ID, protocol.NewRemoteError(req.Op,
			fmt.Errorf("%w: %q", protocol.ErrUnknownOperation, req.Op)))
	}

	w.logger.Debugf("执行操作: id=%d, op=%s", req.ID, req.Op)
	result, err := handler(ctx, req.Args)
	switch {
	case errors.Is(err, errNotReady):
		w.logger.Warnf("操作前置条件未满足: op=%s, state=%+v", req.Op, w.session.state())
		return protocol.NotReady(req.ID)
	case err != nil:
		w.logger.Errorf("操作失败: op=%s: %v", req.Op, err)
		return protocol.Failed(req.ID, protocol.NewRemoteError(req.Op, err))
	}

	resp, err = protocol.OK(req.ID, result)
	if err != nil {
		return protocol.Failed(req.ID, protocol.NewRemoteError(req.Op, err))
	}
	return resp
}
