package orchestrator

import (
	"context"
	"errors"
	"sync"
)

// Runner 在后台依次执行 Setup 与 PollAccount
type Runner struct {
	orch *Orchestrator

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewRunner 创建后台运行器
func NewRunner(orch *Orchestrator) *Runner {
	return &Runner{orch: orch}
}

// Start 启动后台流程，重复调用无效
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ctx)
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)

	err := r.orch.Setup(ctx)
	if err == nil || errors.Is(err, ErrAlreadySetup) {
		err = r.orch.PollAccount(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		r.orch.logger.Errorf("后台流程终止: %v", err)
	}

	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Done 后台流程结束时关闭
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Err 后台流程的结束原因
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Stop 取消后台流程并等待退出
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
