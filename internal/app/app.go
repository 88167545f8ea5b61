package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/weisyn/zkapp/internal/core/orchestrator"
	"github.com/weisyn/zkapp/internal/core/store"
)

// stopTimeout 停止超时
const stopTimeout = 30 * time.Second

// App 已启动的应用
type App interface {
	// Orchestrator 流程编排器
	Orchestrator() *orchestrator.Orchestrator
	// Store 状态存储
	Store() *store.Store
	// Stop 停止应用
	Stop() error
	// Wait 阻塞直到收到退出信号，然后停止应用
	Wait()
}

type internalApp struct {
	bootstrap *Bootstrap
}

func (a *internalApp) Orchestrator() *orchestrator.Orchestrator {
	return a.bootstrap.orch
}

func (a *internalApp) Store() *store.Store {
	return a.bootstrap.store
}

func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := a.bootstrap.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

func (a *internalApp) Wait() {
	fmt.Println("🔄 应用正在运行，按 Ctrl+C 停止...")
	sig := WaitForSignal()
	fmt.Printf("\n🛑 收到信号 %v，正在优雅退出...\n", sig)
	if err := a.Stop(); err != nil {
		fmt.Printf("⚠️ 停止应用时出错: %v\n", err)
	}
}

// WaitForSignal 等待退出信号
func WaitForSignal() os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	return <-signals
}
