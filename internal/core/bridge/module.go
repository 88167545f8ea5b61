// Package bridge 组装 worker 桥接：客户端与（进程内或远程）worker 之间的消息通道
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"

	zkappconfig "github.com/weisyn/zkapp/internal/config/zkapp"
	"github.com/weisyn/zkapp/internal/core/bridge/channel"
	"github.com/weisyn/zkapp/internal/core/bridge/client"
	"github.com/weisyn/zkapp/internal/core/bridge/registry"
	"github.com/weisyn/zkapp/internal/core/contract"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	chainif "github.com/weisyn/zkapp/pkg/interfaces/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// dialTimeout 连接远程 worker 的超时
const dialTimeout = 10 * time.Second

// ModuleInput 桥接模块依赖
type ModuleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Options   *zkappconfig.ZkappOptions
	Keys      contract.KeyStore
	Networks  chainif.Resolver
	Logger    log.Logger       `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
}

// Module 返回桥接模块，提供 *client.Client
func Module() fx.Option {
	return fx.Module("bridge",
		fx.Provide(ProvideClient),
	)
}

// ProvideClient 创建客户端
//
// 📋 **通道选择**：
// - 配置了 worker_endpoint：通过 WebSocket 连接独立 worker 进程
// - 否则：内存管道 + 进程内 worker，随应用生命周期启动和停止
func ProvideClient(in ModuleInput) (*client.Client, error) {
	logger := logimpl.NewModuleLogger(in.Logger, "client")

	var conn channel.Conn
	if endpoint := in.Options.WorkerEndpoint; endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		ws, err := channel.Dial(ctx, endpoint)
		if err != nil {
			return nil, fmt.Errorf("连接 worker 失败: %w", err)
		}
		if logger != nil {
			logger.Infof("已连接远程 worker: %s", endpoint)
		}
		conn = ws
	} else {
		workerSide, clientSide := channel.NewPipe()
		conn = clientSide
		startInProcessWorker(in, workerSide)
	}

	c := client.New(conn, logger, in.Metrics)
	in.Lifecycle.Append(fx.StopHook(c.Close))
	return c, nil
}

func startInProcessWorker(in ModuleInput, conn channel.Conn) {
	worker := registry.NewWorker(registry.Deps{
		Keys:     in.Keys,
		Networks: in.Networks,
		Logger:   logimpl.NewModuleLogger(in.Logger, "worker"),
		Metrics:  in.Metrics,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	in.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := worker.Serve(ctx, conn); err != nil && !errors.Is(err, context.Canceled) && in.Logger != nil {
					in.Logger.Errorf("进程内 worker 异常退出: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			_ = conn.Close()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
