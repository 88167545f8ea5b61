// Package client 实现 worker 桥接的调用方
//
// 🎯 **核心机制**：
// - 请求 ID 从 0 开始严格递增，同一实例内不复用
// - 等待表 id → chan，发送前登记，收到响应、ctx 取消或通道关闭时移除
// - 读循环只按 ID 匹配响应，与到达顺序无关
//
// 客户端不对单次调用设超时（证明生成本身很慢），调用方可以通过 ctx 取消。
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/weisyn/zkapp/internal/core/bridge/channel"
	"github.com/weisyn/zkapp/internal/core/bridge/protocol"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// Client worker 桥接客户端
type Client struct {
	conn    channel.Conn
	logger  log.Logger
	metrics *metrics.Metrics

	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan *protocol.Response
	closed  bool

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New 创建客户端并启动读循环
func New(conn channel.Conn, logger log.Logger, m *metrics.Metrics) *Client {
	if logger == nil {
		logger = logimpl.GetLogger()
	}
	c := &Client{
		conn:    conn,
		logger:  logger,
		metrics: m,
		pending: make(map[uint64]chan *protocol.Response),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Done 读循环退出（通道关闭）时关闭
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err 读循环退出的原因
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.closeErr
	default:
		return nil
	}
}

// PendingCount 等待响应的调用数
func (c *Client) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close 关闭通道，所有等待中的调用返回 ErrClosed
func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}

// readLoop 读取响应并按 ID 分发
func (c *Client) readLoop() {
	var exitErr error
	defer func() { c.shutdown(exitErr) }()

	for {
		frame, err := c.conn.Receive(context.Background())
		if err != nil {
			exitErr = err
			return
		}
		resp, err := protocol.DecodeResponse(frame)
		if err != nil {
			c.logger.Warnf("丢弃无法解码的响应帧: %v", err)
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.mu.Unlock()

		if !ok {
			c.logger.Warnf("丢弃未知 ID 的响应: id=%d, status=%s", resp.ID, resp.Status)
			continue
		}
		ch <- resp
	}
}

func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		for id, ch := range c.pending {
			delete(c.pending, id)
			close(ch)
		}
		c.mu.Unlock()

		if err != nil && !errors.Is(err, channel.ErrClosed) {
			c.logger.Warnf("worker 通道异常关闭: %v", err)
		}
		c.closeErr = err
		close(c.done)
	})
}

func (c *Client) register(id uint64) (chan *protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	ch := make(chan *protocol.Response, 1)
	c.pending[id] = ch
	return ch, nil
}

// unregister 移除等待项；返回 false 表示读循环或 shutdown 已取走该项
func (c *Client) unregister(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[id]; !ok {
		return false
	}
	delete(c.pending, id)
	return true
}

// call 发送请求并等待匹配的响应
//
// 返回值 present 表示结果非空并已解码到 result。
func (c *Client) call(ctx context.Context, op protocol.Operation, args, result interface{}) (present bool, err error) {
	id := c.nextID.Add(1) - 1

	req, err := protocol.NewRequest(id, op, args)
	if err != nil {
		return false, fmt.Errorf("encode %s args: %w", op, err)
	}
	frame, err := protocol.EncodeRequest(req)
	if err != nil {
		return false, fmt.Errorf("encode %s request: %w", op, err)
	}

	ch, err := c.register(id)
	if err != nil {
		return false, err
	}

	start := time.Now()
	status := "transport_error"
	c.metrics.CallStarted()
	defer func() { c.metrics.CallFinished(string(op), status, time.Since(start)) }()

	if err := c.conn.Send(ctx, frame); err != nil {
		c.unregister(id)
		if errors.Is(err, channel.ErrClosed) {
			return false, ErrClosed
		}
		return false, fmt.Errorf("send %s: %w", op, err)
	}
	c.logger.Debugf("已发送请求: id=%d, op=%s", id, op)

	var (
		resp *protocol.Response
		ok   bool
	)
	select {
	case resp, ok = <-ch:
	case <-ctx.Done():
		if c.unregister(id) {
			status = "cancelled"
			return false, ctx.Err()
		}
		// 读循环或 shutdown 已取走等待项，响应或关闭必然随后到达
		resp, ok = <-ch
	}
	if !ok {
		status = "closed"
		return false, ErrClosed
	}

	status = string(resp.Status)
	switch resp.Status {
	case protocol.StatusOK:
		if result == nil {
			return len(resp.Result) > 0, nil
		}
		return protocol.DecodeResult(resp.Result, result)
	case protocol.StatusNotReady:
		return false, fmt.Errorf("%s: %w", op, ErrNotReady)
	case protocol.StatusError:
		if resp.Error == nil {
			return false, fmt.Errorf("%w: %s: error status without details", ErrMalformedResponse, op)
		}
		return false, resp.Error
	default:
		return false, fmt.Errorf("%w: %s: status %q", ErrMalformedResponse, op, resp.Status)
	}
}
