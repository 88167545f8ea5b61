// Package websocket worker 的 WebSocket 端点
//
// 每个连接对应一个独立的 worker 会话，会话之间不共享合约、实例或交易状态。
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/zkapp/internal/core/bridge/channel"
	"github.com/weisyn/zkapp/internal/core/bridge/registry"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// WorkerPath worker 端点路径
const WorkerPath = "/worker"

// Server worker WebSocket 服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	deps       registry.Deps
	logger     log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[string]*channel.WSConn
}

// NewServer 创建服务器，deps 用于为每个连接创建 worker
func NewServer(deps registry.Deps, logger log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		router:   router,
		deps:     deps,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*channel.WSConn),
	}
	router.GET(WorkerPath, s.HandleWorker)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.SessionCount()})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	return s
}

// HandleWorker 升级连接并在其上运行一个 worker 会话
func (s *Server) HandleWorker(c *gin.Context) {
	if s.ctx.Err() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is shutting down"})
		return
	}
	conn, err := channel.Upgrade(c.Writer, c.Request)
	if err != nil {
		s.logger.Warnf("升级 WebSocket 连接失败: %v", err)
		return
	}

	worker := registry.NewWorker(s.deps)
	id := worker.SessionID()
	s.track(id, conn)
	s.wg.Add(1)
	defer func() {
		s.untrack(id)
		_ = conn.Close()
		s.wg.Done()
	}()

	s.logger.Infof("worker 连接建立: session=%s, remote=%s", id, conn.RemoteAddr())
	if err := worker.Serve(s.ctx, conn); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warnf("worker 会话异常结束: session=%s: %v", id, err)
	}
	s.logger.Infof("worker 连接关闭: session=%s", id)
}

func (s *Server) track(id string, conn *channel.WSConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = conn
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// SessionCount 当前连接数
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Handler 返回路由
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 在 addr 上监听，端口为 0 时由系统分配
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("worker 服务异常退出: %v", err)
		}
	}()
	s.logger.Infof("worker 已启动: %s", s.Endpoint())
	return nil
}

// Addr 实际监听地址
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Endpoint 客户端连接地址
func (s *Server) Endpoint() string {
	return "ws://" + s.Addr() + WorkerPath
}

// Stop 关闭监听并结束所有会话
//
// 升级后的连接不受 http.Server.Shutdown 管理，需要逐个关闭。
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.mu.Lock()
	for _, conn := range s.sessions {
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
