// Package http 本地状态服务
//
// 路由：
//   - GET  /state           状态快照与界面阶段
//   - POST /transactions    发送 update 交易
//   - POST /value/refresh   重新读取合约当前值
//   - GET  /metrics         Prometheus 指标
//   - GET  /health          健康检查
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/zkapp/internal/api/http/handlers"
	"github.com/weisyn/zkapp/internal/api/http/middleware"
	apiconfig "github.com/weisyn/zkapp/internal/config/api"
	logimpl "github.com/weisyn/zkapp/internal/core/infrastructure/log"
	"github.com/weisyn/zkapp/internal/core/infrastructure/metrics"
	"github.com/weisyn/zkapp/internal/view"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// maxPortDrift 监听端口被占用时向后尝试的端口数
const maxPortDrift = 10

// Deps 状态服务依赖
type Deps struct {
	Options *apiconfig.APIOptions
	Flow    handlers.Flow
	State   handlers.StateSource
	Logger  log.Logger
	Metrics *metrics.Metrics // 可选
}

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	options    *apiconfig.APIOptions
	state      handlers.StateSource
	metrics    *metrics.Metrics
	logger     log.Logger
}

// NewServer 创建服务器并注册路由
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = logimpl.GetLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))

	s := &Server{
		router:  router,
		options: deps.Options,
		state:   deps.State,
		metrics: deps.Metrics,
		logger:  logger,
	}
	if deps.Metrics != nil {
		router.Use(middleware.NewMetrics(deps.Metrics.Registry()).Middleware())
	}
	s.setupRoutes(handlers.NewStateHandlers(deps.Flow, deps.State, logger))
	return s
}

func (s *Server) setupRoutes(stateHandlers *handlers.StateHandlers) {
	stateHandlers.RegisterRoutes(s.router)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"stage":  view.StageOf(s.state.Snapshot()).String(),
		})
	})
}

// Handler 返回路由（测试中配合 httptest 使用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 开始监听；端口被占用时自动向后漂移
func (s *Server) Start() error {
	ln, err := s.listen(s.options.ListenAddr)
	if err != nil {
		return fmt.Errorf("状态服务监听失败: %w", err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // 证明生成期间请求保持阻塞
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("状态服务异常退出: %v", err)
		}
	}()

	s.logger.Infof("✅ 状态服务启动成功: http://%s/state", ln.Addr())
	return nil
}

func (s *Server) listen(addr string) (net.Listener, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return nil, fmt.Errorf("端口无效: %s", portStr)
	}

	var lastErr error
	for i := 0; i <= maxPortDrift; i++ {
		candidate := net.JoinHostPort(host, fmt.Sprint(port+i))
		ln, err := net.Listen("tcp", candidate)
		if err == nil {
			if i > 0 {
				s.logger.Warnf("⚠️ 端口 %d 被占用，已漂移到 %d", port, port+i)
			}
			return ln, nil
		}
		lastErr = err
		if port == 0 || !errors.Is(err, syscall.EADDRINUSE) {
			break
		}
	}
	return nil, lastErr
}

// Addr 实际监听地址
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("正在关闭状态服务")
	return s.httpServer.Shutdown(ctx)
}
