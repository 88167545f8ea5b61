package devnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/weisyn/zkapp/internal/core/chain"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/zkapp/pkg/types"
)

// Server devnet HTTP 服务
//
// 路由：
//   - POST /graphql  GraphQL 端点
//   - POST /faucet   为账户注资
//   - GET  /health   健康检查（含已接受交易数）
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	ledger     *chain.LocalNetwork
	logger     log.Logger
}

// NewServer 创建 devnet 服务
func NewServer(ledger *chain.LocalNetwork, logger log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		ledger: ledger,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	schema := graphql.MustParseSchema(schemaString, &resolver{ledger: s.ledger})
	s.router.POST("/graphql", gin.WrapH(&relay.Handler{Schema: schema}))

	s.router.POST("/faucet", s.handleFaucet)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"network":      s.ledger.ID(),
			"transactions": len(s.ledger.Transactions()),
		})
	})
}

// faucetRequest 注资请求，Amount 单位为 MINA，为 0 时使用 DefaultFunding
type faucetRequest struct {
	PublicKey string `json:"publicKey" binding:"required"`
	Amount    uint64 `json:"amount"`
}

func (s *Server) handleFaucet(c *gin.Context) {
	var req faucetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pk, err := types.ParsePublicKey(req.PublicKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount := uint64(DefaultFunding)
	if req.Amount > 0 {
		amount = req.Amount * types.NanominaPerMina
	}
	s.ledger.Fund(pk, amount)
	if s.logger != nil {
		s.logger.Infof("faucet 注资: %s +%d nanomina", pk, amount)
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": pk.String(), "funded": strconv.FormatUint(amount, 10)})
}

// Handler 返回路由（测试中配合 httptest 使用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 在 addr 上开始监听，addr 端口为 0 时由系统分配
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && s.logger != nil {
			s.logger.Errorf("devnet 服务异常退出: %v", err)
		}
	}()

	if s.logger != nil {
		s.logger.Infof("devnet 已启动: http://%s/graphql", ln.Addr())
	}
	return nil
}

// Addr 实际监听地址
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Endpoint GraphQL 完整地址
func (s *Server) Endpoint() string {
	return "http://" + s.Addr() + "/graphql"
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
