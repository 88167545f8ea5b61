// Package handlers 状态服务的 HTTP 处理器
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/zkapp/internal/core/store"
	"github.com/weisyn/zkapp/internal/view"
	"github.com/weisyn/zkapp/pkg/interfaces/infrastructure/log"
)

// Flow 处理器需要的编排操作（由 *orchestrator.Orchestrator 实现）
type Flow interface {
	SendUpdate(ctx context.Context) (string, error)
	RefreshValue(ctx context.Context) (string, error)
	ExplorerURL(hash string) string
}

// StateSource 状态快照来源（由 *store.Store 实现）
type StateSource interface {
	Snapshot() store.State
}

// StateHandlers 状态与交易处理器
type StateHandlers struct {
	flow   Flow
	state  StateSource
	logger log.Logger
}

// NewStateHandlers 创建处理器
func NewStateHandlers(flow Flow, state StateSource, logger log.Logger) *StateHandlers {
	return &StateHandlers{flow: flow, state: state, logger: logger}
}

// StateResponse GET /state 响应
type StateResponse struct {
	store.State
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// TransactionResponse POST /transactions 响应
type TransactionResponse struct {
	Hash        string `json:"hash"`
	ExplorerURL string `json:"explorerUrl"`
}

// ValueResponse POST /value/refresh 响应
type ValueResponse struct {
	Num string `json:"num"`
}

// RegisterRoutes 注册路由
func (h *StateHandlers) RegisterRoutes(r gin.IRoutes) {
	r.GET("/state", h.GetState)
	r.POST("/transactions", h.SendTransaction)
	r.POST("/value/refresh", h.RefreshValue)
}

// GetState 当前状态快照及派生的界面阶段
func (h *StateHandlers) GetState(c *gin.Context) {
	st := h.state.Snapshot()
	stage := view.StageOf(st)
	c.JSON(http.StatusOK, StateResponse{State: st, Stage: stage.String(), Message: stage.Message()})
}

// SendTransaction 构建、证明并提交一笔 update 交易
//
// 证明生成耗时较长，请求会阻塞到钱包返回哈希；并发请求返回 409。
func (h *StateHandlers) SendTransaction(c *gin.Context) {
	hash, err := h.flow.SendUpdate(c.Request.Context())
	if err != nil {
		h.logger.Warnf("发送交易失败: %v", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, TransactionResponse{Hash: hash, ExplorerURL: h.flow.ExplorerURL(hash)})
}

// RefreshValue 重新读取合约当前值
func (h *StateHandlers) RefreshValue(c *gin.Context) {
	num, err := h.flow.RefreshValue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ValueResponse{Num: num})
}
