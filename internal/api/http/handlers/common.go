package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/zkapp/internal/api/http/middleware"
	"github.com/weisyn/zkapp/internal/api/http/types"
	"github.com/weisyn/zkapp/internal/core/bridge/client"
	"github.com/weisyn/zkapp/internal/core/orchestrator"
	walletif "github.com/weisyn/zkapp/pkg/interfaces/wallet"
)

// errorStatus 将流程错误映射为 HTTP 状态码与错误码
func errorStatus(err error) (int, string) {
	var remote *client.RemoteError
	switch {
	case errors.Is(err, orchestrator.ErrTransactionInFlight):
		return http.StatusConflict, types.ErrTxInFlight
	case errors.Is(err, orchestrator.ErrNotSetup):
		return http.StatusConflict, types.ErrNotSetup
	case errors.Is(err, orchestrator.ErrNoWallet):
		return http.StatusConflict, types.ErrNoWallet
	case errors.Is(err, orchestrator.ErrNoTransaction):
		return http.StatusConflict, types.ErrNoTransaction
	case errors.Is(err, walletif.ErrUserRejected):
		return http.StatusForbidden, types.ErrUserRejected
	case errors.Is(err, orchestrator.ErrNoValue):
		return http.StatusServiceUnavailable, types.ErrNoValue
	case errors.Is(err, client.ErrClosed):
		return http.StatusServiceUnavailable, types.ErrWorkerUnavailable
	case errors.As(err, &remote):
		return http.StatusBadGateway, types.ErrWorkerFailed
	default:
		return http.StatusInternalServerError, types.ErrInternal
	}
}

func writeError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	_ = c.Error(err)
	c.JSON(status, types.NewErrorResponse(code, err.Error()).WithRequestID(middleware.GetRequestID(c)))
}
