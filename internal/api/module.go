// Package api 汇总对外服务模块
package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/zkapp/internal/api/http"
)

// Module 返回API模块
//
// 目前只有本地状态服务；worker 的 WebSocket 端点由 worker 子命令单独启动。
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),

		// 确保服务器被构造，从而注册生命周期钩子
		fx.Invoke(func(server *http.Server) {}),
	)
}
