package api

const (
	// defaultEnabled 默认启动本地状态服务
	defaultEnabled = true

	// defaultListenAddr 仅监听本机
	defaultListenAddr = "127.0.0.1:28700"
)
