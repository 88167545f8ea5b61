package event

const (
	// defaultEnabled 默认启用事件系统，状态存储依赖它通知观察者
	defaultEnabled = true

	// defaultMaxSubscribers 单个事件类型的最大订阅者数量
	defaultMaxSubscribers = 64
)
