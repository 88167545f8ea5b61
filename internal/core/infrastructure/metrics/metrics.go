// Package metrics 提供 Prometheus 监控指标
//
// 所有指标注册到实例自己的 Registry 上，便于测试隔离，
// 由状态服务的 /metrics 端点导出。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zkapp"

// ============================================================================
//                          Prometheus 监控指标
// ============================================================================

// Metrics 应用指标集合
type Metrics struct {
	registry *prometheus.Registry

	// === 桥接客户端 ===
	pendingCalls prometheus.Gauge
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec

	// === worker ===
	workerOpsTotal *prometheus.CounterVec

	// === 编排 ===
	setupDuration     prometheus.Histogram
	pollAttemptsTotal prometheus.Counter
	transactionsTotal *prometheus.CounterVec
}

// New 创建指标集合并注册到新的 Registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		pendingCalls: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "pending_calls",
			Help:      "Number of bridge calls awaiting a response",
		}),
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "calls_total",
			Help:      "Total number of bridge calls by operation and status",
		}, []string{"op", "status"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "call_duration_seconds",
			Help:      "Duration of bridge calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 10), // 5ms ~ 22min
		}, []string{"op"}),

		workerOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "operations_total",
			Help:      "Total number of operations executed by the worker by status",
		}, []string{"op", "status"}),

		setupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "setup_duration_seconds",
			Help:      "Duration of the setup sequence in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		pollAttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "account_poll_attempts_total",
			Help:      "Total number of account existence polls",
		}),
		transactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "transactions_total",
			Help:      "Total number of update transactions by result",
		}, []string{"result"}), // sent, failed, rejected
	}

	m.registry.MustRegister(
		m.pendingCalls,
		m.callsTotal,
		m.callDuration,
		m.workerOpsTotal,
		m.setupDuration,
		m.pollAttemptsTotal,
		m.transactionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ============================================================================
//                          记录方法（nil 安全）
// ============================================================================

// CallStarted 记录一次桥接调用开始
func (m *Metrics) CallStarted() {
	if m == nil {
		return
	}
	m.pendingCalls.Inc()
}

// CallFinished 记录一次桥接调用结束
func (m *Metrics) CallFinished(op, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pendingCalls.Dec()
	m.callsTotal.WithLabelValues(op, status).Inc()
	m.callDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// WorkerOperation 记录 worker 执行的一次操作
func (m *Metrics) WorkerOperation(op, status string) {
	if m == nil {
		return
	}
	m.workerOpsTotal.WithLabelValues(op, status).Inc()
}

// SetupCompleted 记录初始化耗时
func (m *Metrics) SetupCompleted(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.setupDuration.Observe(elapsed.Seconds())
}

// PollAttempt 记录一次账户轮询
func (m *Metrics) PollAttempt() {
	if m == nil {
		return
	}
	m.pollAttemptsTotal.Inc()
}

// TransactionResult 记录交易结果
func (m *Metrics) TransactionResult(result string) {
	if m == nil {
		return
	}
	m.transactionsTotal.WithLabelValues(result).Inc()
}
