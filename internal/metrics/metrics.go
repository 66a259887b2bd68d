package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	TCPAccepted      prometheus.Counter
	TCPBytesReceived prometheus.Counter
	TranslateTotal   *prometheus.CounterVec // labels: cmd, result=ok|error
	BLERouteTotal    *prometheus.CounterVec // labels: cmd
	SyncRouteTotal   *prometheus.CounterVec // labels: type
	OnlineGauge      prometheus.Gauge       // 当前在线 poi 数
	HeartbeatTotal   prometheus.Counter     // 心跳计数
	OutboundSent     prometheus.Counter     // 下行帧发送计数
	OutboundRetry    prometheus.Counter     // 下行重试计数
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_accept_total",
			Help: "Total accepted TCP connections.",
		}),
		TCPBytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tcp_bytes_received_total",
			Help: "Total bytes received over TCP.",
		}),
		TranslateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "translate_total",
			Help: "BLE-to-serial translation attempts by command and result.",
		}, []string{"cmd", "result"}),
		BLERouteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ble_route_total",
			Help: "BLE routed frames by command.",
		}, []string{"cmd"}),
		SyncRouteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "espsync_route_total",
			Help: "Sync protocol routed messages by type.",
		}, []string{"type"}),
		OnlineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "session_online_count",
			Help: "Current number of online poi devices.",
		}),
		HeartbeatTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "session_heartbeat_total",
			Help: "Total heartbeats observed.",
		}),
		OutboundSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbound_sent_total",
			Help: "Total downlink frames written to device connections.",
		}),
		OutboundRetry: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbound_retry_total",
			Help: "Total downlink send retries.",
		}),
	}
	reg.MustRegister(
		m.TCPAccepted, m.TCPBytesReceived, m.TranslateTotal, m.BLERouteTotal,
		m.SyncRouteTotal, m.OnlineGauge, m.HeartbeatTotal, m.OutboundSent, m.OutboundRetry,
	)
	return m
}
