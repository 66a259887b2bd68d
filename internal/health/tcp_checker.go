package health

import (
	"context"
	"time"

	"github.com/nebulapoi/poi-gateway/internal/tcpserver"
)

// TCPChecker 网关接入容量检查器：连接限流器接近满载时降级
type TCPChecker struct {
	limiter *tcpserver.ConnectionLimiter
}

func NewTCPChecker(limiter *tcpserver.ConnectionLimiter) *TCPChecker {
	return &TCPChecker{limiter: limiter}
}

func (c *TCPChecker) Name() string { return "tcp_gateway" }

func (c *TCPChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	status := StatusHealthy
	message := "ok"
	if c.limiter.Available() == 0 {
		status = StatusDegraded
		message = "connection limit reached"
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"active_conns":   c.limiter.Current(),
			"available":      c.limiter.Available(),
			"rejected_total": c.limiter.RejectedCount(),
		},
		Latency: time.Since(start),
	}
}
