package health

import (
	"context"
	"fmt"
	"time"

	redisstore "github.com/nebulapoi/poi-gateway/internal/storage/redis"
)

// RedisChecker Redis 健康检查器（会话存储启用时挂载）
type RedisChecker struct {
	client *redisstore.Client
}

func NewRedisChecker(client *redisstore.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}

	stats := c.client.PoolStats()
	status := StatusHealthy
	message := "ok"
	if stats.Timeouts > 0 {
		status = StatusDegraded
		message = "pool wait timeouts observed"
	}

	return CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"total_conns": stats.TotalConns,
			"idle_conns":  stats.IdleConns,
			"stale_conns": stats.StaleConns,
			"hits":        stats.Hits,
			"misses":      stats.Misses,
			"timeouts":    stats.Timeouts,
		},
		Latency: time.Since(start),
	}
}
