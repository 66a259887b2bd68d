package outbound

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nebulapoi/poi-gateway/internal/metrics"
	"github.com/nebulapoi/poi-gateway/internal/storage/pg"
)

// Writer 目标连接需要的最小写能力
type Writer interface {
	Write([]byte) error
}

// TargetResolver 解析发送目标：
// mac 非空返回该设备连接，mac 为空返回全部在线设备连接（广播）
type TargetResolver interface {
	Resolve(mac string) []Writer
}

// Worker 下行队列消费者：轮询 outbound_queue，把已翻译的串口帧写入设备连接
type Worker struct {
	DB         *pgxpool.Pool
	Interval   time.Duration
	BatchSize  int
	Throttle   time.Duration
	MaxRetries int
	Resolver   TargetResolver
	Metrics    *metrics.AppMetrics
	Logger     *zap.Logger
}

func New(db *pgxpool.Pool, resolver TargetResolver) *Worker {
	return &Worker{
		DB:         db,
		Interval:   time.Second,
		BatchSize:  50,
		Throttle:   100 * time.Millisecond,
		MaxRetries: 3,
		Resolver:   resolver,
	}
}

// Run 循环消费，随 ctx 取消退出
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	if w.DB == nil || w.Resolver == nil {
		return
	}
	rows, err := w.DB.Query(ctx, `SELECT id, mac, retry_count, frame FROM outbound_queue
        WHERE status=$1 AND (not_before IS NULL OR not_before<=NOW())
        ORDER BY priority, created_at
        LIMIT $2`, pg.QueuePending, w.BatchSize)
	if err != nil {
		return
	}
	defer rows.Close()

	type task struct {
		id    int64
		mac   *string
		retry int
		frame []byte
	}
	tasks := make([]task, 0, w.BatchSize)
	for rows.Next() {
		var t task
		if err := rows.Scan(&t.id, &t.mac, &t.retry, &t.frame); err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	rows.Close()

	for _, t := range tasks {
		mac := ""
		if t.mac != nil {
			mac = *t.mac
		}
		targets := w.Resolver.Resolve(mac)
		if len(targets) == 0 {
			w.backoff(ctx, t.id, t.retry, "no online target")
			continue
		}

		sent := 0
		var lastErr error
		for _, conn := range targets {
			if err := conn.Write(t.frame); err != nil {
				lastErr = err
				continue
			}
			sent++
		}
		if sent == 0 {
			if lastErr != nil {
				w.backoff(ctx, t.id, t.retry, lastErr.Error())
			} else {
				w.backoff(ctx, t.id, t.retry, "write failed")
			}
			continue
		}
		if w.Metrics != nil {
			w.Metrics.OutboundSent.Add(float64(sent))
		}
		// 设备侧无应用层回执，写入成功即视为完成
		_, _ = w.DB.Exec(ctx, `UPDATE outbound_queue SET status=$1, updated_at=NOW() WHERE id=$2`,
			pg.QueueDone, t.id)
		// 节流：避免设备串口缓冲被打爆
		time.Sleep(w.Throttle)
	}
}

// backoff 回退重试，重试耗尽置为 dead
func (w *Worker) backoff(ctx context.Context, id int64, retry int, reason string) {
	if retry+1 >= w.MaxRetries {
		_, _ = w.DB.Exec(ctx, `UPDATE outbound_queue SET status=$1, last_error=$2, updated_at=NOW()
            WHERE id=$3`, pg.QueueDead, reason, id)
		if w.Logger != nil {
			w.Logger.Warn("outbound task dead",
				zap.Int64("task_id", id),
				zap.String("reason", reason),
			)
		}
		return
	}
	if w.Metrics != nil {
		w.Metrics.OutboundRetry.Inc()
	}
	_, _ = w.DB.Exec(ctx, `UPDATE outbound_queue SET retry_count=retry_count+1,
        not_before=NOW()+INTERVAL '3 seconds'*GREATEST(retry_count,1), last_error=$1, updated_at=NOW()
        WHERE id=$2`, reason, id)
}
