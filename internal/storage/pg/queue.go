package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// 下行队列状态。固件没有应用层回执，写入连接成功即视为完成。
const (
	QueuePending = 0 // 待发送
	QueueDone    = 1 // 完成（已写入连接）
	QueueDead    = 2 // 重试耗尽
)

// EnsureQueueSchema 幂等建表：下行命令队列不走 GORM 模型，直接 DDL
func EnsureQueueSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS outbound_queue (
        id          BIGSERIAL PRIMARY KEY,
        command_id  UUID,
        mac         TEXT,
        ble_cmd     SMALLINT NOT NULL,
        frame       BYTEA NOT NULL,
        priority    INT NOT NULL DEFAULT 3,
        status      INT NOT NULL DEFAULT 0,
        retry_count INT NOT NULL DEFAULT 0,
        not_before  TIMESTAMPTZ,
        last_error  TEXT,
        created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_outbound_queue_pending
        ON outbound_queue (priority, created_at) WHERE status = 0`)
	return err
}

// QueueRepo 下行队列仓储
type QueueRepo struct {
	db *pgxpool.Pool
}

// NewQueueRepo 创建下行队列仓储
func NewQueueRepo(db *pgxpool.Pool) *QueueRepo { return &QueueRepo{db: db} }

// Enqueue 入队一条下行命令。mac 为空串表示广播到全部在线设备。
// frame 是已完成翻译的串口帧，worker 不再做二次编码。
func (r *QueueRepo) Enqueue(ctx context.Context, commandID, mac string, bleCmd byte, frame []byte, priority int) (int64, error) {
	var macArg interface{}
	if mac != "" {
		macArg = mac
	}
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO outbound_queue (command_id, mac, ble_cmd, frame, priority)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		commandID, macArg, int16(bleCmd), frame, priority).Scan(&id)
	return id, err
}
