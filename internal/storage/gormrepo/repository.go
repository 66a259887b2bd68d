package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	cfgpkg "github.com/nebulapoi/poi-gateway/internal/config"
	"github.com/nebulapoi/poi-gateway/internal/storage/models"
)

// Open 建立 GORM 连接并迁移模型表
func Open(cfg cfgpkg.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.AutoMigrate(
		&models.Device{}, &models.Pattern{}, &models.ShowSequence{}, &models.CommandLog{},
	); err != nil {
		return nil, err
	}
	return db, nil
}

// Repository 基于 GORM 的仓储实现
type Repository struct {
	db *gorm.DB
}

// New 返回一个使用给定 *gorm.DB 的仓储实例
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EnsureDevice 若设备不存在则插入（配对时调用），存在则刷新名称
func (r *Repository) EnsureDevice(ctx context.Context, mac, name string) (*models.Device, error) {
	now := time.Now()
	record := &models.Device{
		MAC:        mac,
		LastSeenAt: &now,
	}
	if name != "" {
		record.Name = &name
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "mac"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"name":       record.Name,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(record).Error
	if err != nil {
		return nil, err
	}

	return r.GetDeviceByMAC(ctx, mac)
}

// TouchDeviceHeartbeat 刷新设备 last_seen_at 与运行状态（不存在则插入）
func (r *Repository) TouchDeviceHeartbeat(ctx context.Context, mac string, at time.Time, mode, index, brightness, frameDelay, syncMode int16) error {
	ts := at
	record := &models.Device{
		MAC:        mac,
		Mode:       &mode,
		SlotIndex:  &index,
		Brightness: &brightness,
		FrameDelay: &frameDelay,
		SyncMode:   &syncMode,
		LastSeenAt: &ts,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "mac"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"mode":         gorm.Expr("excluded.mode"),
				"slot_index":   gorm.Expr("excluded.slot_index"),
				"brightness":   gorm.Expr("excluded.brightness"),
				"frame_delay":  gorm.Expr("excluded.frame_delay"),
				"sync_mode":    gorm.Expr("excluded.sync_mode"),
				"last_seen_at": gorm.Expr("excluded.last_seen_at"),
				"updated_at":   gorm.Expr("NOW()"),
			}),
		}).
		Create(record).Error
}

// GetDeviceByMAC 通过 MAC 查询设备
func (r *Repository) GetDeviceByMAC(ctx context.Context, mac string) (*models.Device, error) {
	var device models.Device
	err := r.db.WithContext(ctx).Where("mac = ?", mac).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &device, err
}

// ListDevices 分页返回设备列表，按 id 倒序
func (r *Repository) ListDevices(ctx context.Context, limit, offset int) ([]models.Device, error) {
	var devices []models.Device
	q := r.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&devices).Error
	return devices, err
}

// SavePattern 按槽位写入或覆盖图案
func (r *Repository) SavePattern(ctx context.Context, p *models.Pattern) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slot"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"name":       p.Name,
				"kind":       p.Kind,
				"payload":    p.Payload,
				"builtin":    p.Builtin,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(p).Error
}

// GetPatternBySlot 按槽位查询图案
func (r *Repository) GetPatternBySlot(ctx context.Context, slot int16) (*models.Pattern, error) {
	var p models.Pattern
	err := r.db.WithContext(ctx).Where("slot = ?", slot).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPatterns 返回全部图案，按槽位升序
func (r *Repository) ListPatterns(ctx context.Context) ([]models.Pattern, error) {
	var patterns []models.Pattern
	err := r.db.WithContext(ctx).Order("slot ASC").Find(&patterns).Error
	return patterns, err
}

// SaveSequence 按槽位写入或覆盖序列
func (r *Repository) SaveSequence(ctx context.Context, s *models.ShowSequence) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slot"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"name":       s.Name,
				"payload":    s.Payload,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(s).Error
}

// ListSequences 返回全部序列，按槽位升序
func (r *Repository) ListSequences(ctx context.Context) ([]models.ShowSequence, error) {
	var seqs []models.ShowSequence
	err := r.db.WithContext(ctx).Order("slot ASC").Find(&seqs).Error
	return seqs, err
}

// LogCommand 写入下行命令审计记录
func (r *Repository) LogCommand(ctx context.Context, rec *models.CommandLog) error {
	return r.db.WithContext(ctx).Create(rec).Error
}
