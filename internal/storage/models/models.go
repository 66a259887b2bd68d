package models

import (
	"time"
)

// 注意：
// - 表结构由 AutoMigrate 按此处标签生成，改字段先改这里
// - 不使用 gorm.Model，显式声明每个字段，避免隐式 DeletedAt

// Device 映射 devices 表（一台 poi 设备）
type Device struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 设备 MAC（十六进制小写，无分隔符），唯一标识
	MAC string `gorm:"column:mac;type:text;not null;uniqueIndex"`
	// 配对时上报的设备名称
	Name *string `gorm:"column:name;type:text"`
	// 固件版本，可空
	FwVer *string `gorm:"column:fw_ver;type:text"`
	// 最近心跳上报的运行状态
	Mode       *int16 `gorm:"column:mode"`
	SlotIndex  *int16 `gorm:"column:slot_index"`
	Brightness *int16 `gorm:"column:brightness"`
	FrameDelay *int16 `gorm:"column:frame_delay"`
	SyncMode   *int16 `gorm:"column:sync_mode"`
	// 最近一次心跳
	LastSeenAt *time.Time `gorm:"column:last_seen_at"`
	// 审计字段
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Device) TableName() string { return "devices" }

// Pattern 映射 patterns 表（图案库）
type Pattern struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 槽位号，设备端 SD 卡槽位一一对应
	Slot int16  `gorm:"column:slot;not null;uniqueIndex"`
	Name string `gorm:"column:name;type:text;not null"`
	// 图案类别：procedural（参数化）或 image（位图列数据）
	Kind string `gorm:"column:kind;type:text;not null;default:procedural"`
	// 上传负载原始字节（即 0x04 帧的 data 部分）
	Payload []byte `gorm:"column:payload;type:bytea;not null"`
	// 是否内置种子图案
	Builtin   bool      `gorm:"column:builtin;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Pattern) TableName() string { return "patterns" }

// ShowSequence 映射 show_sequences 表（编排序列）
type ShowSequence struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Slot int16  `gorm:"column:slot;not null;uniqueIndex"`
	Name string `gorm:"column:name;type:text;not null"`
	// 序列定义原始字节（即 0x0E 帧的 data 部分）
	Payload   []byte    `gorm:"column:payload;type:bytea;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ShowSequence) TableName() string { return "show_sequences" }

// CommandLog 映射 command_log 表（下行命令审计）
type CommandLog struct {
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// 命令 ID（API 生成的 UUID；BLE 直通时为空）
	CommandID *string `gorm:"column:command_id;type:uuid"`
	// 目标设备 MAC，广播时为空
	MAC *string `gorm:"column:mac;type:text"`
	// 入站 BLE 命令码与出站串口命令码
	BLECmd int16 `gorm:"column:ble_cmd;not null"`
	POVCmd int16 `gorm:"column:pov_cmd;not null"`
	// 翻译后的完整下行帧
	Frame []byte `gorm:"column:frame;type:bytea;not null"`
	// 来源：api | ble
	Source    string    `gorm:"column:source;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CommandLog) TableName() string { return "command_log" }
