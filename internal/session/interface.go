package session

import "time"

// SessionManager 会话管理器接口，支持内存和 Redis 两种实现
type SessionManager interface {
	// OnHeartbeat 更新设备最近心跳时间
	OnHeartbeat(mac string, t time.Time)

	// Bind 绑定设备 MAC 到连接对象
	Bind(mac string, conn interface{})

	// UnbindByMAC 解除绑定
	UnbindByMAC(mac string)

	// GetConn 返回绑定的连接对象
	GetConn(mac string) (interface{}, bool)

	// IsOnline 判断设备是否在线
	IsOnline(mac string, now time.Time) bool

	// OnlineCount 返回当前在线设备数量
	OnlineCount(now time.Time) int

	// OnlineMACs 返回当前在线且已绑定连接的设备 MAC 列表
	OnlineMACs(now time.Time) []string
}
