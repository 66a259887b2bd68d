package session

import (
	"sync"
	"time"
)

// Manager 会话管理内存实现：记录设备最近心跳时间，判断是否在线
type Manager struct {
	mu       sync.RWMutex
	lastSeen map[string]time.Time // mac -> last seen
	timeout  time.Duration
	conns    map[string]interface{}
}

func New(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Manager{lastSeen: make(map[string]time.Time), timeout: timeout, conns: make(map[string]interface{})}
}

// OnHeartbeat 更新设备最近心跳时间
func (m *Manager) OnHeartbeat(mac string, t time.Time) {
	m.mu.Lock()
	m.lastSeen[mac] = t
	m.mu.Unlock()
}

// Bind 绑定设备 MAC 到连接对象（opaque），重复绑定将覆盖
func (m *Manager) Bind(mac string, conn interface{}) {
	m.mu.Lock()
	m.conns[mac] = conn
	m.mu.Unlock()
}

// UnbindByMAC 解除绑定
func (m *Manager) UnbindByMAC(mac string) {
	m.mu.Lock()
	delete(m.conns, mac)
	m.mu.Unlock()
}

// GetConn 返回绑定的连接对象
func (m *Manager) GetConn(mac string) (interface{}, bool) {
	m.mu.RLock()
	c, ok := m.conns[mac]
	m.mu.RUnlock()
	return c, ok
}

// IsOnline 判断设备是否在线
func (m *Manager) IsOnline(mac string, now time.Time) bool {
	m.mu.RLock()
	ts, ok := m.lastSeen[mac]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return now.Sub(ts) <= m.timeout
}

// OnlineCount 返回当前在线设备数量
func (m *Manager) OnlineCount(now time.Time) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, ts := range m.lastSeen {
		if now.Sub(ts) <= m.timeout {
			count++
		}
	}
	return count
}

// OnlineMACs 返回当前在线且已绑定连接的设备 MAC 列表
func (m *Manager) OnlineMACs(now time.Time) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	macs := make([]string, 0, len(m.conns))
	for mac := range m.conns {
		ts, ok := m.lastSeen[mac]
		if ok && now.Sub(ts) <= m.timeout {
			macs = append(macs, mac)
		}
	}
	return macs
}
