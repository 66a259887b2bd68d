package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisManager Redis 版本的会话管理器，支持多实例部署。
// 连接对象本身不可序列化，仍驻留在本实例内存；Redis 只承载
// 心跳时间与 mac->实例 的归属关系。
type RedisManager struct {
	client   *redis.Client
	serverID string
	timeout  time.Duration

	mu        sync.RWMutex
	localConn map[string]interface{} // mac -> conn（仅本实例）
}

// sessionData Redis 存储的会话数据结构
type sessionData struct {
	MAC      string    `json:"mac"`
	ServerID string    `json:"server_id"`
	LastSeen time.Time `json:"last_seen"`
}

// Redis key 设计：session:poi:{mac} -> sessionData JSON
const keyPoiPrefix = "session:poi:"

// NewRedisManager 创建 Redis 会话管理器
func NewRedisManager(client *redis.Client, serverID string, timeout time.Duration) *RedisManager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if serverID == "" {
		serverID = uuid.New().String()
	}
	return &RedisManager{
		client:    client,
		serverID:  serverID,
		timeout:   timeout,
		localConn: make(map[string]interface{}),
	}
}

// OnHeartbeat 更新设备最近心跳时间
func (m *RedisManager) OnHeartbeat(mac string, t time.Time) {
	ctx := context.Background()
	data, err := m.getSessionData(ctx, mac)
	if err != nil {
		data = &sessionData{MAC: mac, ServerID: m.serverID}
	}
	data.LastSeen = t
	m.setSessionData(ctx, mac, data)
}

// Bind 绑定设备 MAC 到连接对象
func (m *RedisManager) Bind(mac string, conn interface{}) {
	m.mu.Lock()
	m.localConn[mac] = conn
	m.mu.Unlock()

	ctx := context.Background()
	m.setSessionData(ctx, mac, &sessionData{MAC: mac, ServerID: m.serverID, LastSeen: time.Now()})
}

// UnbindByMAC 解除绑定
func (m *RedisManager) UnbindByMAC(mac string) {
	m.mu.Lock()
	delete(m.localConn, mac)
	m.mu.Unlock()

	m.client.Del(context.Background(), keyPoiPrefix+mac)
}

// GetConn 返回绑定的连接对象（仅本实例持有的连接）
func (m *RedisManager) GetConn(mac string) (interface{}, bool) {
	m.mu.RLock()
	c, ok := m.localConn[mac]
	m.mu.RUnlock()
	return c, ok
}

// IsOnline 判断设备是否在线
func (m *RedisManager) IsOnline(mac string, now time.Time) bool {
	data, err := m.getSessionData(context.Background(), mac)
	if err != nil {
		return false
	}
	return now.Sub(data.LastSeen) <= m.timeout
}

// OnlineCount 返回当前在线设备数量（跨实例）
func (m *RedisManager) OnlineCount(now time.Time) int {
	ctx := context.Background()
	count := 0
	iter := m.client.Scan(ctx, 0, keyPoiPrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		raw, err := m.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var data sessionData
		if json.Unmarshal(raw, &data) != nil {
			continue
		}
		if now.Sub(data.LastSeen) <= m.timeout {
			count++
		}
	}
	return count
}

// OnlineMACs 返回当前在线且由本实例持有连接的设备 MAC 列表
func (m *RedisManager) OnlineMACs(now time.Time) []string {
	m.mu.RLock()
	macs := make([]string, 0, len(m.localConn))
	for mac := range m.localConn {
		macs = append(macs, mac)
	}
	m.mu.RUnlock()

	out := macs[:0]
	for _, mac := range macs {
		if m.IsOnline(mac, now) {
			out = append(out, mac)
		}
	}
	return out
}

func (m *RedisManager) getSessionData(ctx context.Context, mac string) (*sessionData, error) {
	raw, err := m.client.Get(ctx, keyPoiPrefix+mac).Bytes()
	if err != nil {
		return nil, err
	}
	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (m *RedisManager) setSessionData(ctx context.Context, mac string, data *sessionData) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	// TTL 取两倍心跳超时，停发心跳后自动过期
	m.client.Set(ctx, keyPoiPrefix+mac, raw, m.timeout*2)
}
