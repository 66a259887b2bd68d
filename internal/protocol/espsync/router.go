package espsync

import "sync"

// Handler 处理器函数类型
type Handler func(m *Message) error

// Table 路由表（msgType -> handler）
type Table struct {
	mu       sync.RWMutex
	handlers map[uint8]Handler
}

func NewTable() *Table { return &Table{handlers: make(map[uint8]Handler)} }

func (t *Table) Register(msgType uint8, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[msgType] = h
}

func (t *Table) Route(m *Message) error {
	t.mu.RLock()
	h := t.handlers[m.Type]
	t.mu.RUnlock()
	if h == nil {
		return nil
	}
	return h(m)
}
