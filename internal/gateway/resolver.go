package gateway

import (
	"time"

	"github.com/nebulapoi/poi-gateway/internal/outbound"
)

// Resolve 实现 outbound.TargetResolver。
// mac 非空返回该设备已绑定的连接（须在线），为空返回全部在线设备连接。
func (h *Handler) Resolve(mac string) []outbound.Writer {
	now := time.Now()
	if mac != "" {
		if !h.sess.IsOnline(mac, now) {
			return nil
		}
		conn, ok := h.sess.GetConn(mac)
		if !ok {
			return nil
		}
		w, ok := conn.(outbound.Writer)
		if !ok {
			return nil
		}
		return []outbound.Writer{w}
	}

	macs := h.sess.OnlineMACs(now)
	writers := make([]outbound.Writer, 0, len(macs))
	for _, m := range macs {
		conn, ok := h.sess.GetConn(m)
		if !ok {
			continue
		}
		if w, ok := conn.(outbound.Writer); ok {
			writers = append(writers, w)
		}
	}
	return writers
}
