package tcpserver

import (
	"go.uber.org/zap"

	padapter "github.com/nebulapoi/poi-gateway/internal/protocol/adapter"
)

// NamedAdapter 带协议标记的适配器条目
type NamedAdapter struct {
	Name    string
	Adapter padapter.Adapter
}

// Mux 多协议复用器：首帧初判 -> 绑定协议 -> 直通处理
type Mux struct {
	adapters []NamedAdapter
	server   *Server
}

func NewMux(adapters ...NamedAdapter) *Mux { return &Mux{adapters: adapters} }

// SetServer 设置 server 引用（用于日志）
func (m *Mux) SetServer(s *Server) { m.server = s }

// BindToConn 为连接安装 onRead，根据首包前缀判断协议后固定处理路径
func (m *Mux) BindToConn(cc *ConnContext) {
	var decided bool
	var handler func([]byte)

	cc.SetOnRead(func(p []byte) {
		if !decided {
			// 取前缀若干字节用于初判
			pref := p
			if len(pref) > 8 {
				pref = pref[:8]
			}
			for _, na := range m.adapters {
				if na.Adapter.Sniff(pref) {
					a := na.Adapter
					handler = func(b []byte) { _ = a.ProcessBytes(b) }
					cc.SetProtocol(na.Name)
					if m.server != nil && m.server.logger != nil {
						m.server.logger.Info("protocol identified",
							zap.String("remote_addr", cc.RemoteAddr().String()),
							zap.String("protocol", na.Name),
						)
					}
					decided = true
					break
				}
			}
			if !decided {
				// 未识别协议，丢弃该包并保持连接，等待后续可识别前缀
				if m.server != nil && m.server.logger != nil {
					m.server.logger.Warn("unknown protocol prefix",
						zap.String("remote_addr", cc.RemoteAddr().String()),
						zap.Int("data_len", len(p)),
					)
				}
				return
			}
		}
		if handler != nil {
			handler(p)
		}
	})
}
