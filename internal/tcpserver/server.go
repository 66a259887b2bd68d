package tcpserver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/nebulapoi/poi-gateway/internal/config"
)

// Server TCP 网关：接入 poi（espsync/pov 方言）与控制端桥接（ble 方言）
type Server struct {
	cfg        cfgpkg.TCPConfig
	ln         net.Listener
	wg         sync.WaitGroup
	stopC      chan struct{}
	nextConnID uint64
	logger     *zap.Logger

	onConn      func(*ConnContext)
	onAccept    func()
	onRecvBytes func(n int)

	limiter *ConnectionLimiter
	rate    *RateLimiter
}

// New 创建 TCP 网关
func New(cfg cfgpkg.TCPConfig) *Server {
	return &Server{
		cfg:     cfg,
		stopC:   make(chan struct{}),
		limiter: NewConnectionLimiter(cfg.MaxConnections, 0),
		rate:    NewRateLimiter(cfg.AcceptRate, cfg.AcceptBurst),
	}
}

// SetLogger 安装日志器
func (s *Server) SetLogger(l *zap.Logger) { s.logger = l }

// GetLogger 返回日志器（可能为 nil）
func (s *Server) GetLogger() *zap.Logger { return s.logger }

// SetOnConn 设置新连接回调（在读循环启动前调用，可安装 onRead）
func (s *Server) SetOnConn(h func(*ConnContext)) { s.onConn = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept func(), onRecvBytes func(int)) {
	s.onAccept, s.onRecvBytes = onAccept, onRecvBytes
}

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.stopC:
					return
				default:
				}
				// 短暂错误等待后重试
				time.Sleep(50 * time.Millisecond)
				continue
			}
			if !s.rate.Allow() {
				// 接入速率超限，直接拒绝
				_ = conn.Close()
				continue
			}
			if err := s.limiter.Acquire(context.Background()); err != nil {
				if s.logger != nil {
					s.logger.Warn("connection rejected",
						zap.String("remote_addr", conn.RemoteAddr().String()),
						zap.Error(err),
					)
				}
				_ = conn.Close()
				continue
			}
			if s.onAccept != nil {
				s.onAccept()
			}

			cc := newConnContext(s, conn)
			if s.onConn != nil {
				s.onConn(cc)
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.limiter.Release()
				cc.run()
			}()
		}
	}()
	return nil
}

// Addr 返回实际监听地址（Start 之后有效；配置 ":0" 时用于获取分配端口）
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Limiter 返回连接限流器（供就绪检查/统计使用）
func (s *Server) Limiter() *ConnectionLimiter { return s.limiter }

// Shutdown 优雅关闭监听并等待连接退出
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopC)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
