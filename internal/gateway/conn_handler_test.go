package gateway

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/nebulapoi/poi-gateway/internal/config"
	"github.com/nebulapoi/poi-gateway/internal/protocol/espsync"
	"github.com/nebulapoi/poi-gateway/internal/session"
	"github.com/nebulapoi/poi-gateway/internal/tcpserver"
)

// 启动真实网关（随机端口），返回服务器与会话管理器
func startGateway(t *testing.T) (*tcpserver.Server, session.SessionManager) {
	t.Helper()
	sess := session.New(30 * time.Second)
	h := NewHandler(sess, nil, nil, zap.NewNop(), 30*time.Second)

	srv := tcpserver.New(cfgpkg.TCPConfig{
		Addr:           "127.0.0.1:0",
		ReadTimeout:    2 * time.Second,
		WriteTimeout:   2 * time.Second,
		MaxConnections: 16,
	})
	srv.SetOnConn(h.OnConn)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, sess
}

func dialGateway(t *testing.T, srv *tcpserver.Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// 完成 espsync 配对，返回设备连接（已读取配对应答）
func pairDevice(t *testing.T, srv *tcpserver.Server, mac [6]byte, name string) net.Conn {
	t.Helper()
	conn := dialGateway(t, srv)

	payload := append(append([]byte{}, mac[:]...), []byte(name)...)
	_, err := conn.Write(espsync.Build(espsync.MsgPairRequest, 0x01, payload))
	require.NoError(t, err)

	// 配对应答：magic[2] type seq len + accepted[1]
	resp := make([]byte, 6)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = io.ReadFull(conn, resp)
	require.NoError(t, err)
	require.Equal(t, byte(espsync.MsgPairResponse), resp[2])
	require.Equal(t, byte(0x01), resp[5], "pair not accepted")
	return conn
}

func heartbeatPayload(name string) []byte {
	p := make([]byte, 33)
	p[0] = 0x02 // mode
	p[1] = 0x01 // index
	p[2] = 0x80 // brightness
	p[3] = 0x14 // frameDelay
	// uptimeMs/syncMode 留零
	copy(p[9:9+24], name)
	return p
}

func TestOnConn_PairAndHeartbeat(t *testing.T) {
	srv, sess := startGateway(t)
	mac := [6]byte{0xAA, 0xBB, 0xCC, 0x01, 0x02, 0x03}

	conn := pairDevice(t, srv, mac, "poi-left")
	require.True(t, sess.IsOnline("aabbcc010203", time.Now()))

	_, err := conn.Write(espsync.Build(espsync.MsgHeartbeat, 0x02, heartbeatPayload("poi-left")))
	require.NoError(t, err)

	// 心跳异步处理，轮询在线状态
	require.Eventually(t, func() bool {
		return sess.IsOnline("aabbcc010203", time.Now())
	}, time.Second, 10*time.Millisecond)
}

// 控制端 BLE 帧翻译后镜像广播到全部在线 poi，设备应答反向翻译回控制端
func TestOnConn_ControlFrameMirroredToDevices(t *testing.T) {
	srv, _ := startGateway(t)

	left := pairDevice(t, srv, [6]byte{0xAA, 0xBB, 0xCC, 0x01, 0x02, 0x03}, "poi-left")
	right := pairDevice(t, srv, [6]byte{0xAA, 0xBB, 0xCC, 0x04, 0x05, 0x06}, "poi-right")

	controller := dialGateway(t, srv)
	// 亮度 0x80
	_, err := controller.Write([]byte{0xD0, 0x02, 0x80, 0xD1})
	require.NoError(t, err)

	want := []byte{0xFF, 0x06, 0x01, 0x80, 0xFE}
	for _, dev := range []net.Conn{left, right} {
		got := make([]byte, len(want))
		require.NoError(t, dev.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, err = io.ReadFull(dev, got)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	// 设备应答帧 -> 反向翻译 -> 控制端
	_, err = left.Write([]byte{0xFF, 0x06, 0x01, 0x80, 0xFE})
	require.NoError(t, err)

	reply := make([]byte, 4)
	require.NoError(t, controller.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = io.ReadFull(controller, reply)
	require.NoError(t, err)
	require.Equal(t, []byte{0xD0, 0x06, 0x80, 0xD1}, reply)
}

// 畸形控制帧静默丢弃，连接保持可用
func TestOnConn_MalformedControlFrameIgnored(t *testing.T) {
	srv, _ := startGateway(t)
	dev := pairDevice(t, srv, [6]byte{0xAA, 0xBB, 0xCC, 0x01, 0x02, 0x03}, "poi-left")

	controller := dialGateway(t, srv)
	// 未知命令 0x99，随后正常亮度帧
	_, err := controller.Write([]byte{0xD0, 0x99, 0x00, 0xD1})
	require.NoError(t, err)
	_, err = controller.Write([]byte{0xD0, 0x02, 0x40, 0xD1})
	require.NoError(t, err)

	got := make([]byte, 5)
	require.NoError(t, dev.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = io.ReadFull(dev, got)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0x06, 0x01, 0x40, 0xFE}, got)
}
