package tcpserver

import (
	"net"
	"testing"
	"time"

	cfgpkg "github.com/nebulapoi/poi-gateway/internal/config"
)

// 写队列写满后阻塞的 Write，在连接关闭时必须以错误返回而不是 panic
func TestConnContext_CloseUnblocksPendingWrite(t *testing.T) {
	srv := New(cfgpkg.TCPConfig{WriteTimeout: 5 * time.Second, MaxConnections: 4})
	client, server := net.Pipe()
	defer client.Close()

	cc := newConnContext(srv, server)

	// 无写循环消费，填满 128 槽写队列
	for i := 0; i < cap(cc.writeC); i++ {
		if err := cc.Write([]byte{0xD0, 0x02, byte(i), 0xD1}); err != nil {
			t.Fatalf("Write #%d: %v", i, err)
		}
	}

	type result struct {
		err      error
		panicked any
	}
	resC := make(chan result, 1)
	go func() {
		var r result
		defer func() {
			r.panicked = recover()
			resC <- r
		}()
		// 队列已满，这次 Write 会阻塞在 select 上
		r.err = cc.Write([]byte{0xD0, 0x03, 0x01, 0xD1})
	}()

	// 等待 goroutine 进入阻塞
	time.Sleep(50 * time.Millisecond)
	_ = cc.Close()

	select {
	case r := <-resC:
		if r.panicked != nil {
			t.Fatalf("blocked Write panicked: %v", r.panicked)
		}
		if r.err == nil {
			t.Fatal("blocked Write returned nil after Close, want error")
		}
	case <-time.After(time.Second):
		t.Fatal("blocked Write not released by Close")
	}
}

func TestConnContext_WriteAfterClose(t *testing.T) {
	srv := New(cfgpkg.TCPConfig{WriteTimeout: time.Second, MaxConnections: 4})
	client, server := net.Pipe()
	defer client.Close()

	cc := newConnContext(srv, server)
	if err := cc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// 重复 Close 幂等
	if err := cc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if err := cc.Write([]byte{0xD0, 0x02, 0x80, 0xD1}); err == nil {
		t.Fatal("Write after Close returned nil, want error")
	}

	select {
	case <-cc.Done():
	default:
		t.Fatal("Done channel not closed after Close")
	}
}
