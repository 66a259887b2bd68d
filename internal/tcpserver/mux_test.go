package tcpserver

import (
	"testing"

	"github.com/nebulapoi/poi-gateway/internal/protocol/ble"
	"github.com/nebulapoi/poi-gateway/internal/protocol/espsync"
	"github.com/nebulapoi/poi-gateway/internal/protocol/pov"
)

func TestMux_SniffAndBind(t *testing.T) {
	newMux := func() *Mux {
		return NewMux(
			NamedAdapter{Name: "espsync", Adapter: espsync.NewAdapter()},
			NamedAdapter{Name: "pov", Adapter: pov.NewAdapter()},
			NamedAdapter{Name: "ble", Adapter: ble.NewAdapter()},
		)
	}

	cases := []struct {
		name   string
		packet []byte
		proto  string
	}{
		{"ble 前缀 0xD0", []byte{0xD0, 0x02, 0x80, 0xD1}, "ble"},
		{"pov 前缀 0xFF", []byte{0xFF, 0x06, 0x01, 0x80, 0xFE}, "pov"},
		{"espsync magic NP", []byte{0x4E, 0x50, 0x20, 0x01, 0x00}, "espsync"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cc := &ConnContext{}
			newMux().BindToConn(cc)
			if cc.onRead == nil {
				t.Fatal("onRead not set")
			}
			cc.onRead(tc.packet)
			if got := cc.Protocol(); got != tc.proto {
				t.Errorf("protocol=%q, want %q", got, tc.proto)
			}
		})
	}
}

func TestMux_UnknownPrefixKeepsConnection(t *testing.T) {
	mux := NewMux(NamedAdapter{Name: "ble", Adapter: ble.NewAdapter()})
	cc := &ConnContext{}
	mux.BindToConn(cc)

	// 未识别前缀被丢弃，连接保持未定协议状态
	cc.onRead([]byte{0x00, 0x01, 0x02})
	if got := cc.Protocol(); got != "" {
		t.Fatalf("protocol=%q, want empty", got)
	}

	// 后续可识别前缀仍能完成绑定
	cc.onRead([]byte{0xD0, 0x02, 0x80, 0xD1})
	if got := cc.Protocol(); got != "ble" {
		t.Fatalf("protocol=%q, want ble", got)
	}
}
