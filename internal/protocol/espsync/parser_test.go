package espsync

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	raw := Build(MsgPairResponse, 7, []byte{0x01})
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if m.Type != MsgPairResponse || m.Seq != 7 {
		t.Errorf("type=0x%02X seq=%d", m.Type, m.Seq)
	}
	if !bytes.Equal(m.Payload, []byte{0x01}) {
		t.Errorf("payload=% 02X", m.Payload)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want error
	}{
		{"short", []byte{0x4E, 0x50, 0x01}, ErrShortPacket},
		{"bad magic", []byte{0x00, 0x50, 0x01, 0x00, 0x00}, ErrInvalidMagic},
		{"length mismatch", []byte{0x4E, 0x50, 0x01, 0x00, 0x05, 0xAA}, ErrBadLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.raw); !errors.Is(err, tc.want) {
				t.Errorf("err=%v, want %v", err, tc.want)
			}
		})
	}
}

func TestStreamDecoder_SplitMagic(t *testing.T) {
	d := NewStreamDecoder()
	raw := Build(MsgHeartbeat, 1, heartbeatPayload(t, &Heartbeat{Mode: 2, Name: "poi-a"}))
	// magic 跨两次 Feed
	frames, err := d.Feed(raw[:1])
	if err != nil || len(frames) != 0 {
		t.Fatalf("frames=%d err=%v", len(frames), err)
	}
	frames, err = d.Feed(raw[1:])
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	if len(frames) != 1 || frames[0].Type != MsgHeartbeat {
		t.Fatalf("frames=%v", frames)
	}
}

func TestStreamDecoder_StickyMessages(t *testing.T) {
	d := NewStreamDecoder()
	a := Build(MsgSetBrightness, 1, []byte{0x80})
	b := Build(MsgSetFramerate, 2, []byte{0x32})
	msgs, err := d.Feed(append(a, b...))
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("msgs=%d, want 2", len(msgs))
	}
	if msgs[0].Type != MsgSetBrightness || msgs[1].Type != MsgSetFramerate {
		t.Errorf("types=%02X %02X", msgs[0].Type, msgs[1].Type)
	}
}

func TestStreamDecoder_GarbagePrefix(t *testing.T) {
	d := NewStreamDecoder()
	raw := append([]byte{0x00, 0x11, 0x22}, Build(MsgUnpair, 3, nil)...)
	msgs, err := d.Feed(raw)
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Type != MsgUnpair {
		t.Fatalf("msgs=%v", msgs)
	}
}

func TestDecodeHeartbeat(t *testing.T) {
	hb := &Heartbeat{
		Mode:       2,
		Index:      5,
		Brightness: 200,
		FrameDelay: 20,
		UptimeMs:   123456,
		SyncMode:   1,
		Name:       "poi-left",
	}
	got, err := DecodeHeartbeat(heartbeatPayload(t, hb))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if *got != *hb {
		t.Errorf("got %+v, want %+v", got, hb)
	}
}

func TestDecodeHeartbeat_Short(t *testing.T) {
	if _, err := DecodeHeartbeat(make([]byte, 10)); !errors.Is(err, ErrBadPayload) {
		t.Fatalf("err=%v, want ErrBadPayload", err)
	}
}

func TestDecodePairRequest(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0xCC, 0x01, 0x02, 0x03}
	data = append(data, []byte("poi-right\x00\x00\x00")...)
	pr, err := DecodePairRequest(data)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if pr.MAC != [6]byte{0xAA, 0xBB, 0xCC, 0x01, 0x02, 0x03} {
		t.Errorf("mac=% 02X", pr.MAC)
	}
	if pr.Name != "poi-right" {
		t.Errorf("name=%q", pr.Name)
	}
}

func TestBuildSyncTime(t *testing.T) {
	raw := BuildSyncTime(9, 1700000000000)
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if m.Type != MsgSyncTime || m.Seq != 9 {
		t.Errorf("type=0x%02X seq=%d", m.Type, m.Seq)
	}
	if got := binary.LittleEndian.Uint64(m.Payload); got != 1700000000000 {
		t.Errorf("ts=%d", got)
	}
}

// heartbeatPayload 按固件 packed 布局构造心跳负载
func heartbeatPayload(t *testing.T, hb *Heartbeat) []byte {
	t.Helper()
	p := make([]byte, heartbeatLen)
	p[0] = hb.Mode
	p[1] = hb.Index
	p[2] = hb.Brightness
	p[3] = hb.FrameDelay
	binary.LittleEndian.PutUint32(p[4:8], hb.UptimeMs)
	p[8] = hb.SyncMode
	copy(p[9:], hb.Name)
	return p
}
