package espsync

import (
	"bytes"
	"encoding/binary"
	"errors"
)

var (
	ErrInvalidMagic = errors.New("invalid magic")
	ErrShortPacket  = errors.New("short packet")
	ErrBadLength    = errors.New("bad length")
	ErrBadPayload   = errors.New("bad payload")
)

// Parse 解析一条完整消息（TCP 桥接布局，含长度字节）
func Parse(raw []byte) (*Message, error) {
	if len(raw) < 5 {
		return nil, ErrShortPacket
	}
	if raw[0] != magic[0] || raw[1] != magic[1] {
		return nil, ErrInvalidMagic
	}
	plen := int(raw[4])
	if plen > MaxPayload || len(raw) != 5+plen {
		return nil, ErrBadLength
	}
	return &Message{Type: raw[2], Seq: raw[3], Payload: raw[5:]}, nil
}

// StreamDecoder 处理半包/粘包的流式解码器
type StreamDecoder struct {
	buf []byte
}

// NewStreamDecoder 创建流式解码器
func NewStreamDecoder() *StreamDecoder { return &StreamDecoder{} }

// Feed 追加数据并尽可能解出多条消息
func (d *StreamDecoder) Feed(p []byte) ([]*Message, error) {
	if len(p) == 0 {
		return nil, nil
	}
	d.buf = append(d.buf, p...)
	msgs := make([]*Message, 0, 2)

	for {
		start := bytes.Index(d.buf, magic)
		if start < 0 {
			// 无 magic，保留末字节应对跨边界
			if len(d.buf) > 1 {
				d.buf = d.buf[len(d.buf)-1:]
			}
			return msgs, nil
		}
		if start > 0 {
			d.buf = d.buf[start:]
		}
		if len(d.buf) < 5 {
			return msgs, nil
		}
		plen := int(d.buf[4])
		if plen > MaxPayload {
			// 明显异常，滑动一字节重新同步
			d.buf = d.buf[1:]
			continue
		}
		total := 5 + plen
		if len(d.buf) < total {
			return msgs, nil
		}
		m, err := Parse(d.buf[:total])
		if err != nil {
			d.buf = d.buf[1:]
			continue
		}
		m.Payload = append([]byte(nil), m.Payload...)
		msgs = append(msgs, m)
		d.buf = d.buf[total:]
		if len(d.buf) == 0 {
			return msgs, nil
		}
	}
}

// DecodeHeartbeat 解析心跳负载
func DecodeHeartbeat(data []byte) (*Heartbeat, error) {
	if len(data) < heartbeatLen {
		return nil, ErrBadPayload
	}
	hb := &Heartbeat{
		Mode:       data[0],
		Index:      data[1],
		Brightness: data[2],
		FrameDelay: data[3],
		UptimeMs:   binary.LittleEndian.Uint32(data[4:8]),
		SyncMode:   data[8],
	}
	hb.Name = cstr(data[9 : 9+HeartbeatNameLen])
	return hb, nil
}

// DecodePairRequest 解析配对请求负载
func DecodePairRequest(data []byte) (*PairRequest, error) {
	if len(data) < 6 {
		return nil, ErrBadPayload
	}
	pr := &PairRequest{}
	copy(pr.MAC[:], data[:6])
	pr.Name = cstr(data[6:])
	return pr, nil
}

// cstr 截断到第一个 NUL，固件侧是定长 C 字符串
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
