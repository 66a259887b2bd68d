package ble

import "errors"

var (
	ErrShortFrame = errors.New("short frame")
	ErrBadMarker  = errors.New("bad frame marker")
	ErrOversized  = errors.New("frame exceeds max payload")
)

// Parse 解析一帧完整的 BLE 命令（严格校验：长度、首尾标记）
func Parse(raw []byte) (*Frame, error) {
	if len(raw) < 3 {
		return nil, ErrShortFrame
	}
	if raw[0] != MarkerStart || raw[len(raw)-1] != MarkerEnd {
		return nil, ErrBadMarker
	}
	if len(raw)-3 > MaxPayload {
		return nil, ErrOversized
	}
	return &Frame{Cmd: raw[1], Data: raw[2 : len(raw)-1]}, nil
}

// StreamDecoder 处理半包/粘包的流式解码器。
// 协议没有长度字段，按标记字节切分：遇 0xD0 开始收集，遇 0xD1 产出一帧。
// 负载中不允许出现标记字节，这是 BLE 方言自身的约定。
type StreamDecoder struct {
	buf     []byte
	inFrame bool
}

// NewStreamDecoder 创建流式解码器
func NewStreamDecoder() *StreamDecoder { return &StreamDecoder{} }

// Feed 追加数据并尽可能解出多帧
func (d *StreamDecoder) Feed(p []byte) ([]*Frame, error) {
	if len(p) == 0 {
		return nil, nil
	}
	frames := make([]*Frame, 0, 2)
	for _, b := range p {
		if !d.inFrame {
			if b == MarkerStart {
				d.inFrame = true
				d.buf = d.buf[:0]
			}
			// 帧外字节直接丢弃
			continue
		}
		if b == MarkerEnd {
			if len(d.buf) >= 1 {
				fr := &Frame{Cmd: d.buf[0]}
				if len(d.buf) > 1 {
					fr.Data = append([]byte(nil), d.buf[1:]...)
				}
				frames = append(frames, fr)
			}
			// 空帧（0xD0 0xD1）静默丢弃，等待下一帧
			d.inFrame = false
			continue
		}
		if len(d.buf) >= MaxPayload+1 {
			// 超限：丢弃当前帧并重新同步，避免畸形数据占用内存
			d.inFrame = false
			d.buf = d.buf[:0]
			continue
		}
		d.buf = append(d.buf, b)
	}
	return frames, nil
}
