package pov

import (
	"bytes"
	"errors"
)

var (
	ErrShortFrame = errors.New("short frame")
	ErrBadMarker  = errors.New("bad frame marker")
	ErrBadLength  = errors.New("bad length byte")
)

// Parse 解析一帧完整的串口帧（严格校验：标记、长度字段与实际负载一致）
func Parse(raw []byte) (*Frame, error) {
	if len(raw) < 4 {
		return nil, ErrShortFrame
	}
	if raw[0] != MarkerStart || raw[len(raw)-1] != MarkerEnd {
		return nil, ErrBadMarker
	}
	if int(raw[2]) != len(raw)-4 {
		return nil, ErrBadLength
	}
	return &Frame{Cmd: raw[1], Data: raw[3 : len(raw)-1]}, nil
}

// StreamDecoder 处理半包/粘包的流式解码器。
// 利用长度字段定界，尾标记不匹配时滑动一字节重新同步。
type StreamDecoder struct {
	buf []byte
}

// NewStreamDecoder 创建流式解码器
func NewStreamDecoder() *StreamDecoder { return &StreamDecoder{} }

// Feed 追加数据并尽可能解出多帧
func (d *StreamDecoder) Feed(p []byte) ([]*Frame, error) {
	if len(p) == 0 {
		return nil, nil
	}
	d.buf = append(d.buf, p...)
	frames := make([]*Frame, 0, 2)

	for {
		start := bytes.IndexByte(d.buf, MarkerStart)
		if start < 0 {
			// 无起始标记，清空缓冲避免无界增长
			d.buf = d.buf[:0]
			return frames, nil
		}
		if start > 0 {
			// 丢弃无效前缀
			d.buf = d.buf[start:]
		}
		if len(d.buf) < 3 {
			// 还需要更多字节（start+cmd+len）
			return frames, nil
		}
		total := int(d.buf[2]) + 4
		if len(d.buf) < total {
			// 半包，等待更多
			return frames, nil
		}
		candidate := d.buf[:total]
		fr, err := Parse(candidate)
		if err != nil {
			// 尾标记或长度不符，滑动一字节继续寻找同步
			d.buf = d.buf[1:]
			continue
		}
		fr.Data = append([]byte(nil), fr.Data...)
		frames = append(frames, fr)
		d.buf = d.buf[total:]
		if len(d.buf) == 0 {
			return frames, nil
		}
	}
}
