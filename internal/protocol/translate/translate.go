// Package translate 实现 BLE 方言到 POV 串口方言的命令帧翻译。
//
// 翻译是无状态纯函数：不做 I/O、不写日志、不持有共享可变状态，
// 可被任意多个 goroutine 并发调用。失败时统一返回 nil 帧加哨兵错误，
// 丢弃/告警/断连等策略由调用方决定。
package translate

import (
	"errors"

	"github.com/nebulapoi/poi-gateway/internal/protocol/ble"
	"github.com/nebulapoi/poi-gateway/internal/protocol/pov"
)

// ErrMalformedFrame 所有翻译失败错误的公共基底，
// 便于调用方用 errors.Is 做粗粒度判断。
var ErrMalformedFrame = errors.New("malformed or unknown frame")

var (
	ErrShortFrame     = wrapErr("short frame")
	ErrBadMarker      = wrapErr("bad frame marker")
	ErrBadLength      = wrapErr("bad length byte")
	ErrUnknownCommand = wrapErr("unknown command")
	ErrOversized      = wrapErr("payload exceeds length field range")
)

func wrapErr(msg string) error {
	return &translateError{msg: msg}
}

type translateError struct{ msg string }

func (e *translateError) Error() string { return e.msg }
func (e *translateError) Unwrap() error { return ErrMalformedFrame }

// Translate 将一帧完整 BLE 命令翻译为 POV 串口帧。
// 校验先行且无条件执行：长度不足 3 字节、首尾标记缺失均直接失败，
// 之后才做规则表查询。表外命令码同样失败，不产生回退帧。
func Translate(raw []byte) ([]byte, error) {
	if len(raw) < 3 {
		return nil, ErrShortFrame
	}
	if raw[0] != ble.MarkerStart || raw[len(raw)-1] != ble.MarkerEnd {
		return nil, ErrBadMarker
	}
	fr := &ble.Frame{Cmd: raw[1], Data: raw[2 : len(raw)-1]}
	return TranslateFrame(fr)
}

// TranslateFrame 对已解码的 BLE 帧应用翻译规则
func TranslateFrame(f *ble.Frame) ([]byte, error) {
	r, ok := rules[f.Cmd]
	if !ok {
		return nil, ErrUnknownCommand
	}
	switch r.kind {
	case ruleModeSelect:
		sel := r.selector
		if !r.fixedSelector {
			sel = 0x00
			if len(f.Data) > 0 {
				sel = f.Data[0]
			}
		}
		return pov.BuildSetMode(r.mode, sel), nil
	default:
		if len(f.Data) > pov.MaxPayload {
			return nil, ErrOversized
		}
		return pov.Build(r.outCmd, f.Data), nil
	}
}

// TranslateResponse 反向翻译：POV 引擎应答帧 -> BLE 帧。
// 入站布局 0xFF cmd len data 0xFE，出站去掉长度字段改为标记定界。
func TranslateResponse(raw []byte) ([]byte, error) {
	if len(raw) < 4 {
		return nil, ErrShortFrame
	}
	if raw[0] != pov.MarkerStart || raw[len(raw)-1] != pov.MarkerEnd {
		return nil, ErrBadMarker
	}
	if int(raw[2]) != len(raw)-4 {
		return nil, ErrBadLength
	}
	return ble.Build(raw[1], raw[3:len(raw)-1]), nil
}
