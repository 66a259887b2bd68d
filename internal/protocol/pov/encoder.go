package pov

// Build 构造一帧下行串口帧（与 Parse 对应）。
// data 超过 MaxPayload 的部分由调用方负责分片，这里不做截断。
func Build(cmd byte, data []byte) []byte {
	buf := make([]byte, 0, len(data)+4)
	buf = append(buf, MarkerStart)
	buf = append(buf, cmd)
	buf = append(buf, byte(len(data)))
	buf = append(buf, data...)
	buf = append(buf, MarkerEnd)
	return buf
}

// BuildSetMode 构造模式切换帧：负载固定为 {mode, selector}
func BuildSetMode(mode, selector byte) []byte {
	return Build(CmdSetMode, []byte{mode, selector})
}
