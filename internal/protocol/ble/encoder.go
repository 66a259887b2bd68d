package ble

// Build 构造一帧 BLE 命令（与 Parse 对应）。
// 注意：负载中不应包含标记字节，调用方需保证。
func Build(cmd byte, data []byte) []byte {
	buf := make([]byte, 0, len(data)+3)
	buf = append(buf, MarkerStart)
	buf = append(buf, cmd)
	buf = append(buf, data...)
	buf = append(buf, MarkerEnd)
	return buf
}
