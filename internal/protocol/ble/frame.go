package ble

// Frame BLE 命令帧结构
// 布局：start(0xD0) | cmd[1] | data[..] | end(0xD1)
// 无长度字段，帧边界完全由标记字节界定
type Frame struct {
	Cmd  uint8
	Data []byte
}

// 帧标记
const (
	MarkerStart = 0xD0
	MarkerEnd   = 0xD1
)

// BLE 命令码（App 侧）
const (
	CmdSetBrightness  = 0x02 // 设置亮度
	CmdSetSpeed       = 0x03 // 设置速度/帧率
	CmdSetPattern     = 0x04 // 上传图案
	CmdSetPatternSlot = 0x05 // 选择图案槽位
	CmdSetPatternAll  = 0x06 // 自动轮播全部图案
	CmdSetSequencer   = 0x0E // 上传序列
	CmdStartSequencer = 0x0F // 启动序列
)

// MaxPayload 单帧最大负载（BLE MTU 512 减去标记与命令码开销）
const MaxPayload = 509
