package pov

// Frame POV 引擎串口帧结构
// 布局：start(0xFF) | cmd[1] | len[1] | data[len] | end(0xFE)
type Frame struct {
	Cmd  uint8
	Data []byte
}

// 帧标记
const (
	MarkerStart = 0xFF
	MarkerEnd   = 0xFE
)

// 下行命令码（发往 POV 引擎）
const (
	CmdSetMode        = 0x01 // 切换工作模式
	CmdUploadPattern  = 0x03 // 上传图案数据
	CmdUploadSequence = 0x04 // 上传序列定义
	CmdSetBrightness  = 0x06 // 设置亮度
	CmdSetFramerate   = 0x07 // 设置帧率
)

// 工作模式标识（SetMode 负载首字节）
const (
	ModePattern  = 0x02 // 图案模式
	ModeSequence = 0x03 // 序列模式
)

// SelectorCycleAll 自动轮播全部槽位的选择子
const SelectorCycleAll = 0xFF

// MaxPayload 单帧最大负载（长度字段为单字节）
const MaxPayload = 255
