package espsync

// Message 同步协议消息
// ESP-NOW 原生布局：magic('N''P') | msgType[1] | seq[1] | payload[..]
// ESP-NOW 是数据报语义，经 TCP 桥接时在 seq 之后增加单字节负载长度定界：
// magic[2] | msgType[1] | seq[1] | len[1] | payload[len]
type Message struct {
	Type    uint8
	Seq     uint8
	Payload []byte
}

var magic = []byte{0x4E, 0x50} // 'N''P' (Nebula Poi)

// 消息类型
const (
	MsgPairRequest   = 0x01 // 配对请求（携带 MAC 与名称）
	MsgPairResponse  = 0x02 // 配对应答
	MsgUnpair        = 0x03 // 解除配对
	MsgSetMode       = 0x10 // 模式切换
	MsgSetPattern    = 0x11 // 图案切换
	MsgSetBrightness = 0x12 // 亮度
	MsgSetFramerate  = 0x13 // 帧率
	MsgHeartbeat     = 0x20 // 心跳（携带运行状态）
	MsgSyncTime      = 0x30 // 时间同步
	MsgPeerCmd       = 0x40 // 定向转发命令
)

// MaxPayload ESP-NOW 单包负载上限（250 减去头部开销）
const MaxPayload = 244

// HeartbeatNameLen 心跳负载中设备名称的固定长度
const HeartbeatNameLen = 24

// Heartbeat 心跳负载（与固件 packed 结构对齐，33 字节）：
// mode[1] index[1] brightness[1] frameDelay[1] uptimeMsLE[4] syncMode[1] name[24]
type Heartbeat struct {
	Mode       uint8
	Index      uint8
	Brightness uint8
	FrameDelay uint8
	UptimeMs   uint32
	SyncMode   uint8
	Name       string
}

// heartbeatLen 心跳负载固定长度
const heartbeatLen = 4 + 4 + 1 + HeartbeatNameLen

// PairRequest 配对请求负载：mac[6] + name[变长]
type PairRequest struct {
	MAC  [6]byte
	Name string
}
