package outbound

import "github.com/nebulapoi/poi-gateway/internal/protocol/ble"

// 下行指令优先级定义
// 注意: 数值越小=优先级越高（队列按 priority, created_at 排序）
const (
	// PriorityEmergency 紧急指令（立即执行）
	// 场景: 全场灭光（亮度 0 广播）
	PriorityEmergency = 1

	// PriorityHigh 高优先级指令
	// 场景: 模式切换、槽位选择、序列启动
	PriorityHigh = 2

	// PriorityNormal 普通优先级指令
	// 场景: 亮度、帧率调节
	PriorityNormal = 3

	// PriorityLow 低优先级指令
	// 场景: 图案上传、序列上传（负载大，可容忍延迟）
	PriorityLow = 4

	// PriorityBackground 后台任务
	// 场景: 时间同步
	PriorityBackground = 5
)

// GetCommandPriority 根据 BLE 命令码返回优先级
func GetCommandPriority(cmd uint8) int {
	switch cmd {
	case ble.CmdSetPatternSlot, ble.CmdSetPatternAll, ble.CmdStartSequencer:
		return PriorityHigh

	case ble.CmdSetBrightness, ble.CmdSetSpeed:
		return PriorityNormal

	case ble.CmdSetPattern, ble.CmdSetSequencer:
		return PriorityLow

	default:
		return PriorityNormal
	}
}
