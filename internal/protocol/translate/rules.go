package translate

import (
	"github.com/nebulapoi/poi-gateway/internal/protocol/ble"
	"github.com/nebulapoi/poi-gateway/internal/protocol/pov"
)

// ruleKind 翻译规则类别
type ruleKind int

const (
	// rulePassThrough 负载透传：换命令码，前置长度字段
	rulePassThrough ruleKind = iota
	// ruleModeSelect 模式合成：负载固定为 {mode, selector}
	ruleModeSelect
)

// rule 单条翻译规则描述符
type rule struct {
	kind   ruleKind
	outCmd byte
	mode   byte // 仅 ruleModeSelect 有效
	// fixedSelector 为 true 时选择子固定为 selector，
	// 否则取入站负载首字节（缺省 0x00）
	fixedSelector bool
	selector      byte
}

// rules BLE 命令码 -> 翻译规则。
// 进程启动时构建一次，之后只读，可并发查询。
// 表外命令码一律视为未知命令，不产生任何回退帧。
var rules = map[uint8]rule{
	ble.CmdSetBrightness:  {kind: rulePassThrough, outCmd: pov.CmdSetBrightness},
	ble.CmdSetSpeed:       {kind: rulePassThrough, outCmd: pov.CmdSetFramerate},
	ble.CmdSetPattern:     {kind: rulePassThrough, outCmd: pov.CmdUploadPattern},
	ble.CmdSetPatternSlot: {kind: ruleModeSelect, outCmd: pov.CmdSetMode, mode: pov.ModePattern},
	ble.CmdSetPatternAll:  {kind: ruleModeSelect, outCmd: pov.CmdSetMode, mode: pov.ModePattern, fixedSelector: true, selector: pov.SelectorCycleAll},
	ble.CmdSetSequencer:   {kind: rulePassThrough, outCmd: pov.CmdUploadSequence},
	ble.CmdStartSequencer: {kind: ruleModeSelect, outCmd: pov.CmdSetMode, mode: pov.ModeSequence},
}
