package outbound

import (
	"testing"

	"github.com/nebulapoi/poi-gateway/internal/protocol/ble"
)

func TestGetCommandPriority(t *testing.T) {
	cases := []struct {
		cmd  uint8
		want int
	}{
		{ble.CmdSetPatternSlot, PriorityHigh},
		{ble.CmdSetPatternAll, PriorityHigh},
		{ble.CmdStartSequencer, PriorityHigh},
		{ble.CmdSetBrightness, PriorityNormal},
		{ble.CmdSetSpeed, PriorityNormal},
		{ble.CmdSetPattern, PriorityLow},
		{ble.CmdSetSequencer, PriorityLow},
		{0x99, PriorityNormal}, // 未知命令回落普通优先级
	}
	for _, tc := range cases {
		if got := GetCommandPriority(tc.cmd); got != tc.want {
			t.Errorf("cmd 0x%02X: priority=%d, want %d", tc.cmd, got, tc.want)
		}
	}
}

func TestPriorityOrdering(t *testing.T) {
	// 数值越小优先级越高，队列按 priority 升序出队
	if !(PriorityEmergency < PriorityHigh &&
		PriorityHigh < PriorityNormal &&
		PriorityNormal < PriorityLow &&
		PriorityLow < PriorityBackground) {
		t.Fatal("priority values out of order")
	}
}
