package espsync

import "encoding/binary"

// Build 构造一条下行消息（与 Parse 对应）
func Build(msgType, seq byte, payload []byte) []byte {
	buf := make([]byte, 0, len(payload)+5)
	buf = append(buf, magic...)
	buf = append(buf, msgType, seq)
	buf = append(buf, byte(len(payload)))
	buf = append(buf, payload...)
	return buf
}

// BuildPairResponse 构造配对应答：accepted=0x01 接受，0x00 拒绝
func BuildPairResponse(seq byte, accepted bool) []byte {
	b := byte(0x00)
	if accepted {
		b = 0x01
	}
	return Build(MsgPairResponse, seq, []byte{b})
}

// BuildSyncTime 构造时间同步消息：负载为服务器毫秒时间戳（LE u64）
func BuildSyncTime(seq byte, unixMs uint64) []byte {
	p := make([]byte, 8)
	binary.LittleEndian.PutUint64(p, unixMs)
	return Build(MsgSyncTime, seq, p)
}
