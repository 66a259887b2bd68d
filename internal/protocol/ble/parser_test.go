package ble

import (
	"bytes"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	fr, err := Parse([]byte{0xD0, 0x02, 0x80, 0xD1})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fr.Cmd != CmdSetBrightness {
		t.Errorf("cmd=0x%02X, want 0x02", fr.Cmd)
	}
	if !bytes.Equal(fr.Data, []byte{0x80}) {
		t.Errorf("data=% 02X, want 80", fr.Data)
	}
}

func TestParse_NoPayload(t *testing.T) {
	fr, err := Parse([]byte{0xD0, 0x06, 0xD1})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fr.Cmd != CmdSetPatternAll || len(fr.Data) != 0 {
		t.Errorf("cmd=0x%02X data=% 02X", fr.Cmd, fr.Data)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want error
	}{
		{"short", []byte{0xD0, 0xD1}, ErrShortFrame},
		{"bad start", []byte{0x00, 0x02, 0x80, 0xD1}, ErrBadMarker},
		{"bad end", []byte{0xD0, 0x02, 0x80, 0x00}, ErrBadMarker},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.raw); !errors.Is(err, tc.want) {
				t.Errorf("err=%v, want %v", err, tc.want)
			}
		})
	}
}

func TestParse_Oversized(t *testing.T) {
	raw := make([]byte, MaxPayload+4)
	raw[0] = MarkerStart
	raw[1] = CmdSetPattern
	raw[len(raw)-1] = MarkerEnd
	if _, err := Parse(raw); !errors.Is(err, ErrOversized) {
		t.Fatalf("err=%v, want ErrOversized", err)
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	raw := Build(CmdSetPatternSlot, []byte{0x03})
	if !bytes.Equal(raw, []byte{0xD0, 0x05, 0x03, 0xD1}) {
		t.Fatalf("build: % 02X", raw)
	}
	fr, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if fr.Cmd != CmdSetPatternSlot || !bytes.Equal(fr.Data, []byte{0x03}) {
		t.Errorf("cmd=0x%02X data=% 02X", fr.Cmd, fr.Data)
	}
}

func TestStreamDecoder_SplitAcrossFeeds(t *testing.T) {
	d := NewStreamDecoder()
	frames, err := d.Feed([]byte{0xD0, 0x02})
	if err != nil || len(frames) != 0 {
		t.Fatalf("frames=%d err=%v", len(frames), err)
	}
	frames, err = d.Feed([]byte{0x80, 0xD1})
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	if len(frames) != 1 || frames[0].Cmd != CmdSetBrightness {
		t.Fatalf("frames=%v", frames)
	}
	if !bytes.Equal(frames[0].Data, []byte{0x80}) {
		t.Errorf("data=% 02X", frames[0].Data)
	}
}

func TestStreamDecoder_MultipleFramesOneFeed(t *testing.T) {
	d := NewStreamDecoder()
	frames, err := d.Feed([]byte{
		0xD0, 0x02, 0x10, 0xD1,
		0xD0, 0x03, 0x20, 0xD1,
		0xD0, 0x06, 0xD1,
	})
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("frames=%d, want 3", len(frames))
	}
	if frames[0].Cmd != 0x02 || frames[1].Cmd != 0x03 || frames[2].Cmd != 0x06 {
		t.Errorf("cmds=%02X %02X %02X", frames[0].Cmd, frames[1].Cmd, frames[2].Cmd)
	}
}

func TestStreamDecoder_GarbageBetweenFrames(t *testing.T) {
	d := NewStreamDecoder()
	frames, err := d.Feed([]byte{0x00, 0xAA, 0xD0, 0x02, 0x10, 0xD1, 0xBB, 0xCC})
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	if len(frames) != 1 || frames[0].Cmd != 0x02 {
		t.Fatalf("frames=%v", frames)
	}
}

func TestStreamDecoder_EmptyFrameDropped(t *testing.T) {
	d := NewStreamDecoder()
	frames, err := d.Feed([]byte{0xD0, 0xD1, 0xD0, 0x02, 0x10, 0xD1})
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	if len(frames) != 1 || frames[0].Cmd != 0x02 {
		t.Fatalf("frames=%v", frames)
	}
}

func TestStreamDecoder_OversizedResync(t *testing.T) {
	d := NewStreamDecoder()
	junk := make([]byte, MaxPayload+16)
	junk[0] = MarkerStart
	if frames, _ := d.Feed(junk); len(frames) != 0 {
		t.Fatalf("expected no frames from oversized junk")
	}
	// 超限丢弃后能重新同步到下一帧
	frames, err := d.Feed([]byte{0xD0, 0x03, 0x20, 0xD1})
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	if len(frames) != 1 || frames[0].Cmd != 0x03 {
		t.Fatalf("frames=%v", frames)
	}
}
