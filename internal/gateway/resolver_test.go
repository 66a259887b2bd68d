package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nebulapoi/poi-gateway/internal/session"
)

type fakeWriter struct {
	frames [][]byte
}

func (w *fakeWriter) Write(b []byte) error {
	w.frames = append(w.frames, b)
	return nil
}

func TestResolve_SingleDevice(t *testing.T) {
	sess := session.New(30 * time.Second)
	h := NewHandler(sess, nil, nil, nil, 30*time.Second)

	w := &fakeWriter{}
	sess.Bind("aabbcc010203", w)
	sess.OnHeartbeat("aabbcc010203", time.Now())

	targets := h.Resolve("aabbcc010203")
	assert.Len(t, targets, 1)

	// 离线设备解析为空
	assert.Empty(t, h.Resolve("ddeeff040506"))
}

func TestResolve_OfflineDeviceExcluded(t *testing.T) {
	sess := session.New(30 * time.Second)
	h := NewHandler(sess, nil, nil, nil, 30*time.Second)

	w := &fakeWriter{}
	sess.Bind("aabbcc010203", w)
	sess.OnHeartbeat("aabbcc010203", time.Now().Add(-time.Minute))

	assert.Empty(t, h.Resolve("aabbcc010203"))
}

func TestResolve_Broadcast(t *testing.T) {
	sess := session.New(30 * time.Second)
	h := NewHandler(sess, nil, nil, nil, 30*time.Second)

	now := time.Now()
	w1, w2 := &fakeWriter{}, &fakeWriter{}
	sess.Bind("mac1", w1)
	sess.OnHeartbeat("mac1", now)
	sess.Bind("mac2", w2)
	sess.OnHeartbeat("mac2", now)
	sess.Bind("mac3", &fakeWriter{})
	sess.OnHeartbeat("mac3", now.Add(-time.Hour)) // 离线，不参与广播

	targets := h.Resolve("")
	assert.Len(t, targets, 2)

	for _, tg := range targets {
		assert.NoError(t, tg.Write([]byte{0xFF, 0x06, 0x01, 0x80, 0xFE}))
	}
	assert.Len(t, w1.frames, 1)
	assert.Len(t, w2.frames, 1)
}
