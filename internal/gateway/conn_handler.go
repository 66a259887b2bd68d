package gateway

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nebulapoi/poi-gateway/internal/metrics"
	"github.com/nebulapoi/poi-gateway/internal/protocol/ble"
	"github.com/nebulapoi/poi-gateway/internal/protocol/espsync"
	"github.com/nebulapoi/poi-gateway/internal/protocol/pov"
	"github.com/nebulapoi/poi-gateway/internal/protocol/translate"
	"github.com/nebulapoi/poi-gateway/internal/session"
	"github.com/nebulapoi/poi-gateway/internal/storage/gormrepo"
	"github.com/nebulapoi/poi-gateway/internal/storage/models"
	"github.com/nebulapoi/poi-gateway/internal/tcpserver"
)

// Handler TCP 连接处理器：完成协议识别、会话绑定与帧翻译转发。
// 控制端连接（ble 方言）与设备连接（espsync/pov 方言）共用同一网关端口。
type Handler struct {
	sess    session.SessionManager
	repo    *gormrepo.Repository
	appm    *metrics.AppMetrics
	logger  *zap.Logger
	timeout time.Duration

	// 已识别为控制端的连接，设备应答帧反向翻译后广播给它们
	controllers sync.Map // connID -> *tcpserver.ConnContext
}

// NewHandler 构建网关连接处理器
func NewHandler(
	sess session.SessionManager,
	repo *gormrepo.Repository,
	appm *metrics.AppMetrics,
	logger *zap.Logger,
	heartbeatTimeout time.Duration,
) *Handler {
	return &Handler{
		sess:    sess,
		repo:    repo,
		appm:    appm,
		logger:  logger,
		timeout: heartbeatTimeout,
	}
}

// OnConn 为每个新连接装配适配器与路由（传给 tcpserver.SetOnConn）
func (h *Handler) OnConn(cc *tcpserver.ConnContext) {
	var boundMAC string

	bleAdapter := ble.NewAdapter()
	povAdapter := pov.NewAdapter()
	syncAdapter := espsync.NewAdapter()

	// ---- 设备侧：espsync 路由 ----
	syncAdapter.Register(espsync.MsgPairRequest, func(m *espsync.Message) error {
		h.routeMetric("pair_request")
		pr, err := espsync.DecodePairRequest(m.Payload)
		if err != nil {
			_ = cc.Write(espsync.BuildPairResponse(m.Seq, false))
			return err
		}
		mac := hex.EncodeToString(pr.MAC[:])
		boundMAC = mac
		h.sess.Bind(mac, cc)
		h.sess.OnHeartbeat(mac, time.Now())
		if h.repo != nil {
			if _, err := h.repo.EnsureDevice(context.Background(), mac, pr.Name); err != nil && h.logger != nil {
				h.logger.Error("ensure device failed", zap.String("mac", mac), zap.Error(err))
			}
		}
		if h.logger != nil {
			h.logger.Info("poi paired",
				zap.String("mac", mac),
				zap.String("name", pr.Name),
				zap.String("remote_addr", cc.RemoteAddr().String()),
			)
		}
		return cc.Write(espsync.BuildPairResponse(m.Seq, true))
	})

	syncAdapter.Register(espsync.MsgHeartbeat, func(m *espsync.Message) error {
		h.routeMetric("heartbeat")
		if boundMAC == "" {
			// 未配对先心跳：丢弃，等待配对
			return nil
		}
		hb, err := espsync.DecodeHeartbeat(m.Payload)
		if err != nil {
			return err
		}
		now := time.Now()
		h.sess.OnHeartbeat(boundMAC, now)
		if h.appm != nil {
			h.appm.HeartbeatTotal.Inc()
			h.appm.OnlineGauge.Set(float64(h.sess.OnlineCount(now)))
		}
		if h.repo != nil {
			return h.repo.TouchDeviceHeartbeat(context.Background(), boundMAC, now,
				int16(hb.Mode), int16(hb.Index), int16(hb.Brightness), int16(hb.FrameDelay), int16(hb.SyncMode))
		}
		return nil
	})

	syncAdapter.Register(espsync.MsgSyncTime, func(m *espsync.Message) error {
		h.routeMetric("sync_time")
		return cc.Write(espsync.BuildSyncTime(m.Seq, uint64(time.Now().UnixMilli())))
	})

	syncAdapter.Register(espsync.MsgUnpair, func(m *espsync.Message) error {
		h.routeMetric("unpair")
		if boundMAC != "" {
			h.sess.UnbindByMAC(boundMAC)
			boundMAC = ""
		}
		return nil
	})

	// ---- 控制端侧：ble 路由 ----
	bleHandler := func(f *ble.Frame) error {
		h.controllers.LoadOrStore(cc.ID(), cc)
		cmdLabel := fmt.Sprintf("%02X", f.Cmd)
		if h.appm != nil {
			h.appm.BLERouteTotal.WithLabelValues(cmdLabel).Inc()
		}
		frame, err := translate.TranslateFrame(f)
		if err != nil {
			if h.appm != nil {
				h.appm.TranslateTotal.WithLabelValues(cmdLabel, "error").Inc()
			}
			if h.logger != nil {
				h.logger.Warn("translate failed",
					zap.String("cmd", cmdLabel),
					zap.String("remote_addr", cc.RemoteAddr().String()),
					zap.Error(err),
				)
			}
			// 畸形/未知命令静默丢弃，不断开控制端
			return nil
		}
		if h.appm != nil {
			h.appm.TranslateTotal.WithLabelValues(cmdLabel, "ok").Inc()
		}
		h.broadcast(frame)
		if h.repo != nil {
			_ = h.repo.LogCommand(context.Background(), &models.CommandLog{
				BLECmd: int16(f.Cmd),
				POVCmd: int16(frame[1]),
				Frame:  frame,
				Source: "ble",
			})
		}
		return nil
	}
	for _, cmd := range []uint8{
		ble.CmdSetBrightness, ble.CmdSetSpeed, ble.CmdSetPattern,
		ble.CmdSetPatternSlot, ble.CmdSetPatternAll,
		ble.CmdSetSequencer, ble.CmdStartSequencer,
	} {
		bleAdapter.Register(cmd, bleHandler)
	}

	// ---- 设备应答：pov 路由（全部命令反向翻译后广播给控制端）----
	povAdapter.Register(pov.CmdSetMode, h.responseHandler)
	povAdapter.Register(pov.CmdUploadPattern, h.responseHandler)
	povAdapter.Register(pov.CmdUploadSequence, h.responseHandler)
	povAdapter.Register(pov.CmdSetBrightness, h.responseHandler)
	povAdapter.Register(pov.CmdSetFramerate, h.responseHandler)

	mux := tcpserver.NewMux(
		tcpserver.NamedAdapter{Name: "espsync", Adapter: syncAdapter},
		tcpserver.NamedAdapter{Name: "pov", Adapter: povAdapter},
		tcpserver.NamedAdapter{Name: "ble", Adapter: bleAdapter},
	)
	mux.SetServer(cc.Server())
	mux.BindToConn(cc)

	// 连接关闭时回收绑定
	go func() {
		<-cc.Done()
		h.controllers.Delete(cc.ID())
		if boundMAC != "" {
			h.sess.UnbindByMAC(boundMAC)
			if h.logger != nil {
				h.logger.Info("poi disconnected", zap.String("mac", boundMAC))
			}
		}
	}()
}

// responseHandler 设备应答帧 -> BLE 帧，转发给全部控制端连接
func (h *Handler) responseHandler(f *pov.Frame) error {
	raw := pov.Build(f.Cmd, f.Data)
	bleFrame, err := translate.TranslateResponse(raw)
	if err != nil {
		return err
	}
	h.controllers.Range(func(_, v interface{}) bool {
		if conn, ok := v.(*tcpserver.ConnContext); ok {
			_ = conn.Write(bleFrame)
		}
		return true
	})
	return nil
}

// broadcast 把下行串口帧写入全部在线 poi（镜像模式语义）
func (h *Handler) broadcast(frame []byte) {
	now := time.Now()
	for _, mac := range h.sess.OnlineMACs(now) {
		conn, ok := h.sess.GetConn(mac)
		if !ok {
			continue
		}
		w, ok := conn.(interface{ Write([]byte) error })
		if !ok {
			continue
		}
		if err := w.Write(frame); err != nil && h.logger != nil {
			h.logger.Warn("broadcast write failed", zap.String("mac", mac), zap.Error(err))
		}
	}
}

func (h *Handler) routeMetric(t string) {
	if h.appm != nil {
		h.appm.SyncRouteTotal.WithLabelValues(t).Inc()
	}
}
