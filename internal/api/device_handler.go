package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nebulapoi/poi-gateway/internal/session"
	"github.com/nebulapoi/poi-gateway/internal/storage/gormrepo"
	"github.com/nebulapoi/poi-gateway/internal/storage/pg"
)

// Handler 控制面 API 处理器
type Handler struct {
	repo   *gormrepo.Repository
	queue  *pg.QueueRepo
	sess   session.SessionManager
	logger *zap.Logger
}

// NewHandler 创建控制面 API 处理器
func NewHandler(repo *gormrepo.Repository, queue *pg.QueueRepo, sess session.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, queue: queue, sess: sess, logger: logger}
}

// ListDevices 查询设备列表（附带实时在线状态）
func (h *Handler) ListDevices(c *gin.Context) {
	limit := 100
	offset := 0
	if v := c.Query("limit"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil {
			limit = vv
		}
	}
	if v := c.Query("offset"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil {
			offset = vv
		}
	}

	list, err := h.repo.ListDevices(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	out := make([]gin.H, 0, len(list))
	for _, d := range list {
		out = append(out, gin.H{
			"mac":          d.MAC,
			"name":         d.Name,
			"mode":         d.Mode,
			"slot_index":   d.SlotIndex,
			"brightness":   d.Brightness,
			"frame_delay":  d.FrameDelay,
			"sync_mode":    d.SyncMode,
			"last_seen_at": d.LastSeenAt,
			"online":       h.sess.IsOnline(d.MAC, now),
		})
	}
	c.JSON(http.StatusOK, gin.H{"devices": out})
}

// GetDevice 查询单台设备
func (h *Handler) GetDevice(c *gin.Context) {
	mac := c.Param("mac")
	d, err := h.repo.GetDeviceByMAC(c.Request.Context(), mac)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mac":          d.MAC,
		"name":         d.Name,
		"fw_ver":       d.FwVer,
		"mode":         d.Mode,
		"slot_index":   d.SlotIndex,
		"brightness":   d.Brightness,
		"frame_delay":  d.FrameDelay,
		"sync_mode":    d.SyncMode,
		"last_seen_at": d.LastSeenAt,
		"online":       h.sess.IsOnline(d.MAC, time.Now()),
	})
}
