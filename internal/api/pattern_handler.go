package api

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nebulapoi/poi-gateway/internal/outbound"
	"github.com/nebulapoi/poi-gateway/internal/protocol/ble"
	"github.com/nebulapoi/poi-gateway/internal/protocol/translate"
	"github.com/nebulapoi/poi-gateway/internal/storage/models"
)

// uploadPatternReq 图案上传请求
// payload 为 base64 编码的上传负载（即 0x04 帧 data 部分）
type uploadPatternReq struct {
	Slot    int16  `json:"slot" binding:"min=0"`
	Name    string `json:"name" binding:"required"`
	Kind    string `json:"kind"`
	Payload string `json:"payload" binding:"required"`
	// Push 为 true 时同时下发到在线设备
	Push bool `json:"push"`
}

// ListPatterns 查询图案库
func (h *Handler) ListPatterns(c *gin.Context) {
	list, err := h.repo.ListPatterns(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, p := range list {
		out = append(out, gin.H{
			"slot":    p.Slot,
			"name":    p.Name,
			"kind":    p.Kind,
			"size":    len(p.Payload),
			"builtin": p.Builtin,
		})
	}
	c.JSON(http.StatusOK, gin.H{"patterns": out})
}

// UploadPattern 写入图案库，可选推送到在线设备
func (h *Handler) UploadPattern(c *gin.Context) {
	var req uploadPatternReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload must be base64"})
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = "procedural"
	}

	p := &models.Pattern{Slot: req.Slot, Name: req.Name, Kind: kind, Payload: payload}
	if err := h.repo.SavePattern(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"slot": req.Slot, "name": req.Name}
	if req.Push {
		id, err := h.enqueueTranslated(c, "", ble.CmdSetPattern, payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["command_id"] = id
	}
	c.JSON(http.StatusOK, resp)
}

// ListSequences 查询序列库
func (h *Handler) ListSequences(c *gin.Context) {
	list, err := h.repo.ListSequences(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, s := range list {
		out = append(out, gin.H{"slot": s.Slot, "name": s.Name, "size": len(s.Payload)})
	}
	c.JSON(http.StatusOK, gin.H{"sequences": out})
}

// UploadSequence 写入序列库，可选推送到在线设备
func (h *Handler) UploadSequence(c *gin.Context) {
	var req uploadPatternReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload must be base64"})
		return
	}

	s := &models.ShowSequence{Slot: req.Slot, Name: req.Name, Payload: payload}
	if err := h.repo.SaveSequence(c.Request.Context(), s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"slot": req.Slot, "name": req.Name}
	if req.Push {
		id, err := h.enqueueTranslated(c, "", ble.CmdSetSequencer, payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["command_id"] = id
	}
	c.JSON(http.StatusOK, resp)
}

// enqueueTranslated 构造 BLE 帧、执行翻译并入下行队列，返回命令 ID
func (h *Handler) enqueueTranslated(c *gin.Context, mac string, bleCmd byte, data []byte) (string, error) {
	frame, err := translate.Translate(ble.Build(bleCmd, data))
	if err != nil {
		return "", err
	}
	return h.enqueueRaw(c, mac, bleCmd, frame)
}

// enqueueRaw 将已翻译好的下行帧入队并写审计日志
func (h *Handler) enqueueRaw(c *gin.Context, mac string, bleCmd byte, frame []byte) (string, error) {
	commandID := uuid.New().String()
	if _, err := h.queue.Enqueue(c.Request.Context(), commandID, mac, bleCmd, frame,
		outbound.GetCommandPriority(bleCmd)); err != nil {
		return "", err
	}
	cmdID := commandID
	macPtr := &mac
	if mac == "" {
		macPtr = nil
	}
	if err := h.repo.LogCommand(c.Request.Context(), &models.CommandLog{
		CommandID: &cmdID,
		MAC:       macPtr,
		BLECmd:    int16(bleCmd),
		POVCmd:    int16(frame[1]),
		Frame:     frame,
		Source:    "api",
	}); err != nil && h.logger != nil {
		h.logger.Warn("command log write failed", zap.Error(err))
	}
	return commandID, nil
}
