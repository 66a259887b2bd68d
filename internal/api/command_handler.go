package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nebulapoi/poi-gateway/internal/protocol/ble"
	"github.com/nebulapoi/poi-gateway/internal/protocol/translate"
)

// postCommandReq 控制命令请求
// device 为空表示广播到全部在线设备
type postCommandReq struct {
	Device  string `json:"device"`
	Command string `json:"command" binding:"required"`
	Value   *int   `json:"value"`
}

var errValueRequired = errors.New("value is required for this command")

// buildControlFrame 把命令名映射为 BLE 帧
func buildControlFrame(req *postCommandReq) ([]byte, byte, error) {
	var (
		cmd  byte
		data []byte
	)
	switch req.Command {
	case "brightness":
		cmd = ble.CmdSetBrightness
	case "speed":
		cmd = ble.CmdSetSpeed
	case "slot":
		cmd = ble.CmdSetPatternSlot
	case "cycle":
		cmd = ble.CmdSetPatternAll
	case "sequence":
		cmd = ble.CmdStartSequencer
	default:
		return nil, 0, errors.New("unknown command: " + req.Command)
	}

	switch req.Command {
	case "brightness", "speed":
		if req.Value == nil {
			return nil, 0, errValueRequired
		}
		if *req.Value < 0 || *req.Value > 255 {
			return nil, 0, errors.New("value out of range [0,255]")
		}
		data = []byte{byte(*req.Value)}
	case "slot", "sequence":
		// 可省略，省略时设备端回落到 0 号槽位
		if req.Value != nil {
			if *req.Value < 0 || *req.Value > 255 {
				return nil, 0, errors.New("value out of range [0,255]")
			}
			data = []byte{byte(*req.Value)}
		}
	}
	return ble.Build(cmd, data), cmd, nil
}

// PostCommand 下发控制命令（亮度/速度/槽位/轮播/序列启动）
func (h *Handler) PostCommand(c *gin.Context) {
	var req postCommandReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	raw, bleCmd, err := buildControlFrame(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// 目标在线性只做提示，不阻断下发：队列会按重试策略等待设备上线
	online := true
	if req.Device != "" {
		online = h.sess.IsOnline(req.Device, time.Now())
	}

	frame, err := translate.Translate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	commandID, err := h.enqueueRaw(c, req.Device, bleCmd, frame)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"command_id": commandID,
		"device":     req.Device,
		"online":     online,
	})
}
