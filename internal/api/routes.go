package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nebulapoi/poi-gateway/internal/api/middleware"
	"github.com/nebulapoi/poi-gateway/internal/session"
	"github.com/nebulapoi/poi-gateway/internal/storage/gormrepo"
	"github.com/nebulapoi/poi-gateway/internal/storage/pg"
)

// RegisterRoutes 注册控制面路由
func RegisterRoutes(
	r *gin.Engine,
	repo *gormrepo.Repository,
	queue *pg.QueueRepo,
	sess session.SessionManager,
	authCfg middleware.AuthConfig,
	logger *zap.Logger,
) {
	if r == nil || repo == nil || sess == nil {
		return
	}

	handler := NewHandler(repo, queue, sess, logger)

	api := r.Group("/api")
	if authCfg.Enabled {
		api.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	// 设备
	api.GET("/devices", handler.ListDevices)
	api.GET("/devices/:mac", handler.GetDevice)

	// 图案库与序列
	api.GET("/patterns", handler.ListPatterns)
	api.POST("/patterns", handler.UploadPattern)
	api.GET("/sequences", handler.ListSequences)
	api.POST("/sequences", handler.UploadSequence)

	// 控制命令
	api.POST("/commands", handler.PostCommand)

	logger.Info("api routes registered", zap.Int("endpoints", 7))
}
