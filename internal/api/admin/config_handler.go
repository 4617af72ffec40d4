package admin

import (
	"net/http"

	"announcements/internal/api/handler"
	"announcements/internal/constants"
	"announcements/internal/model"
	"announcements/internal/service"
	"announcements/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ConfigHandler 模块配置处理器
type ConfigHandler struct {
	settingService *service.SettingService
	logger         *logger.Logger
}

// NewConfigHandler 创建模块配置处理器实例
func NewConfigHandler(settingService *service.SettingService, logger *logger.Logger) *ConfigHandler {
	return &ConfigHandler{
		settingService: settingService,
		logger:         logger,
	}
}

// SaveConfigRequest 保存模块配置请求结构体
type SaveConfigRequest struct {
	NotifyOnCreate *bool `json:"notify_on_create"`
	NotifyOnUpdate *bool `json:"notify_on_update"`
	PageSize       *int  `json:"page_size"`
}

// GetConfig 获取模块配置
// @Summary 获取模块配置
// @Tags 模块管理
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/config [get]
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	settings, err := h.settingService.GetSettings(c.Request.Context())
	if err != nil {
		h.logger.Error("获取模块配置失败", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"code": 500,
			"msg":  "获取模块配置失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  constants.SuccessGet,
		"data": settings,
	})
}

// SaveConfig 保存模块配置，未提供的字段保持原值
// @Summary 保存模块配置
// @Tags 模块管理
// @Accept json
// @Produce json
// @Param body body SaveConfigRequest true "模块配置"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/config [post]
func (h *ConfigHandler) SaveConfig(c *gin.Context) {
	var req SaveConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"code": 400,
			"msg":  constants.ErrInvalidRequest,
		})
		return
	}

	ctx := c.Request.Context()
	settings, err := h.settingService.GetSettings(ctx)
	if err != nil {
		h.logger.Error("获取模块配置失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "msg": constants.ErrInternalServer})
		return
	}
	applyConfig(&settings, req)

	if err := h.settingService.SaveSettings(ctx, settings); err != nil {
		code, msg := handler.ErrorCode(err)
		if code == 500 {
			h.logger.Error("保存模块配置失败", "error", err)
		}
		c.JSON(http.StatusOK, gin.H{"code": code, "msg": msg})
		return
	}

	h.logger.Info("模块配置已更新", "user_id", c.GetInt64("user_id"), "settings", settings)
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  constants.SuccessUpdate,
		"data": settings,
	})
}

func applyConfig(settings *model.ModuleSettings, req SaveConfigRequest) {
	if req.NotifyOnCreate != nil {
		settings.NotifyOnCreate = *req.NotifyOnCreate
	}
	if req.NotifyOnUpdate != nil {
		settings.NotifyOnUpdate = *req.NotifyOnUpdate
	}
	if req.PageSize != nil {
		settings.PageSize = *req.PageSize
	}
}
