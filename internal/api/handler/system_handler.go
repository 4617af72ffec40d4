package handler

import (
	"net/http"

	"announcements/internal/constants"
	"announcements/internal/service"
	"announcements/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SystemHandler 模块状态处理器
type SystemHandler struct {
	systemService *service.SystemService
	logger        *logger.Logger
}

// NewSystemHandler 创建模块状态处理器实例
func NewSystemHandler(systemService *service.SystemService, logger *logger.Logger) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
		logger:        logger,
	}
}

// GetSystemStatus 获取模块状态
// @Summary 获取模块状态
// @Description 获取公告总数、未关闭公告数、确认记录总数和整体确认率
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/status [get]
func (h *SystemHandler) GetSystemStatus(c *gin.Context) {
	status, err := h.systemService.GetSystemStatus(c.Request.Context())
	if err != nil {
		h.logger.Error("获取模块状态失败", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"code": 500,
			"msg":  "获取模块状态失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  constants.SuccessGet,
		"data": status,
	})
}
