package admin

import (
	"announcements/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册模块管理路由
func RegisterAdminRoutes(router *gin.RouterGroup, configHandler *ConfigHandler, systemHandler *handler.SystemHandler) {
	router.GET("/config", configHandler.GetConfig)
	router.POST("/config", configHandler.SaveConfig)
	router.GET("/status", systemHandler.GetSystemStatus)
	router.GET("/permissions", ListPermissions)
}
