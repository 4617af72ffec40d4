package apis

import (
	"announcements/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册需要认证的API路由
func RegisterRoutes(v1 *gin.RouterGroup, announcementHandler *handler.AnnouncementHandler) {
	RegisterAnnouncementRoutes(v1, announcementHandler)
}
