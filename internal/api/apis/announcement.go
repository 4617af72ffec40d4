package apis

import (
	"announcements/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAnnouncementRoutes 注册公告相关路由
func RegisterAnnouncementRoutes(router *gin.RouterGroup, announcementHandler *handler.AnnouncementHandler) {
	spaces := router.Group("/spaces/:spaceId/announcements")
	{
		spaces.GET("", announcementHandler.ListAnnouncements)
		spaces.POST("", announcementHandler.CreateAnnouncement)
	}

	announcements := router.Group("/announcements")
	{
		announcements.GET("/search", announcementHandler.SearchAnnouncements)
		announcements.GET("/:id", announcementHandler.GetAnnouncement)
		announcements.POST("/:id/update", announcementHandler.UpdateAnnouncement)
		announcements.POST("/:id/close", announcementHandler.CloseAnnouncement)
		announcements.POST("/:id/reopen", announcementHandler.ReopenAnnouncement)
		announcements.POST("/:id/delete", announcementHandler.DeleteAnnouncement)
		announcements.POST("/:id/confirm", announcementHandler.Confirm)
		announcements.POST("/:id/reset", announcementHandler.ResetConfirmation)
		announcements.POST("/:id/reset-statistics", announcementHandler.ResetStatistics)
		announcements.GET("/:id/statistics", announcementHandler.GetStatistics)
		announcements.GET("/:id/confirmations", announcementHandler.GetConfirmations)
	}
}
