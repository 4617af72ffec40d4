package handler

import (
	"errors"
	"net/http"
	"strconv"

	"announcements/internal/constants"
	"announcements/internal/middleware"
	"announcements/internal/model"
	"announcements/internal/service"
	"announcements/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AnnouncementHandler 公告处理器
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
	logger              *logger.Logger
}

// NewAnnouncementHandler 创建公告处理器实例
func NewAnnouncementHandler(announcementService *service.AnnouncementService, logger *logger.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementService: announcementService,
		logger:              logger,
	}
}

// MessageRequest 创建或修改公告的请求体
type MessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// ListAnnouncements 获取空间公告列表
// @Summary 获取空间公告列表
// @Description 空间成员分页获取公告，未关闭的公告排在前面
// @Tags 公告
// @Produce json
// @Param spaceId path int true "空间ID"
// @Param page query int false "页码，默认1"
// @Param limit query int false "每页条数，默认使用模块配置"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/spaces/{spaceId}/announcements [get]
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	spaceID, ok := h.spaceID(c)
	if !ok {
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		limit = 0
	}

	result, err := h.announcementService.List(c.Request.Context(), middleware.CurrentUser(c), spaceID, page, limit)
	if err != nil {
		h.fail(c, err, "获取公告列表失败")
		return
	}

	h.ok(c, constants.SuccessGet, result)
}

// CreateAnnouncement 发布公告
// @Summary 发布公告
// @Description 需要创建公告权限，发布后为全部空间成员创建确认记录
// @Tags 公告
// @Accept json
// @Produce json
// @Param spaceId path int true "空间ID"
// @Param body body MessageRequest true "公告内容"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/spaces/{spaceId}/announcements [post]
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	spaceID, ok := h.spaceID(c)
	if !ok {
		return
	}
	req, ok := h.bindMessage(c)
	if !ok {
		return
	}

	a, err := h.announcementService.Create(c.Request.Context(), middleware.CurrentUser(c), spaceID, req.Message)
	if err != nil {
		h.fail(c, err, "发布公告失败")
		return
	}

	h.ok(c, constants.SuccessCreate, a)
}

// GetAnnouncement 获取公告详情
// @Summary 获取公告详情
// @Description 返回公告、当前用户的确认状态和可执行的操作，有权限时附带统计
// @Tags 公告
// @Produce json
// @Param id path int true "公告ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/announcements/{id} [get]
func (h *AnnouncementHandler) GetAnnouncement(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}
	h.respondDetail(c, id, constants.SuccessGet)
}

// UpdateAnnouncement 修改公告内容
// @Summary 修改公告内容
// @Tags 公告
// @Accept json
// @Produce json
// @Param id path int true "公告ID"
// @Param body body MessageRequest true "公告内容"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/announcements/{id}/update [post]
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}
	req, ok := h.bindMessage(c)
	if !ok {
		return
	}

	a, err := h.announcementService.Update(c.Request.Context(), middleware.CurrentUser(c), id, req.Message)
	if err != nil {
		h.fail(c, err, "更新公告失败")
		return
	}

	h.ok(c, constants.SuccessUpdate, a)
}

// CloseAnnouncement 关闭公告
// @Router /api/v1/announcements/{id}/close [post]
func (h *AnnouncementHandler) CloseAnnouncement(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}

	a, err := h.announcementService.Close(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err, "关闭公告失败")
		return
	}

	h.ok(c, constants.SuccessUpdate, a)
}

// ReopenAnnouncement 重新打开公告
// @Router /api/v1/announcements/{id}/reopen [post]
func (h *AnnouncementHandler) ReopenAnnouncement(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}

	a, err := h.announcementService.Reopen(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err, "重新打开公告失败")
		return
	}

	h.ok(c, constants.SuccessUpdate, a)
}

// DeleteAnnouncement 删除公告
// @Router /api/v1/announcements/{id}/delete [post]
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}

	if err := h.announcementService.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.fail(c, err, "删除公告失败")
		return
	}

	h.ok(c, constants.SuccessDelete, nil)
}

// Confirm 确认已读
// @Summary 确认已读
// @Description 公告关闭或已确认时不做修改，返回操作后的公告详情
// @Tags 公告
// @Produce json
// @Param id path int true "公告ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/announcements/{id}/confirm [post]
func (h *AnnouncementHandler) Confirm(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}

	if err := h.announcementService.Confirm(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.fail(c, err, "确认公告失败")
		return
	}

	h.respondDetail(c, id, constants.SuccessUpdate)
}

// ResetConfirmation 撤销自己的确认
// @Router /api/v1/announcements/{id}/reset [post]
func (h *AnnouncementHandler) ResetConfirmation(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}

	if err := h.announcementService.ResetConfirmation(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.fail(c, err, "撤销确认失败")
		return
	}

	h.respondDetail(c, id, constants.SuccessUpdate)
}

// ResetStatistics 重置全部确认状态
// @Router /api/v1/announcements/{id}/reset-statistics [post]
func (h *AnnouncementHandler) ResetStatistics(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}

	if err := h.announcementService.ResetStatistics(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.fail(c, err, "重置统计失败")
		return
	}

	h.respondDetail(c, id, constants.SuccessUpdate)
}

// GetStatistics 获取阅读统计
// @Router /api/v1/announcements/{id}/statistics [get]
func (h *AnnouncementHandler) GetStatistics(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}

	stats, err := h.announcementService.Statistics(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err, "获取统计失败")
		return
	}

	h.ok(c, constants.SuccessGet, stats)
}

// GetConfirmations 按确认状态获取用户列表
// @Param state query string true "confirmed 或 unconfirmed"
// @Router /api/v1/announcements/{id}/confirmations [get]
func (h *AnnouncementHandler) GetConfirmations(c *gin.Context) {
	id, ok := h.announcementID(c)
	if !ok {
		return
	}
	state := model.ConfirmationState(c.DefaultQuery("state", string(model.StateConfirmed)))

	users, err := h.announcementService.Confirmations(c.Request.Context(), middleware.CurrentUser(c), id, state)
	if err != nil {
		h.fail(c, err, "获取确认用户失败")
		return
	}

	h.ok(c, constants.SuccessGet, gin.H{"state": state, "users": users})
}

// SearchAnnouncements 搜索公告
// @Param q query string true "关键词"
// @Router /api/v1/announcements/search [get]
func (h *AnnouncementHandler) SearchAnnouncements(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidParams})
		return
	}

	items, err := h.announcementService.Search(c.Request.Context(), middleware.CurrentUser(c), query)
	if err != nil {
		h.fail(c, err, "搜索公告失败")
		return
	}

	h.ok(c, constants.SuccessGet, items)
}

func (h *AnnouncementHandler) respondDetail(c *gin.Context, id int64, msg string) {
	detail, err := h.announcementService.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err, "获取公告详情失败")
		return
	}
	h.ok(c, msg, detail)
}

func (h *AnnouncementHandler) spaceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("spaceId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidSpace})
		return 0, false
	}
	return id, true
}

func (h *AnnouncementHandler) announcementID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrInvalidAnnouncement})
		return 0, false
	}
	return id, true
}

func (h *AnnouncementHandler) bindMessage(c *gin.Context) (*MessageRequest, bool) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "msg": constants.ErrMessageRequired})
		return nil, false
	}
	return &req, true
}

func (h *AnnouncementHandler) ok(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  msg,
		"data": data,
	})
}

// fail 将服务层错误映射为响应码，未知错误记录日志后返回500
func (h *AnnouncementHandler) fail(c *gin.Context, err error, msg string) {
	code, text := ErrorCode(err)
	if code == 500 {
		h.logger.Error(msg, "path", c.FullPath(), "error", err)
		text = msg
	}
	c.JSON(http.StatusOK, gin.H{"code": code, "msg": text})
}

// ErrorCode 返回服务层错误对应的响应码和提示
func ErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrAnnouncementNotFound):
		return 404, constants.ErrAnnouncementNotFound
	case errors.Is(err, service.ErrSpaceNotFound):
		return 404, constants.ErrSpaceNotFound
	case errors.Is(err, service.ErrForbidden):
		return 403, constants.ErrInsufficientPermission
	case errors.Is(err, service.ErrInvalidMessage):
		return 400, constants.ErrMessageRequired
	case errors.Is(err, service.ErrInvalidState):
		return 400, constants.ErrInvalidState
	case errors.Is(err, service.ErrInvalidSettings):
		return 400, constants.ErrInvalidSettings
	default:
		return 500, constants.ErrInternalServer
	}
}
