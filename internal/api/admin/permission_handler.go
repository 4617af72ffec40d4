package admin

import (
	"net/http"

	"announcements/internal/constants"
	"announcements/internal/permission"

	"github.com/gin-gonic/gin"
)

// ListPermissions 列出模块提供的空间权限及默认角色组
// @Summary 获取模块权限列表
// @Tags 模块管理
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/permissions [get]
func ListPermissions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"msg":  constants.SuccessGet,
		"data": permission.All(),
	})
}
