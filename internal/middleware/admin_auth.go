package middleware

import (
	"net/http"

	"announcements/internal/constants"
	"announcements/internal/permission"

	"github.com/gin-gonic/gin"
)

// AdminAuth 模块管理权限中间件，需放在UserAuth之后
func AdminAuth(permissions *permission.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"code": 401, "msg": constants.ErrUnauthorized})
			c.Abort()
			return
		}

		ok, err := permissions.CanManageModules(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"code": 500, "msg": constants.ErrInternalServer})
			c.Abort()
			return
		}

		// 只有宿主平台管理员组的成员可以修改模块配置
		if !ok {
			c.JSON(http.StatusOK, gin.H{"code": 403, "msg": constants.ErrInsufficientPermission})
			c.Abort()
			return
		}

		c.Next()
	}
}
