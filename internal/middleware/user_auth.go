package middleware

import (
	"errors"
	"net/http"
	"strings"

	"announcements/internal/constants"
	"announcements/internal/model"
	"announcements/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextUserKey 上下文中保存当前用户的键
const ContextUserKey = "user"

// Claims 宿主平台签发的JWT声明
type Claims struct {
	UID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// ParseToken 校验HMAC签名并解析声明
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, err
	}
	if claims.UID <= 0 {
		return nil, errors.New("token has no uid claim")
	}
	return claims, nil
}

// UserAuth 用户认证中间件
func UserAuth(secret string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 支持 "Bearer <token>" 和裸Token两种写法
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if token == "" {
			c.JSON(http.StatusOK, gin.H{"code": 401, "msg": constants.ErrUnauthorized})
			c.Abort()
			return
		}

		claims, err := ParseToken(secret, token)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"code": 401, "msg": constants.ErrInvalidToken})
			c.Abort()
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), claims.UID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusOK, gin.H{"code": 401, "msg": constants.ErrInvalidToken})
			} else {
				c.JSON(http.StatusOK, gin.H{"code": 500, "msg": constants.ErrInternalServer})
			}
			c.Abort()
			return
		}

		if !user.IsEnabled() {
			c.JSON(http.StatusOK, gin.H{"code": 403, "msg": constants.ErrAccountDisabled})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// CurrentUser 返回认证中间件写入的用户，未认证时返回nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
