package service

import "errors"

// 服务层错误，由处理器映射为响应码
var (
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrSpaceNotFound        = errors.New("space not found")
	ErrForbidden            = errors.New("permission denied")
	ErrInvalidMessage       = errors.New("message is required")
	ErrInvalidSettings      = errors.New("invalid module settings")
	ErrInvalidState         = errors.New("invalid confirmation state")
)
