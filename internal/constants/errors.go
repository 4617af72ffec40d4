package constants

// 通用错误消息
const (
	// 认证相关错误
	ErrUnauthorized           = "未授权，请先登录"
	ErrInvalidToken           = "无效的Token"
	ErrInsufficientPermission = "权限不足"
	ErrAccountDisabled        = "账号已被禁用"

	// 参数相关错误
	ErrInvalidParams  = "参数错误"
	ErrInvalidRequest = "无效请求格式"

	// 公告相关错误
	ErrAnnouncementNotFound = "公告不存在"
	ErrInvalidAnnouncement  = "无效的公告ID"
	ErrSpaceNotFound        = "空间不存在"
	ErrInvalidSpace         = "无效的空间ID"
	ErrMessageRequired      = "公告内容不能为空"
	ErrInvalidState         = "确认状态只能是confirmed或unconfirmed"
	ErrInvalidSettings      = "模块配置无效，每页条数应在1到50之间"

	// 系统错误
	ErrInternalServer = "服务器内部错误"
)

// 成功消息
const (
	SuccessCreate = "创建成功"
	SuccessUpdate = "更新成功"
	SuccessDelete = "删除成功"
	SuccessGet    = "获取成功"
)
