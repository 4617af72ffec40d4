package model

// 宿主平台用户状态
const (
	UserStatusDisabled    = 0
	UserStatusEnabled     = 1
	UserStatusNeedApprove = 2
)

// User 宿主平台用户，只读取公告模块需要的字段
type User struct {
	ID          int64  `db:"id" json:"id"`
	GUID        string `db:"guid" json:"guid"`
	Username    string `db:"username" json:"username"`
	Email       string `db:"email" json:"-"`
	Status      int    `db:"status" json:"-"`
	DisplayName string `db:"display_name" json:"display_name"`
}

// IsEnabled 用户是否处于启用状态
func (u *User) IsEnabled() bool {
	return u != nil && u.Status == UserStatusEnabled
}
