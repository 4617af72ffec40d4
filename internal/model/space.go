package model

// 空间成员关系状态，与宿主平台一致
const (
	MembershipStatusInvited   = 1
	MembershipStatusApplicant = 2
	MembershipStatusMember    = 3
)

// SpaceGroup 用户在空间中的角色组
type SpaceGroup string

const (
	GroupOwner     SpaceGroup = "owner"
	GroupAdmin     SpaceGroup = "admin"
	GroupModerator SpaceGroup = "moderator"
	GroupMember    SpaceGroup = "member"
	GroupUser      SpaceGroup = "user" // 已登录但不是空间成员
)

// Space 空间（公告所属的内容容器）
type Space struct {
	ID        int64  `db:"id" json:"id"`
	GUID      string `db:"guid" json:"guid"`
	Name      string `db:"name" json:"name"`
	CreatedBy int64  `db:"created_by" json:"created_by"`
}
