// Package permission 描述公告模块的空间权限，并按空间角色组判定用户权限。
package permission

import (
	"context"
	"fmt"

	"announcements/internal/model"
)

// ModuleID 公告模块标识
const ModuleID = "announcements"

// Permission 权限描述
type Permission struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// DefaultAllowedGroups 没有覆盖配置时允许的角色组
	DefaultAllowedGroups []model.SpaceGroup `json:"default_allowed_groups"`

	// FixedGroups 不允许通过空间配置修改的角色组
	FixedGroups []model.SpaceGroup `json:"fixed_groups"`
}

// CreateAnnouncement 允许创建和编辑公告
var CreateAnnouncement = Permission{
	ID:          "humhub\\modules\\announcements\\permissions\\CreateAnnouncement",
	Title:       "Create Announcement",
	Description: "Allows the user to create/edit an Announcement",
	DefaultAllowedGroups: []model.SpaceGroup{
		model.GroupOwner,
		model.GroupAdmin,
		model.GroupModerator,
	},
	FixedGroups: []model.SpaceGroup{model.GroupUser},
}

// ViewStatistics 允许查看阅读统计
var ViewStatistics = Permission{
	ID:          "humhub\\modules\\announcements\\permissions\\ViewStatistics",
	Title:       "View Statistics",
	Description: "Allows the user to view the read statistics of an Announcement",
	DefaultAllowedGroups: []model.SpaceGroup{
		model.GroupOwner,
		model.GroupAdmin,
		model.GroupModerator,
	},
	FixedGroups: []model.SpaceGroup{model.GroupUser},
}

// All 模块提供的全部权限
func All() []Permission {
	return []Permission{CreateAnnouncement, ViewStatistics}
}

// IsFixed 角色组的权限是否固定
func (p Permission) IsFixed(group model.SpaceGroup) bool {
	for _, g := range p.FixedGroups {
		if g == group {
			return true
		}
	}
	return false
}

// AllowedByDefault 角色组默认是否拥有该权限
func (p Permission) AllowedByDefault(group model.SpaceGroup) bool {
	for _, g := range p.DefaultAllowedGroups {
		if g == group {
			return true
		}
	}
	return false
}

// 覆盖配置中的状态值
const (
	StateDeny  = 0
	StateAllow = 1
)

// Store 权限判定所需的数据来源
type Store interface {
	// GetSpaceGroup 返回用户在空间中的角色组
	GetSpaceGroup(ctx context.Context, spaceID, userID int64) (model.SpaceGroup, error)
	// GetOverride 返回空间对角色组的覆盖配置，ok为false表示没有配置
	GetOverride(ctx context.Context, spaceID int64, group model.SpaceGroup, permissionID string) (state int, ok bool, err error)
	// IsSystemAdmin 用户是否属于宿主平台的管理员组
	IsSystemAdmin(ctx context.Context, userID int64) (bool, error)
}

// Manager 权限管理器
type Manager struct {
	store Store
}

// NewManager 创建权限管理器
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Can 判断用户在空间中是否拥有权限
func (m *Manager) Can(ctx context.Context, spaceID, userID int64, p Permission) (bool, error) {
	group, err := m.store.GetSpaceGroup(ctx, spaceID, userID)
	if err != nil {
		return false, fmt.Errorf("get space group: %w", err)
	}
	return m.CanGroup(ctx, spaceID, group, p)
}

// CanGroup 判断角色组在空间中是否拥有权限
func (m *Manager) CanGroup(ctx context.Context, spaceID int64, group model.SpaceGroup, p Permission) (bool, error) {
	if p.IsFixed(group) {
		return p.AllowedByDefault(group), nil
	}

	state, ok, err := m.store.GetOverride(ctx, spaceID, group, p.ID)
	if err != nil {
		return false, fmt.Errorf("get permission override: %w", err)
	}
	if ok {
		return state == StateAllow, nil
	}
	return p.AllowedByDefault(group), nil
}

// IsMember 用户是否为空间成员（含所有者）
func (m *Manager) IsMember(ctx context.Context, spaceID, userID int64) (bool, error) {
	group, err := m.store.GetSpaceGroup(ctx, spaceID, userID)
	if err != nil {
		return false, fmt.Errorf("get space group: %w", err)
	}
	return group != model.GroupUser, nil
}

// CanManageModules 用户是否可以修改模块配置
func (m *Manager) CanManageModules(ctx context.Context, userID int64) (bool, error) {
	return m.store.IsSystemAdmin(ctx, userID)
}
