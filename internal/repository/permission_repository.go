package repository

import (
	"context"
	"database/sql"
	"errors"

	"announcements/internal/model"
	"announcements/internal/permission"

	"github.com/jmoiron/sqlx"
)

// PermissionRepository 从宿主平台读取角色组与权限覆盖配置，实现 permission.Store
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository 创建权限存储库实例
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

var _ permission.Store = (*PermissionRepository)(nil)

// GetSpaceGroup 获取用户在空间中的角色组，空间创建者为owner
func (r *PermissionRepository) GetSpaceGroup(ctx context.Context, spaceID, userID int64) (model.SpaceGroup, error) {
	var row struct {
		CreatedBy int64          `db:"created_by"`
		GroupID   sql.NullString `db:"group_id"`
	}
	query := `
		SELECT s.created_by, m.group_id
		FROM space s
		LEFT JOIN space_membership m ON m.space_id = s.id AND m.user_id = ? AND m.status = ?
		WHERE s.id = ?
	`
	if err := r.db.GetContext(ctx, &row, query, userID, model.MembershipStatusMember, spaceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GroupUser, nil
		}
		return "", err
	}

	if row.CreatedBy == userID {
		return model.GroupOwner, nil
	}
	if !row.GroupID.Valid {
		return model.GroupUser, nil
	}
	switch g := model.SpaceGroup(row.GroupID.String); g {
	case model.GroupAdmin, model.GroupModerator, model.GroupMember:
		return g, nil
	default:
		return model.GroupMember, nil
	}
}

// GetOverride 获取空间对角色组的权限覆盖配置
func (r *PermissionRepository) GetOverride(ctx context.Context, spaceID int64, group model.SpaceGroup, permissionID string) (int, bool, error) {
	var state int
	query := `
		SELECT p.state
		FROM contentcontainer_permission p
		INNER JOIN space s ON s.contentcontainer_id = p.contentcontainer_id
		WHERE s.id = ? AND p.group_id = ? AND p.permission_id = ? AND p.module_id = ?
	`
	err := r.db.GetContext(ctx, &state, query, spaceID, string(group), permissionID, permission.ModuleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return state, true, nil
}

// IsSystemAdmin 用户是否属于管理员组
func (r *PermissionRepository) IsSystemAdmin(ctx context.Context, userID int64) (bool, error) {
	var count int64
	query := `
		SELECT COUNT(*)
		FROM group_user gu
		INNER JOIN ` + "`group`" + ` g ON g.id = gu.group_id
		WHERE gu.user_id = ? AND g.is_admin_group = 1
	`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return false, err
	}
	return count > 0, nil
}
