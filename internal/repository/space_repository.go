package repository

import (
	"context"
	"database/sql"
	"errors"

	"announcements/internal/model"

	"github.com/jmoiron/sqlx"
)

// SpaceRepository 读取宿主平台的空间与成员关系
type SpaceRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Space, error)
	// ListMemberIDs 返回空间当前的有效成员（成员关系已生效且用户已启用）
	ListMemberIDs(ctx context.Context, spaceID int64) ([]int64, error)
	// ListSpaceIDsByMember 返回用户所属的空间
	ListSpaceIDsByMember(ctx context.Context, userID int64) ([]int64, error)
}

type spaceRepository struct {
	ext sqlx.ExtContext
}

// NewSpaceRepository 创建空间存储库实例
func NewSpaceRepository(db *sqlx.DB) SpaceRepository {
	return &spaceRepository{ext: db}
}

// GetByID 根据ID获取空间
func (r *spaceRepository) GetByID(ctx context.Context, id int64) (*model.Space, error) {
	var space model.Space
	query := `SELECT id, guid, name, created_by FROM space WHERE id = ?`
	if err := sqlx.GetContext(ctx, r.ext, &space, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &space, nil
}

// ListMemberIDs 获取空间成员ID
func (r *spaceRepository) ListMemberIDs(ctx context.Context, spaceID int64) ([]int64, error) {
	ids := []int64{}
	query := `
		SELECT m.user_id
		FROM space_membership m
		INNER JOIN ` + "`user`" + ` u ON u.id = m.user_id
		WHERE m.space_id = ? AND m.status = ? AND u.status = ?
		ORDER BY m.user_id
	`
	err := sqlx.SelectContext(ctx, r.ext, &ids, query, spaceID, model.MembershipStatusMember, model.UserStatusEnabled)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListSpaceIDsByMember 获取用户作为成员所在的空间ID
func (r *spaceRepository) ListSpaceIDsByMember(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	query := `SELECT space_id FROM space_membership WHERE user_id = ? AND status = ?`
	if err := sqlx.SelectContext(ctx, r.ext, &ids, query, userID, model.MembershipStatusMember); err != nil {
		return nil, err
	}
	return ids, nil
}
