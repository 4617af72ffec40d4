package repository

import (
	"context"
	"database/sql"
	"errors"

	"announcements/internal/model"

	"github.com/jmoiron/sqlx"
)

// UserRepository 宿主平台用户只读存储库
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository 创建用户存储库实例
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userSelect = `
	SELECT u.id, u.guid, u.username, u.email, u.status,
		TRIM(CONCAT_WS(' ', p.firstname, p.lastname)) AS display_name
	FROM ` + "`user`" + ` u
	LEFT JOIN profile p ON p.user_id = u.id
`

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	if err := r.db.GetContext(ctx, user, userSelect+` WHERE u.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByIDs 批量获取用户
func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	users := []model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	query, args, err := sqlx.In(userSelect+` WHERE u.id IN (?) ORDER BY u.id`, ids)
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return users, nil
}
