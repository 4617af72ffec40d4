package repository

import (
	"context"
	"database/sql"
	"errors"

	"announcements/internal/model"

	"github.com/jmoiron/sqlx"
)

// AnnouncementRepository 公告存储库接口
type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	GetByID(ctx context.Context, id int64) (*model.Announcement, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Announcement, error)
	Update(ctx context.Context, a *model.Announcement) error
	Delete(ctx context.Context, id int64) error
	ListBySpace(ctx context.Context, spaceID int64, page, limit int) ([]model.Announcement, error)
	CountBySpace(ctx context.Context, spaceID int64) (int64, error)
}

// TransactionalAnnouncementRepository 支持事务的公告存储库
type TransactionalAnnouncementRepository interface {
	AnnouncementRepository
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	WithTx(tx *sqlx.Tx) AnnouncementRepository
}

type announcementRepository struct {
	db  *sqlx.DB
	ext sqlx.ExtContext // 当前使用的连接，事务中为tx
}

// NewAnnouncementRepository 创建公告存储库实例
func NewAnnouncementRepository(db *sqlx.DB) TransactionalAnnouncementRepository {
	return &announcementRepository{db: db, ext: db}
}

// BeginTx 开始一个新的事务
func (r *announcementRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

// WithTx 返回在事务中操作的存储库
func (r *announcementRepository) WithTx(tx *sqlx.Tx) AnnouncementRepository {
	return &announcementRepository{db: r.db, ext: tx}
}

// Create 创建公告
func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) error {
	query := `INSERT INTO announcement (guid, space_id, message, closed, created_by, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.ext.ExecContext(ctx, query,
		a.GUID, a.SpaceID, a.Message, a.Closed,
		a.CreatedBy, a.UpdatedBy, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// GetByID 根据ID获取公告
func (r *announcementRepository) GetByID(ctx context.Context, id int64) (*model.Announcement, error) {
	var a model.Announcement
	query := `SELECT id, guid, space_id, message, closed, created_by, updated_by, created_at, updated_at
		FROM announcement WHERE id = ?`
	if err := sqlx.GetContext(ctx, r.ext, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByIDs 批量获取公告，按更新时间倒序
func (r *announcementRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Announcement, error) {
	announcements := []model.Announcement{}
	if len(ids) == 0 {
		return announcements, nil
	}
	query, args, err := sqlx.In(`SELECT id, guid, space_id, message, closed, created_by, updated_by, created_at, updated_at
		FROM announcement WHERE id IN (?) ORDER BY updated_at DESC`, ids)
	if err != nil {
		return nil, err
	}
	if err := sqlx.SelectContext(ctx, r.ext, &announcements, r.ext.Rebind(query), args...); err != nil {
		return nil, err
	}
	return announcements, nil
}

// Update 更新公告内容和关闭状态
func (r *announcementRepository) Update(ctx context.Context, a *model.Announcement) error {
	query := `UPDATE announcement SET message = ?, closed = ?, updated_by = ?, updated_at = ? WHERE id = ?`
	result, err := r.ext.ExecContext(ctx, query, a.Message, a.Closed, a.UpdatedBy, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// Delete 删除公告
func (r *announcementRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ext.ExecContext(ctx, `DELETE FROM announcement WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ListBySpace 分页获取空间内的公告，未关闭的排在前面
func (r *announcementRepository) ListBySpace(ctx context.Context, spaceID int64, page, limit int) ([]model.Announcement, error) {
	announcements := []model.Announcement{}
	offset := (page - 1) * limit

	query := `
		SELECT id, guid, space_id, message, closed, created_by, updated_by, created_at, updated_at
		FROM announcement
		WHERE space_id = ?
		ORDER BY closed ASC, created_at DESC
		LIMIT ? OFFSET ?
	`
	if err := sqlx.SelectContext(ctx, r.ext, &announcements, query, spaceID, limit, offset); err != nil {
		return nil, err
	}
	return announcements, nil
}

// CountBySpace 获取空间内的公告总数
func (r *announcementRepository) CountBySpace(ctx context.Context, spaceID int64) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.ext, &count, `SELECT COUNT(*) FROM announcement WHERE space_id = ?`, spaceID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// requireAffected 没有行被修改时返回ErrNotFound
func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
