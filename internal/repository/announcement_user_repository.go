package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"announcements/internal/model"

	"github.com/jmoiron/sqlx"
)

// AnnouncementUserRepository 公告确认记录存储库接口
type AnnouncementUserRepository interface {
	ListByAnnouncement(ctx context.Context, announcementID int64) ([]model.AnnouncementUser, error)
	ListByState(ctx context.Context, announcementID int64, state model.ConfirmationState) ([]model.AnnouncementUser, error)
	FindByUser(ctx context.Context, announcementID, userID int64) (*model.AnnouncementUser, error)
	CreateMany(ctx context.Context, announcementID int64, userIDs []int64) error
	DeleteByIDs(ctx context.Context, ids []int64) error
	DeleteByAnnouncement(ctx context.Context, announcementID int64) error
	SetConfirmed(ctx context.Context, id int64, confirmed bool) error
	ResetConfirmed(ctx context.Context, announcementID int64) (int64, error)
	CountStatistics(ctx context.Context, announcementID int64) (model.Statistics, error)
}

// TransactionalAnnouncementUserRepository 支持事务的确认记录存储库
type TransactionalAnnouncementUserRepository interface {
	AnnouncementUserRepository
	WithTx(tx *sqlx.Tx) AnnouncementUserRepository
}

type announcementUserRepository struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

// NewAnnouncementUserRepository 创建确认记录存储库实例
func NewAnnouncementUserRepository(db *sqlx.DB) TransactionalAnnouncementUserRepository {
	return &announcementUserRepository{db: db, ext: db}
}

// WithTx 返回在事务中操作的存储库
func (r *announcementUserRepository) WithTx(tx *sqlx.Tx) AnnouncementUserRepository {
	return &announcementUserRepository{db: r.db, ext: tx}
}

const announcementUserColumns = `id, announcement_id, user_id, confirmed, created_at, updated_at`

// ListByAnnouncement 获取公告的全部确认记录
func (r *announcementUserRepository) ListByAnnouncement(ctx context.Context, announcementID int64) ([]model.AnnouncementUser, error) {
	records := []model.AnnouncementUser{}
	query := `SELECT ` + announcementUserColumns + ` FROM announcement_user WHERE announcement_id = ? ORDER BY id`
	if err := sqlx.SelectContext(ctx, r.ext, &records, query, announcementID); err != nil {
		return nil, err
	}
	return records, nil
}

// ListByState 按确认状态获取记录
func (r *announcementUserRepository) ListByState(ctx context.Context, announcementID int64, state model.ConfirmationState) ([]model.AnnouncementUser, error) {
	records := []model.AnnouncementUser{}
	confirmed := state == model.StateConfirmed
	query := `SELECT ` + announcementUserColumns + ` FROM announcement_user WHERE announcement_id = ? AND confirmed = ? ORDER BY id`
	if err := sqlx.SelectContext(ctx, r.ext, &records, query, announcementID, confirmed); err != nil {
		return nil, err
	}
	return records, nil
}

// FindByUser 获取用户对公告的确认记录
func (r *announcementUserRepository) FindByUser(ctx context.Context, announcementID, userID int64) (*model.AnnouncementUser, error) {
	var record model.AnnouncementUser
	query := `SELECT ` + announcementUserColumns + ` FROM announcement_user WHERE announcement_id = ? AND user_id = ?`
	if err := sqlx.GetContext(ctx, r.ext, &record, query, announcementID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// CreateMany 为成员批量创建未确认记录，已存在的(announcement_id, user_id)被忽略
func (r *announcementUserRepository) CreateMany(ctx context.Context, announcementID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := time.Now()
	placeholders := make([]string, 0, len(userIDs))
	args := make([]interface{}, 0, len(userIDs)*4)
	for _, userID := range userIDs {
		placeholders = append(placeholders, "(?, ?, 0, ?, ?)")
		args = append(args, announcementID, userID, now, now)
	}
	query := `INSERT IGNORE INTO announcement_user (announcement_id, user_id, confirmed, created_at, updated_at) VALUES ` +
		strings.Join(placeholders, ", ")
	_, err := r.ext.ExecContext(ctx, query, args...)
	return err
}

// DeleteByIDs 批量删除记录
func (r *announcementUserRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM announcement_user WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	_, err = r.ext.ExecContext(ctx, r.ext.Rebind(query), args...)
	return err
}

// DeleteByAnnouncement 删除公告的全部确认记录
func (r *announcementUserRepository) DeleteByAnnouncement(ctx context.Context, announcementID int64) error {
	_, err := r.ext.ExecContext(ctx, `DELETE FROM announcement_user WHERE announcement_id = ?`, announcementID)
	return err
}

// SetConfirmed 设置单条记录的确认状态
func (r *announcementUserRepository) SetConfirmed(ctx context.Context, id int64, confirmed bool) error {
	result, err := r.ext.ExecContext(ctx,
		`UPDATE announcement_user SET confirmed = ?, updated_at = ? WHERE id = ?`,
		confirmed, time.Now(), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// ResetConfirmed 将公告所有已确认记录改为未确认，返回受影响的行数
func (r *announcementUserRepository) ResetConfirmed(ctx context.Context, announcementID int64) (int64, error) {
	result, err := r.ext.ExecContext(ctx,
		`UPDATE announcement_user SET confirmed = 0, updated_at = ? WHERE announcement_id = ? AND confirmed = 1`,
		time.Now(), announcementID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountStatistics 统计公告的确认情况
func (r *announcementUserRepository) CountStatistics(ctx context.Context, announcementID int64) (model.Statistics, error) {
	var row struct {
		Total       int64 `db:"total"`
		Confirmed   int64 `db:"confirmed"`
		Unconfirmed int64 `db:"unconfirmed"`
	}
	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(confirmed = 1), 0) AS confirmed,
			COALESCE(SUM(confirmed = 0), 0) AS unconfirmed
		FROM announcement_user
		WHERE announcement_id = ?
	`
	if err := sqlx.GetContext(ctx, r.ext, &row, query, announcementID); err != nil {
		return model.Statistics{}, err
	}
	return model.Statistics{
		Confirmed:   row.Confirmed,
		Unconfirmed: row.Unconfirmed,
		Total:       row.Total,
	}, nil
}
