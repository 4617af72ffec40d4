package repository

import (
	"context"
	"strings"

	"announcements/internal/model"

	"github.com/jmoiron/sqlx"
)

// NotificationRepository 写入宿主平台通知表
type NotificationRepository interface {
	CreateMany(ctx context.Context, notifications []model.Notification) error
}

type notificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository 创建通知存储库实例
func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// CreateMany 批量写入通知
func (r *notificationRepository) CreateMany(ctx context.Context, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	placeholders := make([]string, 0, len(notifications))
	args := make([]interface{}, 0, len(notifications)*9)
	for _, n := range notifications {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, n.Class, n.UserID, n.OriginatorUserID, n.SourceClass, n.SourcePK, n.SpaceID, n.ModuleID, n.Seen, n.CreatedAt)
	}
	query := `INSERT INTO notification (class, user_id, originator_user_id, source_class, source_pk, space_id, module, seen, created_at) VALUES ` +
		strings.Join(placeholders, ", ")
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
