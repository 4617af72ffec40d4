package repository

import (
	"context"

	"announcements/internal/model"

	"github.com/jmoiron/sqlx"
)

// SystemRepository 模块状态存储库
type SystemRepository struct {
	db *sqlx.DB
}

// NewSystemRepository 创建模块状态存储库实例
func NewSystemRepository(db *sqlx.DB) *SystemRepository {
	return &SystemRepository{db: db}
}

// GetSystemStatus 获取公告与确认记录的总体数量
func (r *SystemRepository) GetSystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	var status model.SystemStatus

	err := r.db.GetContext(ctx, &status, `
		SELECT
			COUNT(*) AS total_announcements,
			COALESCE(SUM(closed = 0), 0) AS open_announcements
		FROM announcement
	`)
	if err != nil {
		return nil, err
	}

	var confirmations struct {
		Total     int64 `db:"total"`
		Confirmed int64 `db:"confirmed"`
	}
	err = r.db.GetContext(ctx, &confirmations, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(confirmed = 1), 0) AS confirmed
		FROM announcement_user
	`)
	if err != nil {
		return nil, err
	}

	status.TotalConfirmations = confirmations.Total
	status.ConfirmedCount = confirmations.Confirmed
	return &status, nil
}
