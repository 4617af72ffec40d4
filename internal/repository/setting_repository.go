package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SettingRepository 宿主平台模块配置存储库
type SettingRepository interface {
	GetAll(ctx context.Context, moduleID string) (map[string]string, error)
	Set(ctx context.Context, moduleID, name, value string) error
}

type settingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository 创建配置存储库实例
func NewSettingRepository(db *sqlx.DB) SettingRepository {
	return &settingRepository{db: db}
}

// GetAll 获取模块的全部配置
func (r *settingRepository) GetAll(ctx context.Context, moduleID string) (map[string]string, error) {
	var rows []struct {
		Name  string `db:"name"`
		Value string `db:"value"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT name, value FROM setting WHERE module_id = ?`, moduleID); err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Name] = row.Value
	}
	return settings, nil
}

// Set 写入配置，(name, module_id) 已存在时覆盖
func (r *settingRepository) Set(ctx context.Context, moduleID, name, value string) error {
	query := `INSERT INTO setting (name, value, module_id) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)`
	_, err := r.db.ExecContext(ctx, query, name, value, moduleID)
	return err
}
