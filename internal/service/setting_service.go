package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"announcements/internal/model"
	"announcements/internal/permission"
	"announcements/internal/repository"
	"announcements/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	settingNotifyOnCreate = "notifyOnCreate"
	settingNotifyOnUpdate = "notifyOnUpdate"
	settingPageSize       = "pageSize"

	settingsCacheKey = "announcements:settings"
	maxPageSize      = 50
)

// SettingService 模块配置服务
type SettingService struct {
	settingRepo repository.SettingRepository
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewSettingService 创建模块配置服务实例
func NewSettingService(settingRepo repository.SettingRepository, redisClient *redis.Client, logger *logger.Logger) *SettingService {
	return &SettingService{
		settingRepo: settingRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

// GetSettings 获取模块配置，缺失项使用默认值
func (s *SettingService) GetSettings(ctx context.Context) (model.ModuleSettings, error) {
	if data, err := s.redisClient.Get(ctx, settingsCacheKey).Bytes(); err == nil {
		var settings model.ModuleSettings
		if err := json.Unmarshal(data, &settings); err == nil {
			return settings, nil
		}
	}

	values, err := s.settingRepo.GetAll(ctx, permission.ModuleID)
	if err != nil {
		s.logger.Error("获取模块配置失败", "error", err)
		return model.ModuleSettings{}, err
	}

	settings := model.DefaultModuleSettings()
	if v, ok := values[settingNotifyOnCreate]; ok {
		settings.NotifyOnCreate = v == "1"
	}
	if v, ok := values[settingNotifyOnUpdate]; ok {
		settings.NotifyOnUpdate = v == "1"
	}
	if v, ok := values[settingPageSize]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= maxPageSize {
			settings.PageSize = n
		}
	}

	if data, err := json.Marshal(settings); err == nil {
		s.redisClient.Set(ctx, settingsCacheKey, data, 10*time.Minute)
	}
	return settings, nil
}

// SaveSettings 校验并保存模块配置
func (s *SettingService) SaveSettings(ctx context.Context, settings model.ModuleSettings) error {
	if settings.PageSize < 1 || settings.PageSize > maxPageSize {
		return fmt.Errorf("%w: page_size must be between 1 and %d", ErrInvalidSettings, maxPageSize)
	}

	values := map[string]string{
		settingNotifyOnCreate: boolSetting(settings.NotifyOnCreate),
		settingNotifyOnUpdate: boolSetting(settings.NotifyOnUpdate),
		settingPageSize:       strconv.Itoa(settings.PageSize),
	}
	for name, value := range values {
		if err := s.settingRepo.Set(ctx, permission.ModuleID, name, value); err != nil {
			s.logger.Error("保存模块配置失败", "name", name, "error", err)
			return err
		}
	}

	if err := s.redisClient.Del(ctx, settingsCacheKey).Err(); err != nil {
		s.logger.Warn("删除配置缓存失败", "error", err)
	}
	return nil
}

func boolSetting(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
