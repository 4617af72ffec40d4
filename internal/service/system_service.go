package service

import (
	"context"
	"encoding/json"
	"time"

	"announcements/internal/confirmation"
	"announcements/internal/model"
	"announcements/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// SystemStatusReader 模块状态数据来源
type SystemStatusReader interface {
	GetSystemStatus(ctx context.Context) (*model.SystemStatus, error)
}

// SystemService 模块状态服务
type SystemService struct {
	systemRepo  SystemStatusReader
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewSystemService 创建模块状态服务实例
func NewSystemService(systemRepo SystemStatusReader, redisClient *redis.Client, logger *logger.Logger) *SystemService {
	return &SystemService{
		systemRepo:  systemRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

const systemStatusCacheKey = "announcements:system:status"

// GetSystemStatus 获取模块状态
func (s *SystemService) GetSystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	cachedData, err := s.redisClient.Get(ctx, systemStatusCacheKey).Bytes()
	if err == nil {
		var status model.SystemStatus
		if err := json.Unmarshal(cachedData, &status); err == nil {
			return &status, nil
		}
	}

	return s.RefreshSystemStatus(ctx)
}

// RefreshSystemStatus 重新统计模块状态并写入缓存
func (s *SystemService) RefreshSystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	status, err := s.systemRepo.GetSystemStatus(ctx)
	if err != nil {
		s.logger.Error("获取模块状态失败", "error", err)
		return nil, err
	}
	status.ConfirmedPercent = confirmation.Percent(status.ConfirmedCount, status.TotalConfirmations)

	if data, err := json.Marshal(status); err == nil {
		s.redisClient.Set(ctx, systemStatusCacheKey, data, 5*time.Minute)
	}

	return status, nil
}
