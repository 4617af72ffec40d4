package scheduler

import (
	"context"
	"time"

	"announcements/internal/model"
	"announcements/pkg/logger"
)

// StatusRefresher 重新统计模块状态
type StatusRefresher interface {
	RefreshSystemStatus(ctx context.Context) (*model.SystemStatus, error)
}

// StatusScheduler 定时刷新模块状态缓存，避免管理页面请求时临时统计
type StatusScheduler struct {
	refresher StatusRefresher
	interval  time.Duration
	logger    *logger.Logger
	quit      chan struct{}
	done      chan struct{}
}

// NewStatusScheduler 创建模块状态调度器实例
func NewStatusScheduler(refresher StatusRefresher, interval time.Duration, logger *logger.Logger) *StatusScheduler {
	return &StatusScheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start 启动调度器
func (s *StatusScheduler) Start() {
	go s.run()
	s.logger.Info("模块状态调度器启动", "interval", s.interval)
}

// Stop 停止调度器并等待当前任务结束
func (s *StatusScheduler) Stop() {
	close(s.quit)
	<-s.done
	s.logger.Info("模块状态调度器停止")
}

func (s *StatusScheduler) run() {
	defer close(s.done)

	// 立即运行一次
	s.refresh()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh()
		case <-s.quit:
			return
		}
	}
}

// refresh 刷新一次模块状态
func (s *StatusScheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := s.refresher.RefreshSystemStatus(ctx)
	if err != nil {
		s.logger.Error("模块状态刷新失败", "error", err)
		return
	}
	s.logger.Debug("模块状态刷新完成", "announcements", status.TotalAnnouncements, "confirmations", status.TotalConfirmations)
}
