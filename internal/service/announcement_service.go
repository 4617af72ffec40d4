package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"announcements/internal/confirmation"
	"announcements/internal/model"
	"announcements/internal/permission"
	"announcements/internal/repository"
	"announcements/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	detailCacheTTL = 5 * time.Minute
	listCacheTTL   = 5 * time.Minute
	statsCacheTTL  = time.Minute
)

// AnnouncementService 公告服务
//
// 每次保存公告后都会在同一事务内与空间成员对账，
// 提交成功后再刷新缓存、更新搜索索引并发送通知。
type AnnouncementService struct {
	store       repository.Store
	spaceRepo   repository.SpaceRepository
	userRepo    repository.UserRepository
	permissions *permission.Manager
	notifier    Notifier
	indexer     SearchIndexer
	settings    SettingsProvider
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewAnnouncementService 创建公告服务实例
func NewAnnouncementService(
	store repository.Store,
	spaceRepo repository.SpaceRepository,
	userRepo repository.UserRepository,
	permissions *permission.Manager,
	notifier Notifier,
	indexer SearchIndexer,
	settings SettingsProvider,
	redisClient *redis.Client,
	logger *logger.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		store:       store,
		spaceRepo:   spaceRepo,
		userRepo:    userRepo,
		permissions: permissions,
		notifier:    notifier,
		indexer:     indexer,
		settings:    settings,
		redisClient: redisClient,
		logger:      logger,
	}
}

func detailCacheKey(id int64) string {
	return fmt.Sprintf("announcements:detail:%d", id)
}

func statsCacheKey(id int64) string {
	return fmt.Sprintf("announcements:stats:%d", id)
}

func listCacheKey(spaceID int64, page, limit int) string {
	return fmt.Sprintf("announcements:list:%d:%d:%d", spaceID, page, limit)
}

// Create 在空间中发布公告
func (s *AnnouncementService) Create(ctx context.Context, actor *model.User, spaceID int64, message string) (*model.Announcement, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	if _, err := s.spaceRepo.GetByID(ctx, spaceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}
	if err := s.require(ctx, spaceID, actor, permission.CreateAnnouncement); err != nil {
		return nil, err
	}
	message, err := validateMessage(message)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	a := &model.Announcement{
		GUID:      uuid.NewString(),
		SpaceID:   spaceID,
		Message:   message,
		CreatedBy: actor.ID,
		UpdatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	recipients, err := s.save(ctx, a, true)
	if err != nil {
		s.logger.Error("创建公告失败", "space_id", spaceID, "error", err)
		return nil, err
	}
	s.afterSave(ctx, actor, a, model.NotificationCreated, recipients)

	s.logger.Info("公告已创建", "announcement_id", a.ID, "space_id", spaceID, "user_id", actor.ID)
	return a, nil
}

// Update 修改公告内容
func (s *AnnouncementService) Update(ctx context.Context, actor *model.User, id int64, message string) (*model.Announcement, error) {
	a, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	message, err = validateMessage(message)
	if err != nil {
		return nil, err
	}

	a.Message = message
	a.UpdatedBy = actor.ID
	a.UpdatedAt = time.Now()

	recipients, err := s.save(ctx, a, false)
	if err != nil {
		s.logger.Error("更新公告失败", "announcement_id", id, "error", err)
		return nil, err
	}
	s.afterSave(ctx, actor, a, model.NotificationUpdated, recipients)
	return a, nil
}

// Close 关闭公告，关闭后确认状态不再变化
func (s *AnnouncementService) Close(ctx context.Context, actor *model.User, id int64) (*model.Announcement, error) {
	return s.setClosed(ctx, actor, id, true)
}

// Reopen 重新打开公告，已有的确认状态保持不变
func (s *AnnouncementService) Reopen(ctx context.Context, actor *model.User, id int64) (*model.Announcement, error) {
	return s.setClosed(ctx, actor, id, false)
}

func (s *AnnouncementService) setClosed(ctx context.Context, actor *model.User, id int64, closed bool) (*model.Announcement, error) {
	a, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	a.Closed = closed
	a.UpdatedBy = actor.ID
	a.UpdatedAt = time.Now()

	if _, err := s.save(ctx, a, false); err != nil {
		s.logger.Error("修改公告状态失败", "announcement_id", id, "closed", closed, "error", err)
		return nil, err
	}
	s.invalidate(ctx, a)
	return a, nil
}

// Delete 删除公告及其全部确认记录
func (s *AnnouncementService) Delete(ctx context.Context, actor *model.User, id int64) error {
	a, err := s.editable(ctx, actor, id)
	if err != nil {
		return err
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Confirmations().DeleteByAnnouncement(ctx, a.ID); err != nil {
			return fmt.Errorf("delete confirmations: %w", err)
		}
		return tx.Announcements().Delete(ctx, a.ID)
	})
	if err != nil {
		s.logger.Error("删除公告失败", "announcement_id", id, "error", err)
		return err
	}

	s.invalidate(ctx, a)
	if err := s.indexer.Remove(ctx, a.ID); err != nil {
		s.logger.Warn("删除搜索索引失败", "announcement_id", a.ID, "error", err)
	}
	s.logger.Info("公告已删除", "announcement_id", a.ID, "user_id", actor.ID)
	return nil
}

// Get 获取公告详情及当前用户的确认状态，仅空间成员可见
func (s *AnnouncementService) Get(ctx context.Context, actor *model.User, id int64) (*model.AnnouncementDetail, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, a.SpaceID, actor); err != nil {
		return nil, err
	}

	detail := &model.AnnouncementDetail{
		Announcement: *a,
		Labels:       a.Labels(),
	}

	record, err := s.store.Confirmations().FindByUser(ctx, a.ID, actor.ID)
	switch {
	case err == nil:
		detail.Confirmed = record.IsConfirmed()
		detail.CanConfirm = !a.Closed && !detail.Confirmed
		detail.CanReset = !a.Closed && detail.Confirmed
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	canEdit, err := s.permissions.Can(ctx, a.SpaceID, actor.ID, permission.CreateAnnouncement)
	if err != nil {
		return nil, err
	}
	detail.CanEdit = canEdit
	detail.CanResetStatistics = canEdit && !a.Closed

	canView, err := s.permissions.Can(ctx, a.SpaceID, actor.ID, permission.ViewStatistics)
	if err != nil {
		return nil, err
	}
	if canView {
		stats, err := s.statistics(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		detail.Statistics = &stats
	}

	return detail, nil
}

// List 分页获取空间内的公告，limit为0时使用模块配置的分页大小
func (s *AnnouncementService) List(ctx context.Context, actor *model.User, spaceID int64, page, limit int) (*model.PaginatedAnnouncements, error) {
	if err := s.requireMember(ctx, spaceID, actor); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		settings, err := s.settings.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		limit = settings.PageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	cacheKey := listCacheKey(spaceID, page, limit)
	if data, err := s.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
		var result model.PaginatedAnnouncements
		if err := json.Unmarshal(data, &result); err == nil {
			return &result, nil
		}
	}

	total, err := s.store.Announcements().CountBySpace(ctx, spaceID)
	if err != nil {
		s.logger.Error("获取公告总数失败", "space_id", spaceID, "error", err)
		return nil, err
	}
	items, err := s.store.Announcements().ListBySpace(ctx, spaceID, page, limit)
	if err != nil {
		s.logger.Error("获取公告列表失败", "space_id", spaceID, "error", err)
		return nil, err
	}

	result := &model.PaginatedAnnouncements{Total: total, Items: items}
	if data, err := json.Marshal(result); err == nil {
		s.redisClient.Set(ctx, cacheKey, data, listCacheTTL)
	}
	return result, nil
}

// Confirm 将用户的确认记录标记为已读。
// 公告已关闭、用户为空、没有记录或已确认时不做任何修改。
func (s *AnnouncementService) Confirm(ctx context.Context, actor *model.User, id int64) error {
	if actor == nil {
		return nil
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if a.Closed {
		return nil
	}

	record, err := s.store.Confirmations().FindByUser(ctx, a.ID, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if record.IsConfirmed() {
		return nil
	}

	if err := s.store.Confirmations().SetConfirmed(ctx, record.ID, true); err != nil {
		s.logger.Error("确认公告失败", "announcement_id", a.ID, "user_id", actor.ID, "error", err)
		return err
	}
	s.invalidateStats(ctx, a.ID)
	return nil
}

// ResetConfirmation 撤销用户自己的确认，公告关闭时不做修改
func (s *AnnouncementService) ResetConfirmation(ctx context.Context, actor *model.User, id int64) error {
	if actor == nil {
		return nil
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if a.Closed {
		return nil
	}

	record, err := s.store.Confirmations().FindByUser(ctx, a.ID, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if !record.IsConfirmed() {
		return nil
	}

	if err := s.store.Confirmations().SetConfirmed(ctx, record.ID, false); err != nil {
		s.logger.Error("撤销确认失败", "announcement_id", a.ID, "user_id", actor.ID, "error", err)
		return err
	}
	s.invalidateStats(ctx, a.ID)
	return nil
}

// ResetStatistics 将全部已确认记录改为未确认，不删除记录
func (s *AnnouncementService) ResetStatistics(ctx context.Context, actor *model.User, id int64) error {
	if actor == nil {
		return nil
	}
	a, err := s.editable(ctx, actor, id)
	if err != nil {
		return err
	}
	if a.Closed {
		return nil
	}

	n, err := s.store.Confirmations().ResetConfirmed(ctx, a.ID)
	if err != nil {
		s.logger.Error("重置统计失败", "announcement_id", a.ID, "error", err)
		return err
	}
	s.invalidateStats(ctx, a.ID)
	s.logger.Info("公告统计已重置", "announcement_id", a.ID, "user_id", actor.ID, "reset", n)
	return nil
}

// Statistics 获取阅读统计，需要查看统计权限
func (s *AnnouncementService) Statistics(ctx context.Context, actor *model.User, id int64) (*model.Statistics, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, a.SpaceID, actor, permission.ViewStatistics); err != nil {
		return nil, err
	}
	stats, err := s.statistics(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Confirmations 按确认状态列出用户，需要查看统计权限
func (s *AnnouncementService) Confirmations(ctx context.Context, actor *model.User, id int64, state model.ConfirmationState) ([]model.User, error) {
	if state != model.StateConfirmed && state != model.StateUnconfirmed {
		return nil, ErrInvalidState
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, a.SpaceID, actor, permission.ViewStatistics); err != nil {
		return nil, err
	}

	records, err := s.store.Confirmations().ListByState(ctx, a.ID, state)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.UserID)
	}
	return s.userRepo.GetByIDs(ctx, ids)
}

// Search 搜索用户所在空间内的公告
func (s *AnnouncementService) Search(ctx context.Context, actor *model.User, query string) ([]model.Announcement, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	ids, err := s.indexer.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Announcement{}, nil
	}

	spaceIDs, err := s.spaceRepo.ListSpaceIDsByMember(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	visible := make(map[int64]struct{}, len(spaceIDs))
	for _, id := range spaceIDs {
		visible[id] = struct{}{}
	}

	found, err := s.store.Announcements().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]model.Announcement, 0, len(found))
	for _, a := range found {
		if _, ok := visible[a.SpaceID]; ok {
			result = append(result, a)
		}
	}
	return result, nil
}

// save 在事务中写入公告并与空间成员对账，返回对账后持有记录的用户
func (s *AnnouncementService) save(ctx context.Context, a *model.Announcement, insert bool) ([]int64, error) {
	var recipients []int64
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if insert {
			if err := tx.Announcements().Create(ctx, a); err != nil {
				return fmt.Errorf("insert announcement: %w", err)
			}
		} else if err := tx.Announcements().Update(ctx, a); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAnnouncementNotFound
			}
			return fmt.Errorf("update announcement: %w", err)
		}

		var err error
		recipients, err = s.reconcile(ctx, tx, a)
		return err
	})
	return recipients, err
}

// reconcile 为新成员创建记录并删除已离开成员的记录
func (s *AnnouncementService) reconcile(ctx context.Context, tx repository.Store, a *model.Announcement) ([]int64, error) {
	members, err := s.spaceRepo.ListMemberIDs(ctx, a.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	existing, err := tx.Confirmations().ListByAnnouncement(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list confirmations: %w", err)
	}

	plan := confirmation.Reconcile(members, existing)
	if err := tx.Confirmations().CreateMany(ctx, a.ID, plan.ToCreate); err != nil {
		return nil, fmt.Errorf("create confirmations: %w", err)
	}
	if err := tx.Confirmations().DeleteByIDs(ctx, plan.DeleteIDs()); err != nil {
		return nil, fmt.Errorf("delete confirmations: %w", err)
	}
	if !plan.Empty() {
		s.logger.Debug("确认记录已对账", "announcement_id", a.ID, "created", len(plan.ToCreate), "deleted", len(plan.ToDelete))
	}

	deleted := make(map[int64]struct{}, len(plan.ToDelete))
	for _, r := range plan.ToDelete {
		deleted[r.ID] = struct{}{}
	}
	holders := make([]int64, 0, len(existing)+len(plan.ToCreate))
	for _, r := range existing {
		if _, ok := deleted[r.ID]; !ok {
			holders = append(holders, r.UserID)
		}
	}
	return append(holders, plan.ToCreate...), nil
}

// afterSave 提交后刷新缓存、索引并通知持有记录的成员
func (s *AnnouncementService) afterSave(ctx context.Context, actor *model.User, a *model.Announcement, kind model.NotificationKind, recipients []int64) {
	s.invalidate(ctx, a)
	if err := s.indexer.Index(ctx, a); err != nil {
		s.logger.Warn("更新搜索索引失败", "announcement_id", a.ID, "error", err)
	}
	if err := s.notifier.Notify(ctx, kind, actor, a, recipients); err != nil {
		s.logger.Error("发送公告通知失败", "announcement_id", a.ID, "kind", kind, "error", err)
	}
}

// load 获取公告，优先读取缓存
func (s *AnnouncementService) load(ctx context.Context, id int64) (*model.Announcement, error) {
	cacheKey := detailCacheKey(id)
	if data, err := s.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
		var a model.Announcement
		if err := json.Unmarshal(data, &a); err == nil {
			return &a, nil
		}
	}

	a, err := s.store.Announcements().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		s.logger.Error("获取公告失败", "announcement_id", id, "error", err)
		return nil, err
	}

	if data, err := json.Marshal(a); err == nil {
		s.redisClient.Set(ctx, cacheKey, data, detailCacheTTL)
	}
	return a, nil
}

// editable 获取公告并检查编辑权限
func (s *AnnouncementService) editable(ctx context.Context, actor *model.User, id int64) (*model.Announcement, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, a.SpaceID, actor, permission.CreateAnnouncement); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AnnouncementService) statistics(ctx context.Context, id int64) (model.Statistics, error) {
	cacheKey := statsCacheKey(id)
	if data, err := s.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
		var stats model.Statistics
		if err := json.Unmarshal(data, &stats); err == nil {
			return stats, nil
		}
	}

	stats, err := s.store.Confirmations().CountStatistics(ctx, id)
	if err != nil {
		s.logger.Error("统计确认情况失败", "announcement_id", id, "error", err)
		return model.Statistics{}, err
	}
	stats.Percent = confirmation.Percent(stats.Confirmed, stats.Total)

	if data, err := json.Marshal(stats); err == nil {
		s.redisClient.Set(ctx, cacheKey, data, statsCacheTTL)
	}
	return stats, nil
}

func (s *AnnouncementService) require(ctx context.Context, spaceID int64, actor *model.User, p permission.Permission) error {
	if actor == nil {
		return ErrForbidden
	}
	ok, err := s.permissions.Can(ctx, spaceID, actor.ID, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *AnnouncementService) requireMember(ctx context.Context, spaceID int64, actor *model.User) error {
	if actor == nil {
		return ErrForbidden
	}
	ok, err := s.permissions.IsMember(ctx, spaceID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// invalidate 删除公告相关缓存
func (s *AnnouncementService) invalidate(ctx context.Context, a *model.Announcement) {
	if err := s.redisClient.Del(ctx, detailCacheKey(a.ID), statsCacheKey(a.ID)).Err(); err != nil {
		s.logger.Warn("删除缓存失败", "announcement_id", a.ID, "error", err)
	}

	pattern := fmt.Sprintf("announcements:list:%d:*", a.SpaceID)
	iter := s.redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn("删除缓存失败", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("扫描缓存失败", "pattern", pattern, "error", err)
	}
}

func (s *AnnouncementService) invalidateStats(ctx context.Context, id int64) {
	if err := s.redisClient.Del(ctx, statsCacheKey(id)).Err(); err != nil {
		s.logger.Warn("删除统计缓存失败", "announcement_id", id, "error", err)
	}
}

func validateMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrInvalidMessage
	}
	return message, nil
}
