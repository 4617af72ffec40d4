package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"announcements/internal/model"
	"announcements/internal/permission"
	"announcements/internal/repository"
	"announcements/pkg/async"
	"announcements/pkg/email"
	"announcements/pkg/logger"
)

// Notifier 公告通知分发
type Notifier interface {
	Notify(ctx context.Context, kind model.NotificationKind, sender *model.User, a *model.Announcement, recipientIDs []int64) error
}

// Mailer 发送邮件
type Mailer interface {
	Enabled() bool
	SendEmail(emailType email.EmailType, data email.EmailData) error
}

// SettingsProvider 提供模块配置
type SettingsProvider interface {
	GetSettings(ctx context.Context) (model.ModuleSettings, error)
}

// 通知表中使用的宿主类名
const (
	notificationClassCreated = "humhub\\modules\\announcements\\notifications\\AnnouncementCreated"
	notificationClassUpdated = "humhub\\modules\\announcements\\notifications\\AnnouncementUpdated"
	announcementSourceClass  = "humhub\\modules\\announcements\\models\\Announcement"
)

// NotificationService 写入站内通知并异步发送邮件
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	spaceRepo        repository.SpaceRepository
	settings         SettingsProvider
	mailer           Mailer
	worker           *async.Worker
	baseURL          string
	logger           *logger.Logger
}

// NewNotificationService 创建通知服务实例
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	spaceRepo repository.SpaceRepository,
	settings SettingsProvider,
	mailer Mailer,
	worker *async.Worker,
	baseURL string,
	logger *logger.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		spaceRepo:        spaceRepo,
		settings:         settings,
		mailer:           mailer,
		worker:           worker,
		baseURL:          strings.TrimRight(baseURL, "/"),
		logger:           logger,
	}
}

// Notify 向接收者发送公告通知，发送者本人不会收到
func (s *NotificationService) Notify(ctx context.Context, kind model.NotificationKind, sender *model.User, a *model.Announcement, recipientIDs []int64) error {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return err
	}
	if (kind == model.NotificationCreated && !settings.NotifyOnCreate) ||
		(kind == model.NotificationUpdated && !settings.NotifyOnUpdate) {
		s.logger.Debug("通知已在模块配置中关闭", "kind", kind, "announcement_id", a.ID)
		return nil
	}

	recipients := make([]int64, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		if sender != nil && id == sender.ID {
			continue
		}
		recipients = append(recipients, id)
	}
	if len(recipients) == 0 {
		return nil
	}

	class := notificationClassCreated
	emailType := email.TypeAnnouncementCreated
	if kind == model.NotificationUpdated {
		class = notificationClassUpdated
		emailType = email.TypeAnnouncementUpdated
	}

	var originator int64
	if sender != nil {
		originator = sender.ID
	}
	now := time.Now()
	notifications := make([]model.Notification, 0, len(recipients))
	for _, id := range recipients {
		notifications = append(notifications, model.Notification{
			Class:            class,
			UserID:           id,
			OriginatorUserID: originator,
			SourceClass:      announcementSourceClass,
			SourcePK:         a.ID,
			SpaceID:          a.SpaceID,
			ModuleID:         permission.ModuleID,
			CreatedAt:        now,
		})
	}
	if err := s.notificationRepo.CreateMany(ctx, notifications); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}

	if s.mailer == nil || !s.mailer.Enabled() || s.worker == nil {
		return nil
	}
	return s.enqueueEmails(ctx, emailType, sender, a, recipients)
}

// enqueueEmails 将邮件发送任务提交到异步工作器
func (s *NotificationService) enqueueEmails(ctx context.Context, emailType email.EmailType, sender *model.User, a *model.Announcement, recipients []int64) error {
	users, err := s.userRepo.GetByIDs(ctx, recipients)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}

	var spaceName string
	if space, err := s.spaceRepo.GetByID(ctx, a.SpaceID); err == nil {
		spaceName = space.Name
	}
	senderName := ""
	if sender != nil {
		senderName = displayName(sender)
	}
	link := ""
	if s.baseURL != "" {
		link = fmt.Sprintf("%s/announcements/%d", s.baseURL, a.ID)
	}

	for _, u := range users {
		if u.Email == "" || !u.IsEnabled() {
			continue
		}
		data := email.EmailData{
			To:         u.Email,
			UserName:   displayName(&u),
			SenderName: senderName,
			SpaceName:  spaceName,
			Message:    a.Message,
			Link:       link,
		}
		_, err := s.worker.Submit(async.Task{
			Name:     string(emailType),
			Timeout:  30 * time.Second,
			RetryMax: 2,
			Handler: func(ctx context.Context) error {
				return s.mailer.SendEmail(emailType, data)
			},
		})
		if err != nil {
			s.logger.Warn("提交邮件任务失败", "user_id", u.ID, "error", err)
		}
	}
	return nil
}

func displayName(u *model.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
