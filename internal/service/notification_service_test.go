package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcements/internal/model"
	"announcements/internal/repository/inmem"
	"announcements/pkg/async"
	"announcements/pkg/email"
	"announcements/pkg/logger"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.EmailData
	kind []email.EmailType
}

func (m *fakeMailer) Enabled() bool { return true }

func (m *fakeMailer) SendEmail(emailType email.EmailType, data email.EmailData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	m.kind = append(m.kind, emailType)
	return nil
}

func (m *fakeMailer) Sent() []email.EmailData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.EmailData(nil), m.sent...)
}

func newNotificationFixture(t *testing.T) (*inmem.DB, *NotificationService, *SettingService, *fakeMailer) {
	_, client := newRedis(t)
	db := inmem.Open()
	log := logger.NewNop()

	db.AddUser(model.User{ID: 1, Username: "alice", DisplayName: "Alice A.", Email: "alice@example.com", Status: model.UserStatusEnabled})
	db.AddUser(model.User{ID: 2, Username: "bob", Email: "bob@example.com", Status: model.UserStatusEnabled})
	db.AddUser(model.User{ID: 3, Username: "carol", Email: "carol@example.com", Status: model.UserStatusDisabled})
	db.AddUser(model.User{ID: 4, Username: "dave", Status: model.UserStatusEnabled})
	db.AddSpace(model.Space{ID: 10, Name: "Staff", CreatedBy: 1})

	worker := async.NewWorker(10, log)
	worker.Start(1)
	t.Cleanup(worker.Stop)

	settings := NewSettingService(inmem.NewSettingRepository(db), client, log)
	mailer := &fakeMailer{}
	svc := NewNotificationService(
		inmem.NewNotificationRepository(db),
		inmem.NewUserRepository(db),
		inmem.NewSpaceRepository(db),
		settings,
		mailer,
		worker,
		"https://intranet.example.com/",
		log,
	)
	return db, svc, settings, mailer
}

func TestNotifyWritesRowsAndSendsEmails(t *testing.T) {
	db, svc, _, mailer := newNotificationFixture(t)
	sender := &model.User{ID: 1, Username: "alice", DisplayName: "Alice A."}
	a := &model.Announcement{ID: 7, SpaceID: 10, Message: "Office closed"}

	err := svc.Notify(context.Background(), model.NotificationCreated, sender, a, []int64{1, 2, 3, 4})
	require.NoError(t, err)

	rows := db.Notifications()
	require.Len(t, rows, 3)
	for _, n := range rows {
		assert.NotEqual(t, int64(1), n.UserID)
		assert.Equal(t, notificationClassCreated, n.Class)
		assert.Equal(t, int64(1), n.OriginatorUserID)
		assert.Equal(t, int64(7), n.SourcePK)
		assert.Equal(t, int64(10), n.SpaceID)
	}

	// 只有启用且有邮箱的用户收到邮件
	require.Eventually(t, func() bool { return len(mailer.Sent()) == 1 }, time.Second, 10*time.Millisecond)
	sent := mailer.Sent()[0]
	assert.Equal(t, "bob@example.com", sent.To)
	assert.Equal(t, "bob", sent.UserName)
	assert.Equal(t, "Alice A.", sent.SenderName)
	assert.Equal(t, "Staff", sent.SpaceName)
	assert.Equal(t, "https://intranet.example.com/announcements/7", sent.Link)
}

func TestNotifyRespectsSettings(t *testing.T) {
	db, svc, settings, mailer := newNotificationFixture(t)
	ctx := context.Background()
	sender := &model.User{ID: 1}
	a := &model.Announcement{ID: 7, SpaceID: 10, Message: "Office closed"}

	require.NoError(t, settings.SaveSettings(ctx, model.ModuleSettings{NotifyOnCreate: true, NotifyOnUpdate: false, PageSize: 10}))

	require.NoError(t, svc.Notify(ctx, model.NotificationUpdated, sender, a, []int64{2}))
	assert.Empty(t, db.Notifications())

	require.NoError(t, svc.Notify(ctx, model.NotificationCreated, sender, a, []int64{2}))
	assert.Len(t, db.Notifications(), 1)
	require.Eventually(t, func() bool { return len(mailer.Sent()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestNotifySkipsSenderOnly(t *testing.T) {
	db, svc, _, _ := newNotificationFixture(t)
	a := &model.Announcement{ID: 7, SpaceID: 10, Message: "Office closed"}

	require.NoError(t, svc.Notify(context.Background(), model.NotificationUpdated, &model.User{ID: 1}, a, []int64{1}))
	assert.Empty(t, db.Notifications())
}
