package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcements/internal/model"
	"announcements/internal/permission"
	"announcements/internal/repository/inmem"
	"announcements/pkg/logger"
)

func TestSettingsDefaults(t *testing.T) {
	_, client := newRedis(t)
	svc := NewSettingService(inmem.NewSettingRepository(inmem.Open()), client, logger.NewNop())

	settings, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultModuleSettings(), settings)
}

func TestSaveSettings(t *testing.T) {
	mr, client := newRedis(t)
	db := inmem.Open()
	repo := inmem.NewSettingRepository(db)
	svc := NewSettingService(repo, client, logger.NewNop())
	ctx := context.Background()

	_, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(settingsCacheKey))

	want := model.ModuleSettings{NotifyOnCreate: false, NotifyOnUpdate: true, PageSize: 25}
	require.NoError(t, svc.SaveSettings(ctx, want))
	assert.False(t, mr.Exists(settingsCacheKey))

	values, err := repo.GetAll(ctx, permission.ModuleID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"notifyOnCreate": "0", "notifyOnUpdate": "1", "pageSize": "25"}, values)

	got, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveSettingsValidatesPageSize(t *testing.T) {
	_, client := newRedis(t)
	svc := NewSettingService(inmem.NewSettingRepository(inmem.Open()), client, logger.NewNop())

	for _, size := range []int{0, 51} {
		err := svc.SaveSettings(context.Background(), model.ModuleSettings{PageSize: size})
		assert.ErrorIs(t, err, ErrInvalidSettings, "page size %d", size)
	}
}
