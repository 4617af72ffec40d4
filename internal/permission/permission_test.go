package permission

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcements/internal/model"
)

type fakeStore struct {
	groups    map[int64]model.SpaceGroup
	overrides map[string]int
	admins    map[int64]bool
}

func (f *fakeStore) GetSpaceGroup(ctx context.Context, spaceID, userID int64) (model.SpaceGroup, error) {
	if g, ok := f.groups[userID]; ok {
		return g, nil
	}
	return model.GroupUser, nil
}

func (f *fakeStore) GetOverride(ctx context.Context, spaceID int64, group model.SpaceGroup, permissionID string) (int, bool, error) {
	state, ok := f.overrides[fmt.Sprintf("%d/%s/%s", spaceID, group, permissionID)]
	return state, ok, nil
}

func (f *fakeStore) IsSystemAdmin(ctx context.Context, userID int64) (bool, error) {
	return f.admins[userID], nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups: map[int64]model.SpaceGroup{
			1: model.GroupOwner,
			2: model.GroupAdmin,
			3: model.GroupModerator,
			4: model.GroupMember,
		},
		overrides: map[string]int{},
		admins:    map[int64]bool{},
	}
}

func TestCanDefaults(t *testing.T) {
	m := NewManager(newFakeStore())
	ctx := context.Background()

	cases := []struct {
		userID int64
		want   bool
	}{
		{1, true},
		{2, true},
		{3, true},
		{4, false},
		{99, false},
	}
	for _, tc := range cases {
		got, err := m.Can(ctx, 10, tc.userID, CreateAnnouncement)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "user %d", tc.userID)
	}
}

func TestCanOverride(t *testing.T) {
	store := newFakeStore()
	store.overrides[fmt.Sprintf("10/member/%s", ViewStatistics.ID)] = StateAllow
	store.overrides[fmt.Sprintf("10/moderator/%s", ViewStatistics.ID)] = StateDeny
	store.overrides[fmt.Sprintf("10/user/%s", ViewStatistics.ID)] = StateAllow
	m := NewManager(store)
	ctx := context.Background()

	ok, err := m.Can(ctx, 10, 4, ViewStatistics)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Can(ctx, 10, 3, ViewStatistics)
	require.NoError(t, err)
	assert.False(t, ok)

	// 固定角色组忽略覆盖配置
	ok, err = m.Can(ctx, 10, 99, ViewStatistics)
	require.NoError(t, err)
	assert.False(t, ok)

	// 其他空间不受影响
	ok, err = m.Can(ctx, 11, 3, ViewStatistics)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsMemberAndManageModules(t *testing.T) {
	store := newFakeStore()
	store.admins[4] = true
	m := NewManager(store)
	ctx := context.Background()

	member, err := m.IsMember(ctx, 10, 4)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = m.IsMember(ctx, 10, 99)
	require.NoError(t, err)
	assert.False(t, member)

	admin, err := m.CanManageModules(ctx, 4)
	require.NoError(t, err)
	assert.True(t, admin)
}
