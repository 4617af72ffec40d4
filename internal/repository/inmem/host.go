package inmem

import (
	"context"
	"sort"

	"announcements/internal/model"
	"announcements/internal/permission"
	"announcements/internal/repository"
)

type spaceRepository struct {
	db *DB
}

// NewSpaceRepository 创建内存空间存储库
func NewSpaceRepository(db *DB) repository.SpaceRepository {
	return &spaceRepository{db: db}
}

func (r *spaceRepository) GetByID(ctx context.Context, id int64) (*model.Space, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	s, ok := r.db.spaces[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *spaceRepository) ListMemberIDs(ctx context.Context, spaceID int64) ([]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	ids := []int64{}
	for _, id := range sortedIDs(r.db.memberships[spaceID]) {
		if u, ok := r.db.users[id]; ok && u.IsEnabled() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *spaceRepository) ListSpaceIDsByMember(ctx context.Context, userID int64) ([]int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	ids := []int64{}
	for spaceID, members := range r.db.memberships {
		if _, ok := members[userID]; ok {
			ids = append(ids, spaceID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type permissionStore struct {
	db *DB
}

// NewPermissionStore 创建内存权限数据源
func NewPermissionStore(db *DB) permission.Store {
	return &permissionStore{db: db}
}

func (p *permissionStore) GetSpaceGroup(ctx context.Context, spaceID, userID int64) (model.SpaceGroup, error) {
	p.db.mu.RLock()
	defer p.db.mu.RUnlock()
	if s, ok := p.db.spaces[spaceID]; ok && s.CreatedBy == userID {
		return model.GroupOwner, nil
	}
	if g, ok := p.db.memberships[spaceID][userID]; ok {
		return g, nil
	}
	return model.GroupUser, nil
}

func (p *permissionStore) GetOverride(ctx context.Context, spaceID int64, group model.SpaceGroup, permissionID string) (int, bool, error) {
	p.db.mu.RLock()
	defer p.db.mu.RUnlock()
	state, ok := p.db.overrides[overrideKey{spaceID, group, permissionID}]
	return state, ok, nil
}

func (p *permissionStore) IsSystemAdmin(ctx context.Context, userID int64) (bool, error) {
	p.db.mu.RLock()
	defer p.db.mu.RUnlock()
	return p.db.admins[userID], nil
}

type userRepository struct {
	db *DB
}

// NewUserRepository 创建内存用户存储库
func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	users := []model.User{}
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type notificationRepository struct {
	db *DB
}

// NewNotificationRepository 创建内存通知存储库
func NewNotificationRepository(db *DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateMany(ctx context.Context, notifications []model.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, n := range notifications {
		n.ID = int64(len(r.db.notifications) + 1)
		r.db.notifications = append(r.db.notifications, n)
	}
	return nil
}

type settingRepository struct {
	db *DB
}

// NewSettingRepository 创建内存配置存储库
func NewSettingRepository(db *DB) repository.SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetAll(ctx context.Context, moduleID string) (map[string]string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make(map[string]string, len(r.db.settings[moduleID]))
	for k, v := range r.db.settings[moduleID] {
		out[k] = v
	}
	return out, nil
}

func (r *settingRepository) Set(ctx context.Context, moduleID, name, value string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.settings[moduleID] == nil {
		r.db.settings[moduleID] = make(map[string]string)
	}
	r.db.settings[moduleID][name] = value
	return nil
}
