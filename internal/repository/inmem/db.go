// Package inmem 提供存储库接口的内存实现，用于测试和本地调试
package inmem

import (
	"context"
	"sort"
	"sync"

	"announcements/internal/model"
	"announcements/internal/repository"
)

// DB 内存数据库
type DB struct {
	mu sync.RWMutex

	announcements map[int64]model.Announcement
	confirmations map[int64]model.AnnouncementUser
	spaces        map[int64]model.Space
	memberships   map[int64]map[int64]model.SpaceGroup // space_id -> user_id -> group
	users         map[int64]model.User
	admins        map[int64]bool
	overrides     map[overrideKey]int
	notifications []model.Notification
	settings      map[string]map[string]string

	announcementPK int64
	confirmationPK int64
}

type overrideKey struct {
	spaceID      int64
	group        model.SpaceGroup
	permissionID string
}

// Open 创建空的内存数据库
func Open() *DB {
	return &DB{
		announcements: make(map[int64]model.Announcement),
		confirmations: make(map[int64]model.AnnouncementUser),
		spaces:        make(map[int64]model.Space),
		memberships:   make(map[int64]map[int64]model.SpaceGroup),
		users:         make(map[int64]model.User),
		admins:        make(map[int64]bool),
		overrides:     make(map[overrideKey]int),
		settings:      make(map[string]map[string]string),
	}
}

// AddUser 添加宿主用户
func (db *DB) AddUser(u model.User) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = u
}

// AddSpace 添加空间，创建者自动成为成员
func (db *DB) AddSpace(s model.Space) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.spaces[s.ID] = s
	if db.memberships[s.ID] == nil {
		db.memberships[s.ID] = make(map[int64]model.SpaceGroup)
	}
	db.memberships[s.ID][s.CreatedBy] = model.GroupAdmin
}

// Join 将用户以指定角色组加入空间
func (db *DB) Join(spaceID, userID int64, group model.SpaceGroup) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.memberships[spaceID] == nil {
		db.memberships[spaceID] = make(map[int64]model.SpaceGroup)
	}
	db.memberships[spaceID][userID] = group
}

// Leave 将用户移出空间
func (db *DB) Leave(spaceID, userID int64) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.memberships[spaceID], userID)
}

// SetSystemAdmin 设置用户是否为系统管理员
func (db *DB) SetSystemAdmin(userID int64, admin bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.admins[userID] = admin
}

// SetOverride 设置空间权限覆盖
func (db *DB) SetOverride(spaceID int64, group model.SpaceGroup, permissionID string, state int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.overrides[overrideKey{spaceID, group, permissionID}] = state
}

// Notifications 返回已写入的通知
func (db *DB) Notifications() []model.Notification {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]model.Notification(nil), db.notifications...)
}

// snapshot 复制可写的表，用于事务回滚
type snapshot struct {
	announcements  map[int64]model.Announcement
	confirmations  map[int64]model.AnnouncementUser
	announcementPK int64
	confirmationPK int64
}

func (db *DB) snapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s := snapshot{
		announcements:  make(map[int64]model.Announcement, len(db.announcements)),
		confirmations:  make(map[int64]model.AnnouncementUser, len(db.confirmations)),
		announcementPK: db.announcementPK,
		confirmationPK: db.confirmationPK,
	}
	for k, v := range db.announcements {
		s.announcements[k] = v
	}
	for k, v := range db.confirmations {
		s.confirmations[k] = v
	}
	return s
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.announcements = s.announcements
	db.confirmations = s.confirmations
	db.announcementPK = s.announcementPK
	db.confirmationPK = s.confirmationPK
}

// store 内存实现的 repository.Store
type store struct {
	db *DB
}

// NewStore 创建内存存储
func NewStore(db *DB) repository.Store {
	return &store{db: db}
}

func (s *store) Announcements() repository.AnnouncementRepository {
	return &announcementRepository{db: s.db}
}

func (s *store) Confirmations() repository.AnnouncementUserRepository {
	return &announcementUserRepository{db: s.db}
}

func (s *store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	snap := s.db.snapshot()
	if err := fn(s); err != nil {
		s.db.restore(snap)
		return err
	}
	return nil
}

func sortedIDs(m map[int64]model.SpaceGroup) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
