package inmem

import (
	"context"
	"sort"

	"announcements/internal/model"
	"announcements/internal/repository"
)

type announcementRepository struct {
	db *DB
}

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.announcementPK++
	a.ID = r.db.announcementPK
	r.db.announcements[a.ID] = *a
	return nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id int64) (*model.Announcement, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	a, ok := r.db.announcements[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *announcementRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Announcement, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []model.Announcement{}
	for _, id := range ids {
		if a, ok := r.db.announcements[id]; ok {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *announcementRepository) Update(ctx context.Context, a *model.Announcement) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.announcements[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Message = a.Message
	cur.Closed = a.Closed
	cur.UpdatedBy = a.UpdatedBy
	cur.UpdatedAt = a.UpdatedAt
	r.db.announcements[a.ID] = cur
	return nil
}

func (r *announcementRepository) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.announcements[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.announcements, id)
	return nil
}

func (r *announcementRepository) bySpace(spaceID int64) []model.Announcement {
	out := []model.Announcement{}
	for _, a := range r.db.announcements {
		if a.SpaceID == spaceID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Closed != out[j].Closed {
			return !out[i].Closed
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *announcementRepository) ListBySpace(ctx context.Context, spaceID int64, page, limit int) ([]model.Announcement, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	all := r.bySpace(spaceID)
	offset := (page - 1) * limit
	if offset >= len(all) {
		return []model.Announcement{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *announcementRepository) CountBySpace(ctx context.Context, spaceID int64) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.bySpace(spaceID))), nil
}
