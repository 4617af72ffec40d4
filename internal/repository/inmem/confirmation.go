package inmem

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"announcements/internal/model"
	"announcements/internal/repository"
)

type announcementUserRepository struct {
	db *DB
}

func (r *announcementUserRepository) list(announcementID int64, keep func(model.AnnouncementUser) bool) []model.AnnouncementUser {
	out := []model.AnnouncementUser{}
	for _, rec := range r.db.confirmations {
		if rec.AnnouncementID == announcementID && keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *announcementUserRepository) ListByAnnouncement(ctx context.Context, announcementID int64) ([]model.AnnouncementUser, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.list(announcementID, func(model.AnnouncementUser) bool { return true }), nil
}

func (r *announcementUserRepository) ListByState(ctx context.Context, announcementID int64, state model.ConfirmationState) ([]model.AnnouncementUser, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.list(announcementID, func(rec model.AnnouncementUser) bool {
		if state == model.StateConfirmed {
			return rec.IsConfirmed()
		}
		return rec.IsUnconfirmed()
	}), nil
}

func (r *announcementUserRepository) FindByUser(ctx context.Context, announcementID, userID int64) (*model.AnnouncementUser, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, rec := range r.db.confirmations {
		if rec.AnnouncementID == announcementID && rec.UserID == userID {
			return &rec, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *announcementUserRepository) CreateMany(ctx context.Context, announcementID int64, userIDs []int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for _, userID := range userIDs {
		exists := false
		for _, rec := range r.db.confirmations {
			if rec.AnnouncementID == announcementID && rec.UserID == userID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		r.db.confirmationPK++
		r.db.confirmations[r.db.confirmationPK] = model.AnnouncementUser{
			ID:             r.db.confirmationPK,
			AnnouncementID: announcementID,
			UserID:         userID,
			Confirmed:      sql.NullBool{Bool: false, Valid: true},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}
	return nil
}

func (r *announcementUserRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, id := range ids {
		delete(r.db.confirmations, id)
	}
	return nil
}

func (r *announcementUserRepository) DeleteByAnnouncement(ctx context.Context, announcementID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, rec := range r.db.confirmations {
		if rec.AnnouncementID == announcementID {
			delete(r.db.confirmations, id)
		}
	}
	return nil
}

func (r *announcementUserRepository) SetConfirmed(ctx context.Context, id int64, confirmed bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rec, ok := r.db.confirmations[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.Confirmed = sql.NullBool{Bool: confirmed, Valid: true}
	rec.UpdatedAt = time.Now()
	r.db.confirmations[id] = rec
	return nil
}

func (r *announcementUserRepository) ResetConfirmed(ctx context.Context, announcementID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, rec := range r.db.confirmations {
		if rec.AnnouncementID == announcementID && rec.IsConfirmed() {
			rec.Confirmed = sql.NullBool{Bool: false, Valid: true}
			r.db.confirmations[id] = rec
			n++
		}
	}
	return n, nil
}

func (r *announcementUserRepository) CountStatistics(ctx context.Context, announcementID int64) (model.Statistics, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var stats model.Statistics
	for _, rec := range r.list(announcementID, func(model.AnnouncementUser) bool { return true }) {
		stats.Total++
		switch {
		case rec.IsConfirmed():
			stats.Confirmed++
		case rec.IsUnconfirmed():
			stats.Unconfirmed++
		}
	}
	return stats, nil
}

// SetRawConfirmation 直接写入一条记录，可用于构造NULL状态
func (db *DB) SetRawConfirmation(rec model.AnnouncementUser) model.AnnouncementUser {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.confirmationPK++
	rec.ID = db.confirmationPK
	db.confirmations[rec.ID] = rec
	return rec
}
