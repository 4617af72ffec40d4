package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store 组合公告与确认记录存储库，保存公告与对账在同一事务内完成
type Store interface {
	Announcements() AnnouncementRepository
	Confirmations() AnnouncementUserRepository
	// InTx 在事务中执行fn，fn返回错误时回滚
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type sqlStore struct {
	announcements   TransactionalAnnouncementRepository
	confirmations   TransactionalAnnouncementUserRepository
	tx              *sqlx.Tx
	txAnnouncements AnnouncementRepository
	txConfirmations AnnouncementUserRepository
}

// NewStore 创建基于MySQL的存储
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{
		announcements: NewAnnouncementRepository(db),
		confirmations: NewAnnouncementUserRepository(db),
	}
}

// Announcements 公告存储库
func (s *sqlStore) Announcements() AnnouncementRepository {
	if s.tx != nil {
		return s.txAnnouncements
	}
	return s.announcements
}

// Confirmations 确认记录存储库
func (s *sqlStore) Confirmations() AnnouncementUserRepository {
	if s.tx != nil {
		return s.txConfirmations
	}
	return s.confirmations
}

// InTx 在事务中执行fn
func (s *sqlStore) InTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.announcements.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	txStore := &sqlStore{
		announcements:   s.announcements,
		confirmations:   s.confirmations,
		tx:              tx,
		txAnnouncements: s.announcements.WithTx(tx),
		txConfirmations: s.confirmations.WithTx(tx),
	}
	if err = fn(txStore); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
