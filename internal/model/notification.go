package model

import "time"

// NotificationKind 通知类型
type NotificationKind string

const (
	NotificationCreated NotificationKind = "announcement_created"
	NotificationUpdated NotificationKind = "announcement_updated"
)

// Notification 宿主平台通知表的一行
type Notification struct {
	ID               int64     `db:"id"`
	Class            string    `db:"class"`
	UserID           int64     `db:"user_id"`
	OriginatorUserID int64     `db:"originator_user_id"`
	SourceClass      string    `db:"source_class"`
	SourcePK         int64     `db:"source_pk"`
	SpaceID          int64     `db:"space_id"`
	ModuleID         string    `db:"module"`
	Seen             bool      `db:"seen"`
	CreatedAt        time.Time `db:"created_at"`
}
