package model

import (
	"database/sql"
	"time"
)

// Announcement 公告模型
type Announcement struct {
	ID        int64     `db:"id" json:"id"`
	GUID      string    `db:"guid" json:"guid"`
	SpaceID   int64     `db:"space_id" json:"space_id"`
	Message   string    `db:"message" json:"message"`
	Closed    bool      `db:"closed" json:"closed"`
	CreatedBy int64     `db:"created_by" json:"created_by"`
	UpdatedBy int64     `db:"updated_by" json:"updated_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LabelOld 已关闭公告显示的标签
const LabelOld = "old"

// Labels 返回公告在信息流中展示的标签
func (a *Announcement) Labels() []string {
	labels := []string{}
	if a.Closed {
		labels = append(labels, LabelOld)
	}
	return labels
}

// AnnouncementUser 成员对公告的确认记录
//
// Confirmed 为三态：NULL 未设置，false 未确认，true 已确认。
type AnnouncementUser struct {
	ID             int64        `db:"id" json:"id"`
	AnnouncementID int64        `db:"announcement_id" json:"announcement_id"`
	UserID         int64        `db:"user_id" json:"user_id"`
	Confirmed      sql.NullBool `db:"confirmed" json:"-"`
	CreatedAt      time.Time    `db:"created_at" json:"-"`
	UpdatedAt      time.Time    `db:"updated_at" json:"-"`
}

// IsConfirmed 是否已确认
func (u AnnouncementUser) IsConfirmed() bool {
	return u.Confirmed.Valid && u.Confirmed.Bool
}

// IsUnconfirmed 是否明确标记为未确认，NULL 不算
func (u AnnouncementUser) IsUnconfirmed() bool {
	return u.Confirmed.Valid && !u.Confirmed.Bool
}

// ConfirmationState 确认状态筛选条件
type ConfirmationState string

const (
	StateConfirmed   ConfirmationState = "confirmed"
	StateUnconfirmed ConfirmationState = "unconfirmed"
)

// Statistics 公告阅读统计
type Statistics struct {
	Confirmed   int64   `json:"confirmed"`
	Unconfirmed int64   `json:"unconfirmed"`
	Total       int64   `json:"total"`
	Percent     float64 `json:"percent"`
}

// AnnouncementDetail 公告详情，附带当前用户的确认状态
type AnnouncementDetail struct {
	Announcement
	Labels             []string    `json:"labels"`
	Confirmed          bool        `json:"confirmed"`
	CanConfirm         bool        `json:"can_confirm"`
	CanReset           bool        `json:"can_reset"`
	CanEdit            bool        `json:"can_edit"`
	CanResetStatistics bool        `json:"can_reset_statistics"`
	Statistics         *Statistics `json:"statistics,omitempty"`
}

// PaginatedAnnouncements 分页公告结果
type PaginatedAnnouncements struct {
	Total int64          `json:"total"`
	Items []Announcement `json:"items"`
}
