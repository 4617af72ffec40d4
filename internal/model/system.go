package model

// SystemStatus 公告模块整体状态
type SystemStatus struct {
	TotalAnnouncements int64   `json:"total_announcements" db:"total_announcements"`
	OpenAnnouncements  int64   `json:"open_announcements" db:"open_announcements"`
	TotalConfirmations int64   `json:"total_confirmations" db:"total_confirmations"`
	ConfirmedCount     int64   `json:"confirmed_count" db:"confirmed_count"`
	ConfirmedPercent   float64 `json:"confirmed_percent" db:"-"`
}

// ModuleSettings 公告模块配置
type ModuleSettings struct {
	NotifyOnCreate bool `json:"notify_on_create"`
	NotifyOnUpdate bool `json:"notify_on_update"`
	PageSize       int  `json:"page_size"`
}

// DefaultModuleSettings 默认模块配置
func DefaultModuleSettings() ModuleSettings {
	return ModuleSettings{
		NotifyOnCreate: true,
		NotifyOnUpdate: true,
		PageSize:       10,
	}
}
