package confirmation

import "announcements/internal/model"

// Calculate 根据确认记录计算阅读统计
func Calculate(records []model.AnnouncementUser) model.Statistics {
	var stats model.Statistics
	for _, r := range records {
		switch {
		case r.IsConfirmed():
			stats.Confirmed++
		case r.IsUnconfirmed():
			stats.Unconfirmed++
		}
	}
	stats.Total = int64(len(records))
	stats.Percent = Percent(stats.Confirmed, stats.Total)
	return stats
}

// Percent 返回已确认比例，总数为0时返回0
func Percent(confirmed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(confirmed) / float64(total) * 100
}
