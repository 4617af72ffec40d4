// Package confirmation 维护公告确认记录与空间成员之间的一致性，并计算阅读统计。
package confirmation

import (
	"sort"

	"announcements/internal/model"
)

// Plan 一次对账需要执行的变更
type Plan struct {
	// ToCreate 缺少确认记录的成员
	ToCreate []int64
	// ToDelete 已不是成员的用户的记录
	ToDelete []model.AnnouncementUser
}

// Empty 对账结果是否无需任何变更
func (p Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToDelete) == 0
}

// DeleteIDs 返回待删除记录的ID
func (p Plan) DeleteIDs() []int64 {
	ids := make([]int64, 0, len(p.ToDelete))
	for _, r := range p.ToDelete {
		ids = append(ids, r.ID)
	}
	return ids
}

// Reconcile 按用户ID计算成员集合与已有记录之间的差集。
// 成员已有的记录保持不变，确认状态不会被改写。
func Reconcile(members []int64, existing []model.AnnouncementUser) Plan {
	memberSet := make(map[int64]struct{}, len(members))
	for _, id := range members {
		memberSet[id] = struct{}{}
	}

	covered := make(map[int64]struct{}, len(existing))
	var plan Plan
	for _, r := range existing {
		if _, ok := memberSet[r.UserID]; !ok {
			plan.ToDelete = append(plan.ToDelete, r)
			continue
		}
		// 同一用户出现多条记录时只保留第一条
		if _, dup := covered[r.UserID]; dup {
			plan.ToDelete = append(plan.ToDelete, r)
			continue
		}
		covered[r.UserID] = struct{}{}
	}

	for id := range memberSet {
		if _, ok := covered[id]; !ok {
			plan.ToCreate = append(plan.ToCreate, id)
		}
	}
	sort.Slice(plan.ToCreate, func(i, j int) bool { return plan.ToCreate[i] < plan.ToCreate[j] })

	return plan
}
