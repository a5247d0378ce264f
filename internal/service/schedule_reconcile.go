package service

import (
	"sort"

	"github.com/SEGIMED/back-sub000/internal/model"
)

// ReconcilePlan 整周覆盖的变更计划
// 执行后有效排班恰好等于期望集合
type ReconcilePlan struct {
	ToCreate     []model.ScheduleEntry // 期望中有、现有中无的星期
	ToUpdate     []model.ScheduleEntry // 两边都有且内容变化，保留原 ID 与版本号
	Unchanged    []model.ScheduleEntry // 两边都有且内容一致
	ToSoftDelete []model.ScheduleEntry // 现有中有、期望中无的星期
}

// Reconcile 计算从 existing 到 desired 的差异，不访问存储
// desired 需已通过 ValidateBatch（星期不重复）
func Reconcile(existing, desired []model.ScheduleEntry) ReconcilePlan {
	byDay := make(map[int]model.ScheduleEntry, len(existing))
	for _, e := range existing {
		if e.IsDeleted() {
			continue
		}
		byDay[e.DayOfWeek] = e
	}

	var plan ReconcilePlan
	wanted := make(map[int]bool, len(desired))
	for _, d := range desired {
		wanted[d.DayOfWeek] = true

		cur, ok := byDay[d.DayOfWeek]
		if !ok {
			plan.ToCreate = append(plan.ToCreate, d)
			continue
		}
		if sameContent(&cur, &d) {
			plan.Unchanged = append(plan.Unchanged, cur)
			continue
		}
		applyContent(&cur, &d)
		plan.ToUpdate = append(plan.ToUpdate, cur)
	}

	for day, e := range byDay {
		if !wanted[day] {
			plan.ToSoftDelete = append(plan.ToSoftDelete, e)
		}
	}

	for _, list := range [][]model.ScheduleEntry{plan.ToCreate, plan.ToUpdate, plan.Unchanged, plan.ToSoftDelete} {
		sortByDay(list)
	}
	return plan
}

// Empty 计划是否不产生任何写入
func (p ReconcilePlan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToSoftDelete) == 0
}

func sortByDay(list []model.ScheduleEntry) {
	sort.Slice(list, func(i, j int) bool { return list[i].DayOfWeek < list[j].DayOfWeek })
}

// applyContent 将排班内容字段从 src 复制到 dst，保留身份与审计字段
func applyContent(dst, src *model.ScheduleEntry) {
	dst.StartTime = src.StartTime
	dst.EndTime = src.EndTime
	dst.RestStart = copyStr(src.RestStart)
	dst.RestEnd = copyStr(src.RestEnd)
	dst.AppointmentLength = src.AppointmentLength
	dst.SimultaneousSlots = src.SimultaneousSlots
	dst.BreakBetween = src.BreakBetween
	dst.Modality = src.Modality
	dst.IsWorkingDay = src.IsWorkingDay
}

func sameContent(a, b *model.ScheduleEntry) bool {
	return a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		equalStr(a.RestStart, b.RestStart) &&
		equalStr(a.RestEnd, b.RestEnd) &&
		a.AppointmentLength == b.AppointmentLength &&
		a.SimultaneousSlots == b.SimultaneousSlots &&
		a.BreakBetween == b.BreakBetween &&
		a.Modality == b.Modality &&
		a.IsWorkingDay == b.IsWorkingDay
}

func equalStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
