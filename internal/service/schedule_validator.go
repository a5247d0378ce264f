package service

import (
	"github.com/SEGIMED/back-sub000/internal/model"
	"github.com/SEGIMED/back-sub000/pkg/timeutil"
)

// maxWeekEntries 整周覆盖的最大条数
const maxWeekEntries = 7

// ValidateEntry 校验单条排班的字段与时间约束，不访问存储
func ValidateEntry(e *model.ScheduleEntry) error {
	day := e.DayOfWeek
	if day < 0 || day > 6 {
		return &ValidationError{Field: "day_of_week", Message: "day_of_week 必须在 0-6 之间"}
	}

	start, err := timeutil.TimeToMinutes(e.StartTime)
	if err != nil {
		return dayValidation(day, "start_time", "start_time 格式无效: %q", e.StartTime)
	}
	end, err := timeutil.TimeToMinutes(e.EndTime)
	if err != nil {
		return dayValidation(day, "end_time", "end_time 格式无效: %q", e.EndTime)
	}
	if start >= end {
		return dayValidation(day, "start_time", "start_time(%s) 必须早于 end_time(%s)", e.StartTime, e.EndTime)
	}

	if err := validateRest(e, start, end); err != nil {
		return err
	}

	if e.AppointmentLength <= 0 {
		return dayValidation(day, "appointment_length", "appointment_length 必须大于 0")
	}
	if e.SimultaneousSlots < 1 {
		return dayValidation(day, "simultaneous_slots", "simultaneous_slots 不能小于 1")
	}
	if e.BreakBetween < 0 {
		return dayValidation(day, "break_between", "break_between 不能为负数")
	}
	if !model.ValidModality(e.Modality) {
		return dayValidation(day, "modality", "modality 无效: %q", e.Modality)
	}
	return nil
}

// validateRest 休息时段需成对出现，且位于 [start, end] 之内
func validateRest(e *model.ScheduleEntry, start, end int) error {
	day := e.DayOfWeek
	if e.RestStart == nil && e.RestEnd == nil {
		return nil
	}
	if e.RestStart == nil || e.RestEnd == nil {
		return dayValidation(day, "rest_start", "rest_start 与 rest_end 必须同时设置")
	}

	restStart, err := timeutil.TimeToMinutes(*e.RestStart)
	if err != nil {
		return dayValidation(day, "rest_start", "rest_start 格式无效: %q", *e.RestStart)
	}
	restEnd, err := timeutil.TimeToMinutes(*e.RestEnd)
	if err != nil {
		return dayValidation(day, "rest_end", "rest_end 格式无效: %q", *e.RestEnd)
	}
	if restStart >= restEnd {
		return dayValidation(day, "rest_start", "rest_start(%s) 必须早于 rest_end(%s)", *e.RestStart, *e.RestEnd)
	}
	if restStart < start || restEnd > end {
		return dayValidation(day, "rest_start", "休息时段 %s-%s 必须位于工作时间 %s-%s 之内",
			*e.RestStart, *e.RestEnd, e.StartTime, e.EndTime)
	}
	return nil
}

// ValidateBatch 校验整周草稿：条数、逐条约束、星期不重复
func ValidateBatch(entries []model.ScheduleEntry) error {
	if len(entries) > maxWeekEntries {
		return &ValidationError{Field: "entries", Message: "每周排班最多 7 条"}
	}

	seen := make(map[int]bool, len(entries))
	for i := range entries {
		if err := ValidateEntry(&entries[i]); err != nil {
			return err
		}
		day := entries[i].DayOfWeek
		if seen[day] {
			return dayValidation(day, "day_of_week", "同一请求中重复提交了该星期")
		}
		seen[day] = true
	}
	return nil
}

// CheckDayConflict 检查 day 是否已被其他有效排班占用（excludeID 为正在更新的排班）
func CheckDayConflict(existing []model.ScheduleEntry, day int, excludeID string) error {
	for i := range existing {
		e := &existing[i]
		if e.IsDeleted() || e.ScheduleEntryID == excludeID {
			continue
		}
		if e.DayOfWeek == day {
			return dayConflict(day)
		}
	}
	return nil
}
