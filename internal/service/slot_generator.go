package service

import (
	"fmt"
	"time"

	"github.com/SEGIMED/back-sub000/internal/model"
	"github.com/SEGIMED/back-sub000/pkg/timeutil"
)

// Slot 可预约时段（查询时派生，不落库）
type Slot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// BlockedIntervals 将预约转换为 dayStart 当天的墙钟分钟区间，已取消的预约不占用号源
// 跨日的预约按日历天数偏移（前一天为负，后一天超过 1440）
func BlockedIntervals(appointments []model.Appointment, dayStart time.Time) []timeutil.Interval {
	blocked := make([]timeutil.Interval, 0, len(appointments))
	for i := range appointments {
		a := &appointments[i]
		if a.IsCancelled() {
			continue
		}
		blocked = append(blocked, timeutil.Interval{
			Start: wallMinutes(a.StartsAt, dayStart),
			End:   wallMinutes(a.EndsAt, dayStart),
		})
	}
	return blocked
}

// wallMinutes 返回 t 在 dayStart 时区下相对当天 00:00 的墙钟分钟数，不受夏令时切换影响
func wallMinutes(t, dayStart time.Time) int {
	local := t.In(dayStart.Location())
	y, m, d := local.Date()
	dy, dm, dd := dayStart.Date()
	days := int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Sub(time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)).Hours() / 24)
	return days*24*60 + local.Hour()*60 + local.Minute()
}

// wallClock 返回 dayStart 当天第 minutes 分钟对应的墙钟时刻
func wallClock(dayStart time.Time, minutes int) time.Time {
	y, m, d := dayStart.Date()
	return time.Date(y, m, d, 0, minutes, 0, 0, dayStart.Location())
}

// GenerateSlots 按排班生成 dayStart 当天的可预约时段
//
// 候选起点从 start_time 开始，步长为 appointment_length + break_between，
// 候选区间需完整落在 end_time 之前。以下候选被跳过：
//   - 与休息时段相交（起点在休息时段内，或起点在其前但延伸进入）
//   - 起点早于 now
//   - 与 blocked 的半开区间重叠数达到 simultaneous_slots
func GenerateSlots(entry *model.ScheduleEntry, dayStart time.Time, blocked []timeutil.Interval, now time.Time) ([]Slot, error) {
	if !entry.IsWorkingDay {
		return []Slot{}, nil
	}

	start, err := timeutil.TimeToMinutes(entry.StartTime)
	if err != nil {
		return nil, fmt.Errorf("排班 %s start_time 无效: %w", entry.ScheduleEntryID, err)
	}
	end, err := timeutil.TimeToMinutes(entry.EndTime)
	if err != nil {
		return nil, fmt.Errorf("排班 %s end_time 无效: %w", entry.ScheduleEntryID, err)
	}

	length := entry.AppointmentLength
	if length <= 0 {
		return nil, fmt.Errorf("排班 %s appointment_length 无效: %d", entry.ScheduleEntryID, length)
	}
	step := length + max(entry.BreakBetween, 0)
	capacity := max(entry.SimultaneousSlots, 1)

	var rest *timeutil.Interval
	if entry.HasRest() {
		rs, err1 := timeutil.TimeToMinutes(*entry.RestStart)
		re, err2 := timeutil.TimeToMinutes(*entry.RestEnd)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("排班 %s 休息时段无效", entry.ScheduleEntryID)
		}
		rest = &timeutil.Interval{Start: rs, End: re}
	}

	slots := make([]Slot, 0, (end-start)/step+1)
	for t := start; t+length <= end; t += step {
		candidate := timeutil.Interval{Start: t, End: t + length}

		if rest != nil && candidate.Overlaps(*rest) {
			continue
		}

		slotStart := wallClock(dayStart, t)
		if slotStart.Before(now) {
			continue
		}

		overlapping := 0
		for _, b := range blocked {
			if b.Overlaps(candidate) {
				overlapping++
			}
		}
		if overlapping >= capacity {
			continue
		}

		slots = append(slots, Slot{
			Start:     slotStart,
			End:       wallClock(dayStart, t+length),
			Available: true,
		})
	}
	return slots, nil
}
