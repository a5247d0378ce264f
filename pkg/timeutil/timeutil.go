// Package timeutil 排班使用的时刻与日期换算
// 时刻统一为 "HH:MM"，内部以当天零点起的分钟数做整数运算
package timeutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeFormat 时刻不是合法的 HH:MM
var ErrInvalidTimeFormat = errors.New("时间格式无效，应为 HH:MM")

// ErrInvalidDateFormat 日期不是合法的 YYYY-MM-DD
var ErrInvalidDateFormat = errors.New("日期格式无效，应为 YYYY-MM-DD")

// DateLayout 日历日期格式
const DateLayout = "2006-01-02"

// MinutesPerDay 一天的分钟数
const MinutesPerDay = 24 * 60

// TimeToMinutes 将 "HH:MM" 转换为零点起的分钟数
func TimeToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
		}
	}

	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return hour*60 + minute, nil
}

// MinutesToTime 将分钟数格式化为 "HH:MM"
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ValidateTimeRange start 严格早于 end 时返回 true，任一格式无效返回 false
func ValidateTimeRange(start, end string) bool {
	s, err := TimeToMinutes(start)
	if err != nil {
		return false
	}
	e, err := TimeToMinutes(end)
	if err != nil {
		return false
	}
	return s < e
}

// IsValidTime 是否为合法的 HH:MM
func IsValidTime(s string) bool {
	_, err := TimeToMinutes(s)
	return err == nil
}

// ── 区间 ──

// Interval 半开区间 [Start, End)，单位为分钟
type Interval struct {
	Start int
	End   int
}

// Overlaps 半开区间相交判断，首尾相接不算重叠
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// ── 日期 ──

// ParseDate 在指定时区解析 YYYY-MM-DD，返回当天零点
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return d, nil
}

// StartOfDay 返回 t 在 loc 时区当天的零点
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
