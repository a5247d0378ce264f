package service

import (
	"errors"
	"fmt"
)

// ── 排班模块业务错误 ──

var (
	ErrPhysicianNotFound        = errors.New("医生不存在")
	ErrScheduleEntryNotFound    = errors.New("排班不存在")
	ErrExceptionNotFound        = errors.New("排班例外不存在")
	ErrScheduleConcurrentUpdate = errors.New("排班已被其他请求修改，请刷新后重试")
	ErrRangeTooLarge            = errors.New("查询区间超出允许的最大天数")
)

var dayNames = [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

// DayName 星期几的中文名，越界时返回数字
func DayName(day int) string {
	if day < 0 || day > 6 {
		return fmt.Sprintf("星期%d", day)
	}
	return dayNames[day]
}

// ValidationError 输入不满足排班约束
// Day / Date 用于定位出错的星期或日期
type ValidationError struct {
	Field   string
	Day     *int
	Date    string
	Message string
}

func (e *ValidationError) Error() string {
	return locate(e.Day, e.Date) + e.Message
}

// ConflictError 与已有数据冲突（星期已排班、日期已有例外）
type ConflictError struct {
	Day     *int
	Date    string
	Message string
}

func (e *ConflictError) Error() string {
	return locate(e.Day, e.Date) + e.Message
}

func locate(day *int, date string) string {
	switch {
	case day != nil:
		return DayName(*day) + ": "
	case date != "":
		return date + ": "
	}
	return ""
}

func dayValidation(day int, field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Day: &day, Message: fmt.Sprintf(format, args...)}
}

func dayConflict(day int) *ConflictError {
	return &ConflictError{Day: &day, Message: "该星期已存在排班"}
}

func dateConflict(date string) *ConflictError {
	return &ConflictError{Date: date, Message: "该日期已存在排班例外"}
}
