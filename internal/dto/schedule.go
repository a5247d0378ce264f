package dto

// ── 每周排班 DTO ──

// ScheduleEntryRequest 单日排班（单条创建与整周覆盖共用）
// 取值范围在 Service 层统一校验，以便错误信息定位到具体星期与字段
type ScheduleEntryRequest struct {
	DayOfWeek         *int    `json:"day_of_week"        binding:"required"` // 0=周日 .. 6=周六
	StartTime         string  `json:"start_time"         binding:"required"` // "09:00"
	EndTime           string  `json:"end_time"           binding:"required"` // "17:00"
	RestStart         *string `json:"rest_start"`
	RestEnd           *string `json:"rest_end"`
	AppointmentLength *int    `json:"appointment_length"` // 分钟，缺省或非正数由 Service 报告
	SimultaneousSlots *int    `json:"simultaneous_slots"` // 默认 1
	BreakBetween      *int    `json:"break_between"`      // 默认 0
	Modality          string  `json:"modality"`           // 默认 in_person
	IsWorkingDay      *bool   `json:"is_working_day"`     // 默认 true
}

// UpsertWeekRequest 整周排班覆盖请求，未出现的星期将被删除
type UpsertWeekRequest struct {
	Entries []ScheduleEntryRequest `json:"entries" binding:"required,dive"`
}

// UpdateScheduleEntryRequest 单条排班局部更新
type UpdateScheduleEntryRequest struct {
	DayOfWeek         *int    `json:"day_of_week"`
	StartTime         *string `json:"start_time"`
	EndTime           *string `json:"end_time"`
	RestStart         *string `json:"rest_start"`
	RestEnd           *string `json:"rest_end"`
	ClearRest         bool    `json:"clear_rest"` // true 时移除休息时段
	AppointmentLength *int    `json:"appointment_length"`
	SimultaneousSlots *int    `json:"simultaneous_slots"`
	BreakBetween      *int    `json:"break_between"`
	Modality          *string `json:"modality"`
	IsWorkingDay      *bool   `json:"is_working_day"`
	Version           *int    `json:"version"` // 客户端持有的版本号，不传则以当前版本为准
}

// ScheduleEntryResponse 排班信息响应
type ScheduleEntryResponse struct {
	ID                string  `json:"id"`
	PhysicianID       string  `json:"physician_id"`
	DayOfWeek         int     `json:"day_of_week"`
	StartTime         string  `json:"start_time"`
	EndTime           string  `json:"end_time"`
	RestStart         *string `json:"rest_start,omitempty"`
	RestEnd           *string `json:"rest_end,omitempty"`
	AppointmentLength int     `json:"appointment_length"`
	SimultaneousSlots int     `json:"simultaneous_slots"`
	BreakBetween      int     `json:"break_between"`
	Modality          string  `json:"modality"`
	IsWorkingDay      bool    `json:"is_working_day"`
	Deleted           bool    `json:"deleted"`
	DeletedAt         *string `json:"deleted_at,omitempty"`
	Version           int     `json:"version"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// DeleteAllResponse 清空排班响应
type DeleteAllResponse struct {
	Deleted int64 `json:"deleted"`
}
