package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 就诊方式
const (
	ModalityInPerson = "in_person"
	ModalityRemote   = "remote"
	ModalityHybrid   = "hybrid"
)

// ValidModality 是否为受支持的就诊方式
func ValidModality(m string) bool {
	switch m {
	case ModalityInPerson, ModalityRemote, ModalityHybrid:
		return true
	}
	return false
}

// ScheduleEntry 医生每周固定排班 — 对应 schedule_entries
// 同一租户下同一医生每个星期几至多一条未删除记录（部分唯一索引）
type ScheduleEntry struct {
	ScheduleEntryID   string  `gorm:"type:uuid;primaryKey"                                                                 json:"schedule_entry_id"`
	TenantID          string  `gorm:"type:varchar(64);not null;uniqueIndex:uniq_schedule_entries_active_day,where:deleted_at IS NULL" json:"tenant_id"`
	PhysicianID       string  `gorm:"type:uuid;not null;uniqueIndex:uniq_schedule_entries_active_day"                      json:"physician_id"`
	DayOfWeek         int     `gorm:"type:smallint;not null;uniqueIndex:uniq_schedule_entries_active_day"                  json:"day_of_week"` // 0=周日 .. 6=周六
	StartTime         string  `gorm:"type:varchar(5);not null"                                                             json:"start_time"`
	EndTime           string  `gorm:"type:varchar(5);not null"                                                             json:"end_time"`
	RestStart         *string `gorm:"type:varchar(5)"                                                                      json:"rest_start,omitempty"`
	RestEnd           *string `gorm:"type:varchar(5)"                                                                      json:"rest_end,omitempty"`
	AppointmentLength int     `gorm:"not null"                                                                             json:"appointment_length"` // 分钟
	SimultaneousSlots int     `gorm:"not null"                                                                             json:"simultaneous_slots"`
	BreakBetween      int     `gorm:"not null"                                                                             json:"break_between"` // 分钟
	Modality          string  `gorm:"type:varchar(20);not null"                                                            json:"modality"`
	IsWorkingDay      bool    `gorm:"not null"                                                                             json:"is_working_day"`
	VersionedModel
}

// TableName 指定表名
func (ScheduleEntry) TableName() string { return "schedule_entries" }

// BeforeCreate 生成主键并初始化版本号
func (e *ScheduleEntry) BeforeCreate(*gorm.DB) error {
	if e.ScheduleEntryID == "" {
		e.ScheduleEntryID = uuid.New().String()
	}
	if e.Version == 0 {
		e.Version = 1
	}
	return nil
}

// HasRest 是否配置了完整的休息时段
func (e *ScheduleEntry) HasRest() bool {
	return e.RestStart != nil && e.RestEnd != nil
}
