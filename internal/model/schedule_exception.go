package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleException 指定日期的排班例外 — 对应 schedule_exceptions
// is_available=false 表示当天停诊，覆盖每周排班
type ScheduleException struct {
	ScheduleExceptionID string  `gorm:"type:uuid;primaryKey"                                                                        json:"schedule_exception_id"`
	TenantID            string  `gorm:"type:varchar(64);not null;uniqueIndex:uniq_schedule_exceptions_active_date,where:deleted_at IS NULL" json:"tenant_id"`
	PhysicianID         string  `gorm:"type:uuid;not null;uniqueIndex:uniq_schedule_exceptions_active_date"                         json:"physician_id"`
	ExceptionDate       string  `gorm:"type:varchar(10);not null;uniqueIndex:uniq_schedule_exceptions_active_date"                  json:"exception_date"` // YYYY-MM-DD
	IsAvailable         bool    `gorm:"not null"                                                                                    json:"is_available"`
	Reason              *string `gorm:"type:varchar(255)"                                                                           json:"reason,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (ScheduleException) TableName() string { return "schedule_exceptions" }

// BeforeCreate 生成主键
func (e *ScheduleException) BeforeCreate(*gorm.DB) error {
	if e.ScheduleExceptionID == "" {
		e.ScheduleExceptionID = uuid.New().String()
	}
	return nil
}
