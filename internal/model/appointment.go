package model

import "time"

// 预约状态中表示已取消的取值（历史数据存在两种拼写）
const (
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusCanceled  = "canceled"
)

// Appointment 预约记录 — 对应 appointments
// 由预约子系统维护，本服务只读，仅用于计算号源占用
type Appointment struct {
	AppointmentID string    `gorm:"type:uuid;primaryKey"      json:"appointment_id"`
	TenantID      string    `gorm:"type:varchar(64);not null" json:"tenant_id"`
	PhysicianID   string    `gorm:"type:uuid;not null"        json:"physician_id"`
	StartsAt      time.Time `gorm:"not null"                  json:"starts_at"`
	EndsAt        time.Time `gorm:"not null"                  json:"ends_at"`
	Status        string    `gorm:"type:varchar(20);not null" json:"status"`
	SoftDeleteModel
}

// TableName 指定表名
func (Appointment) TableName() string { return "appointments" }

// IsCancelled 是否已取消
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled || a.Status == AppointmentStatusCanceled
}
