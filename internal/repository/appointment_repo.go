package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/internal/model"
)

// AppointmentRepository 预约台账（只读）
type AppointmentRepository interface {
	ListInRange(ctx context.Context, tenantID, physicianID string, from, to time.Time) ([]model.Appointment, error)
}

type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo 创建 AppointmentRepository 实例
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

// ListInRange 查询开始时间落在 [from, to) 内且未取消的预约
func (r *appointmentRepo) ListInRange(ctx context.Context, tenantID, physicianID string, from, to time.Time) ([]model.Appointment, error) {
	var list []model.Appointment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND physician_id = ?", tenantID, physicianID).
		Where("starts_at >= ? AND starts_at < ?", from, to).
		Where("status NOT IN ?", []string{model.AppointmentStatusCancelled, model.AppointmentStatusCanceled}).
		Order("starts_at ASC").
		Find(&list).Error
	return list, err
}
