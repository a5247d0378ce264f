package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	ScheduleEntry     ScheduleEntryRepository
	ScheduleException ScheduleExceptionRepository
	Physician         PhysicianRepository
	Appointment       AppointmentRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                db,
		ScheduleEntry:     NewScheduleEntryRepo(db),
		ScheduleException: NewScheduleExceptionRepo(db),
		Physician:         NewPhysicianRepo(db),
		Appointment:       NewAppointmentRepo(db),
	}
}

// WithTx 返回绑定到事务的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在单个事务中执行 fn，fn 返回错误或 ctx 取消时整体回滚
// 未绑定数据库（单元测试中的 mock 聚合）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
