package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/internal/model"
	pkgerrors "github.com/SEGIMED/back-sub000/pkg/errors"
)

// ScheduleEntryRepository 每周排班数据访问接口
// 所有方法均按 tenant_id 过滤
type ScheduleEntryRepository interface {
	ListByPhysician(ctx context.Context, tenantID, physicianID string) ([]model.ScheduleEntry, error)
	GetByID(ctx context.Context, tenantID, id string) (*model.ScheduleEntry, error)
	GetByDay(ctx context.Context, tenantID, physicianID string, dayOfWeek int) (*model.ScheduleEntry, error)
	Create(ctx context.Context, entry *model.ScheduleEntry) error
	Update(ctx context.Context, entry *model.ScheduleEntry) error
	SoftDelete(ctx context.Context, tenantID, id, deletedBy string) error
	SoftDeleteAll(ctx context.Context, tenantID, physicianID, deletedBy string) (int64, error)
	LockPhysician(ctx context.Context, tenantID, physicianID string) error
}

type scheduleEntryRepo struct {
	db *gorm.DB
}

// NewScheduleEntryRepo 创建 ScheduleEntryRepository 实例
func NewScheduleEntryRepo(db *gorm.DB) ScheduleEntryRepository {
	return &scheduleEntryRepo{db: db}
}

func (r *scheduleEntryRepo) ListByPhysician(ctx context.Context, tenantID, physicianID string) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND physician_id = ?", tenantID, physicianID).
		Order("day_of_week ASC").
		Find(&entries).Error
	return entries, err
}

func (r *scheduleEntryRepo) GetByID(ctx context.Context, tenantID, id string) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND schedule_entry_id = ?", tenantID, id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleEntryRepo) GetByDay(ctx context.Context, tenantID, physicianID string, dayOfWeek int) (*model.ScheduleEntry, error) {
	var entry model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND physician_id = ? AND day_of_week = ?", tenantID, physicianID, dayOfWeek).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *scheduleEntryRepo) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Update 乐观锁更新，版本号不匹配返回 ErrOptimisticLock
func (r *scheduleEntryRepo) Update(ctx context.Context, entry *model.ScheduleEntry) error {
	oldVersion := entry.Version
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.ScheduleEntry{}).
		Where("tenant_id = ? AND schedule_entry_id = ? AND version = ?",
			entry.TenantID, entry.ScheduleEntryID, oldVersion).
		Updates(map[string]interface{}{
			"day_of_week":        entry.DayOfWeek,
			"start_time":         entry.StartTime,
			"end_time":           entry.EndTime,
			"rest_start":         entry.RestStart,
			"rest_end":           entry.RestEnd,
			"appointment_length": entry.AppointmentLength,
			"simultaneous_slots": entry.SimultaneousSlots,
			"break_between":      entry.BreakBetween,
			"modality":           entry.Modality,
			"is_working_day":     entry.IsWorkingDay,
			"updated_by":         entry.UpdatedBy,
			"version":            oldVersion + 1,
			"updated_at":         now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version = oldVersion + 1
	entry.UpdatedAt = now
	return nil
}

// SoftDelete 软删除单条排班，记录不存在返回 gorm.ErrRecordNotFound
func (r *scheduleEntryRepo) SoftDelete(ctx context.Context, tenantID, id, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.ScheduleEntry{}).
		Where("tenant_id = ? AND schedule_entry_id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scheduleEntryRepo) SoftDeleteAll(ctx context.Context, tenantID, physicianID, deletedBy string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.ScheduleEntry{}).
		Where("tenant_id = ? AND physician_id = ?", tenantID, physicianID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// LockPhysician 获取事务级咨询锁，串行化同一医生的整周写入
// 需在事务内调用；非 PostgreSQL 方言（测试用 SQLite）跳过
func (r *scheduleEntryRepo) LockPhysician(ctx context.Context, tenantID, physicianID string) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "schedule:"+tenantID+":"+physicianID).
		Error
}
