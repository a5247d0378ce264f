package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/internal/model"
)

// ScheduleExceptionRepository 排班例外数据访问接口
type ScheduleExceptionRepository interface {
	ListByPhysician(ctx context.Context, tenantID, physicianID string) ([]model.ScheduleException, error)
	ListInRange(ctx context.Context, tenantID, physicianID, fromDate, toDate string) ([]model.ScheduleException, error)
	GetByID(ctx context.Context, tenantID, id string) (*model.ScheduleException, error)
	GetByDate(ctx context.Context, tenantID, physicianID, date string) (*model.ScheduleException, error)
	Create(ctx context.Context, exception *model.ScheduleException) error
	SoftDelete(ctx context.Context, tenantID, id, deletedBy string) error
}

type scheduleExceptionRepo struct {
	db *gorm.DB
}

// NewScheduleExceptionRepo 创建 ScheduleExceptionRepository 实例
func NewScheduleExceptionRepo(db *gorm.DB) ScheduleExceptionRepository {
	return &scheduleExceptionRepo{db: db}
}

func (r *scheduleExceptionRepo) ListByPhysician(ctx context.Context, tenantID, physicianID string) ([]model.ScheduleException, error) {
	var list []model.ScheduleException
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND physician_id = ?", tenantID, physicianID).
		Order("exception_date ASC").
		Find(&list).Error
	return list, err
}

// ListInRange 日期闭区间 [fromDate, toDate]，YYYY-MM-DD 字典序即日期序
func (r *scheduleExceptionRepo) ListInRange(ctx context.Context, tenantID, physicianID, fromDate, toDate string) ([]model.ScheduleException, error) {
	var list []model.ScheduleException
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND physician_id = ?", tenantID, physicianID).
		Where("exception_date >= ? AND exception_date <= ?", fromDate, toDate).
		Order("exception_date ASC").
		Find(&list).Error
	return list, err
}

func (r *scheduleExceptionRepo) GetByID(ctx context.Context, tenantID, id string) (*model.ScheduleException, error) {
	var ex model.ScheduleException
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND schedule_exception_id = ?", tenantID, id).
		First(&ex).Error
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

func (r *scheduleExceptionRepo) GetByDate(ctx context.Context, tenantID, physicianID, date string) (*model.ScheduleException, error) {
	var ex model.ScheduleException
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND physician_id = ? AND exception_date = ?", tenantID, physicianID, date).
		First(&ex).Error
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

func (r *scheduleExceptionRepo) Create(ctx context.Context, exception *model.ScheduleException) error {
	return r.db.WithContext(ctx).Create(exception).Error
}

func (r *scheduleExceptionRepo) SoftDelete(ctx context.Context, tenantID, id, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.ScheduleException{}).
		Where("tenant_id = ? AND schedule_exception_id = ?", tenantID, id).
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
