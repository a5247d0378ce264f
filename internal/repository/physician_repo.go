package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/internal/model"
)

// PhysicianRepository 医生目录（只读）
type PhysicianRepository interface {
	ResolveByUserID(ctx context.Context, tenantID, userID string) (*model.Physician, error)
}

type physicianRepo struct {
	db *gorm.DB
}

// NewPhysicianRepo 创建 PhysicianRepository 实例
func NewPhysicianRepo(db *gorm.DB) PhysicianRepository {
	return &physicianRepo{db: db}
}

// ResolveByUserID 将外部用户 ID 解析为租户内的医生档案
func (r *physicianRepo) ResolveByUserID(ctx context.Context, tenantID, userID string) (*model.Physician, error) {
	var p model.Physician
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
