package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/config"
	"github.com/SEGIMED/back-sub000/internal/model"
	"github.com/SEGIMED/back-sub000/internal/repository"
	pkgerrors "github.com/SEGIMED/back-sub000/pkg/errors"
	"github.com/SEGIMED/back-sub000/pkg/messaging"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Schedule  ScheduleService
	Exception ExceptionService
	Slot      SlotService
	Export    ExportService
	Calendar  CalendarService
}

// NewService 创建 Service 聚合
// publisher 为 nil 时不发布领域事件
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	publisher messaging.Publisher,
	logger *zap.Logger,
) (*Service, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("加载排班时区失败: %w", err)
	}
	if publisher == nil {
		publisher = messaging.NewNoopPublisher()
	}

	slot := NewSlotService(repo, SlotOptions{
		Location:     loc,
		MaxRangeDays: cfg.Schedule.MaxRangeDays,
		RangeWorkers: cfg.Schedule.RangeWorkers,
	}, logger)

	return &Service{
		Schedule:  NewScheduleService(repo, publisher, logger),
		Exception: NewExceptionService(repo, publisher, logger),
		Slot:      slot,
		Export:    NewExportService(repo, logger),
		Calendar:  NewCalendarService(slot, logger),
	}, nil
}

// resolvePhysician 通过医生目录将用户 ID 解析为租户内的医生
func resolvePhysician(ctx context.Context, repo *repository.Repository, logger *zap.Logger, tenantID, userID string) (*model.Physician, error) {
	if tenantID == "" {
		return nil, pkgerrors.ErrTenantRequired
	}
	p, err := repo.Physician.ResolveByUserID(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhysicianNotFound
		}
		logger.Error("查询医生失败",
			zap.String("tenant_id", tenantID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}

const timestampLayout = "2006-01-02T15:04:05Z07:00"
