package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/internal/dto"
	"github.com/SEGIMED/back-sub000/internal/model"
	"github.com/SEGIMED/back-sub000/internal/repository"
	pkgerrors "github.com/SEGIMED/back-sub000/pkg/errors"
	"github.com/SEGIMED/back-sub000/pkg/messaging"
	"github.com/SEGIMED/back-sub000/pkg/timeutil"
)

// ExceptionService 排班例外业务接口
type ExceptionService interface {
	ListExceptions(ctx context.Context, tenantID, userID string) ([]dto.ExceptionResponse, error)
	CreateException(ctx context.Context, tenantID, userID string, req *dto.CreateExceptionRequest, callerID string) (*dto.ExceptionResponse, error)
	DeleteException(ctx context.Context, tenantID, id, callerID string) error
}

type exceptionService struct {
	repo      *repository.Repository
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewExceptionService 创建 ExceptionService 实例
func NewExceptionService(repo *repository.Repository, publisher messaging.Publisher, logger *zap.Logger) ExceptionService {
	return &exceptionService{repo: repo, publisher: publisher, logger: logger}
}

func (s *exceptionService) ListExceptions(ctx context.Context, tenantID, userID string) ([]dto.ExceptionResponse, error) {
	physician, err := resolvePhysician(ctx, s.repo, s.logger, tenantID, userID)
	if err != nil {
		return nil, err
	}

	list, err := s.repo.ScheduleException.ListByPhysician(ctx, tenantID, physician.PhysicianID)
	if err != nil {
		s.logger.Error("查询排班例外失败", zap.String("physician_id", physician.PhysicianID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ExceptionResponse, 0, len(list))
	for i := range list {
		result = append(result, toExceptionResponse(&list[i]))
	}
	return result, nil
}

func (s *exceptionService) CreateException(ctx context.Context, tenantID, userID string, req *dto.CreateExceptionRequest, callerID string) (*dto.ExceptionResponse, error) {
	// 只取日历日，时区无关
	if _, err := timeutil.ParseDate(req.Date, time.UTC); err != nil {
		return nil, &ValidationError{Field: "date", Date: req.Date, Message: "日期格式无效，应为 YYYY-MM-DD"}
	}

	physician, err := resolvePhysician(ctx, s.repo, s.logger, tenantID, userID)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.ScheduleException.GetByDate(ctx, tenantID, physician.PhysicianID, req.Date)
	switch {
	case err == nil:
		return nil, dateConflict(req.Date)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询排班例外失败", zap.String("date", req.Date), zap.Error(err))
		return nil, err
	}

	ex := &model.ScheduleException{
		TenantID:      tenantID,
		PhysicianID:   physician.PhysicianID,
		ExceptionDate: req.Date,
		IsAvailable:   req.IsAvailable,
		Reason:        copyStr(req.Reason),
	}
	ex.CreatedBy = &callerID
	ex.UpdatedBy = &callerID

	if err := s.repo.ScheduleException.Create(ctx, ex); err != nil {
		// 并发创建由部分唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, dateConflict(req.Date)
		}
		s.logger.Error("创建排班例外失败", zap.String("date", req.Date), zap.Error(err))
		return nil, err
	}

	resp := toExceptionResponse(ex)
	publishEvent(ctx, s.publisher, s.logger,
		messaging.NewEvent(EventExceptionCreated, tenantID, physician.PhysicianID, resp))
	return &resp, nil
}

func (s *exceptionService) DeleteException(ctx context.Context, tenantID, id, callerID string) error {
	if tenantID == "" {
		return pkgerrors.ErrTenantRequired
	}

	ex, err := s.repo.ScheduleException.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExceptionNotFound
		}
		s.logger.Error("查询排班例外失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.ScheduleException.SoftDelete(ctx, tenantID, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExceptionNotFound
		}
		s.logger.Error("删除排班例外失败", zap.String("id", id), zap.Error(err))
		return err
	}

	publishEvent(ctx, s.publisher, s.logger,
		messaging.NewEvent(EventExceptionDeleted, tenantID, ex.PhysicianID, map[string]interface{}{
			"id":   id,
			"date": ex.ExceptionDate,
		}))
	return nil
}

func toExceptionResponse(ex *model.ScheduleException) dto.ExceptionResponse {
	return dto.ExceptionResponse{
		ID:          ex.ScheduleExceptionID,
		PhysicianID: ex.PhysicianID,
		Date:        ex.ExceptionDate,
		IsAvailable: ex.IsAvailable,
		Reason:      ex.Reason,
		Deleted:     ex.IsDeleted(),
		CreatedAt:   ex.CreatedAt.Format(timestampLayout),
	}
}
