package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/internal/dto"
	"github.com/SEGIMED/back-sub000/internal/model"
	"github.com/SEGIMED/back-sub000/internal/repository"
	pkgerrors "github.com/SEGIMED/back-sub000/pkg/errors"
	"github.com/SEGIMED/back-sub000/pkg/messaging"
	"github.com/SEGIMED/back-sub000/pkg/telemetry"
)

// ScheduleService 每周排班业务接口
// userID 为医生在认证系统中的用户 ID，由医生目录解析为 physician_id
type ScheduleService interface {
	ListSchedule(ctx context.Context, tenantID, userID string) ([]dto.ScheduleEntryResponse, error)
	GetScheduleEntry(ctx context.Context, tenantID, id string) (*dto.ScheduleEntryResponse, error)
	CreateScheduleEntry(ctx context.Context, tenantID, userID string, req *dto.ScheduleEntryRequest, callerID string) (*dto.ScheduleEntryResponse, error)
	UpdateScheduleEntry(ctx context.Context, tenantID, id string, req *dto.UpdateScheduleEntryRequest, callerID string) (*dto.ScheduleEntryResponse, error)
	UpsertWeekSchedule(ctx context.Context, tenantID, userID string, req *dto.UpsertWeekRequest, callerID string) ([]dto.ScheduleEntryResponse, error)
	DeleteScheduleEntry(ctx context.Context, tenantID, id, callerID string) error
	DeleteAllSchedules(ctx context.Context, tenantID, userID, callerID string) (int64, error)
}

type scheduleService struct {
	repo      *repository.Repository
	publisher messaging.Publisher
	logger    *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, publisher messaging.Publisher, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, publisher: publisher, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *scheduleService) ListSchedule(ctx context.Context, tenantID, userID string) ([]dto.ScheduleEntryResponse, error) {
	physician, err := resolvePhysician(ctx, s.repo, s.logger, tenantID, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ScheduleEntry.ListByPhysician(ctx, tenantID, physician.PhysicianID)
	if err != nil {
		s.logger.Error("查询排班失败", zap.String("physician_id", physician.PhysicianID), zap.Error(err))
		return nil, err
	}
	return toEntryResponses(entries), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *scheduleService) GetScheduleEntry(ctx context.Context, tenantID, id string) (*dto.ScheduleEntryResponse, error) {
	entry, err := s.getEntry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := toEntryResponse(entry)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) CreateScheduleEntry(ctx context.Context, tenantID, userID string, req *dto.ScheduleEntryRequest, callerID string) (*dto.ScheduleEntryResponse, error) {
	physician, err := resolvePhysician(ctx, s.repo, s.logger, tenantID, userID)
	if err != nil {
		return nil, err
	}

	entry := entryFromRequest(req)
	entry.TenantID = tenantID
	entry.PhysicianID = physician.PhysicianID
	entry.CreatedBy = &callerID
	entry.UpdatedBy = &callerID

	if err := ValidateEntry(&entry); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.ScheduleEntry.LockPhysician(ctx, tenantID, physician.PhysicianID); err != nil {
			return err
		}
		existing, err := tx.ScheduleEntry.ListByPhysician(ctx, tenantID, physician.PhysicianID)
		if err != nil {
			return err
		}
		if err := CheckDayConflict(existing, entry.DayOfWeek, ""); err != nil {
			return err
		}
		return tx.ScheduleEntry.Create(ctx, &entry)
	})
	if err != nil {
		return nil, s.mapWriteError(err, entry.DayOfWeek, "创建排班失败")
	}

	s.logger.Info("排班已创建",
		zap.String("tenant_id", tenantID),
		zap.String("physician_id", physician.PhysicianID),
		zap.Int("day_of_week", entry.DayOfWeek),
	)

	resp := toEntryResponse(&entry)
	publishEvent(ctx, s.publisher, s.logger,
		messaging.NewEvent(EventEntryCreated, tenantID, physician.PhysicianID, resp))
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *scheduleService) UpdateScheduleEntry(ctx context.Context, tenantID, id string, req *dto.UpdateScheduleEntryRequest, callerID string) (*dto.ScheduleEntryResponse, error) {
	entry, err := s.getEntry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != entry.Version {
		return nil, ErrScheduleConcurrentUpdate
	}

	oldDay := entry.DayOfWeek
	mergeUpdate(entry, req)
	entry.UpdatedBy = &callerID

	// 合并后整体校验：只提交一端时间时，另一端取自当前存储值并一并复核
	if err := ValidateEntry(entry); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.ScheduleEntry.LockPhysician(ctx, tenantID, entry.PhysicianID); err != nil {
			return err
		}
		if entry.DayOfWeek != oldDay {
			existing, err := tx.ScheduleEntry.ListByPhysician(ctx, tenantID, entry.PhysicianID)
			if err != nil {
				return err
			}
			if err := CheckDayConflict(existing, entry.DayOfWeek, entry.ScheduleEntryID); err != nil {
				return err
			}
		}
		return tx.ScheduleEntry.Update(ctx, entry)
	})
	if err != nil {
		return nil, s.mapWriteError(err, entry.DayOfWeek, "更新排班失败")
	}

	resp := toEntryResponse(entry)
	publishEvent(ctx, s.publisher, s.logger,
		messaging.NewEvent(EventEntryUpdated, tenantID, entry.PhysicianID, resp))
	return &resp, nil
}

// ────────────────────── UpsertWeek ──────────────────────

func (s *scheduleService) UpsertWeekSchedule(ctx context.Context, tenantID, userID string, req *dto.UpsertWeekRequest, callerID string) ([]dto.ScheduleEntryResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "schedule.upsert_week",
		attribute.String("tenant_id", tenantID),
		attribute.Int("entries", len(req.Entries)),
	)
	defer span.End()

	physician, err := resolvePhysician(ctx, s.repo, s.logger, tenantID, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	desired := make([]model.ScheduleEntry, 0, len(req.Entries))
	for i := range req.Entries {
		e := entryFromRequest(&req.Entries[i])
		e.TenantID = tenantID
		e.PhysicianID = physician.PhysicianID
		e.CreatedBy = &callerID
		e.UpdatedBy = &callerID
		desired = append(desired, e)
	}

	// 全部校验通过后才进入事务，任何失败都不产生写入
	if err := ValidateBatch(desired); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var (
		plan   ReconcilePlan
		result []model.ScheduleEntry
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.ScheduleEntry.LockPhysician(ctx, tenantID, physician.PhysicianID); err != nil {
			return err
		}
		existing, err := tx.ScheduleEntry.ListByPhysician(ctx, tenantID, physician.PhysicianID)
		if err != nil {
			return err
		}

		plan = Reconcile(existing, desired)

		for i := range plan.ToSoftDelete {
			if err := tx.ScheduleEntry.SoftDelete(ctx, tenantID, plan.ToSoftDelete[i].ScheduleEntryID, callerID); err != nil {
				return err
			}
		}
		for i := range plan.ToUpdate {
			plan.ToUpdate[i].UpdatedBy = &callerID
			if err := tx.ScheduleEntry.Update(ctx, &plan.ToUpdate[i]); err != nil {
				return err
			}
		}
		for i := range plan.ToCreate {
			if err := tx.ScheduleEntry.Create(ctx, &plan.ToCreate[i]); err != nil {
				return err
			}
		}

		result, err = tx.ScheduleEntry.ListByPhysician(ctx, tenantID, physician.PhysicianID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.mapWriteError(err, -1, "整周排班覆盖失败")
	}

	s.logger.Info("整周排班已覆盖",
		zap.String("tenant_id", tenantID),
		zap.String("physician_id", physician.PhysicianID),
		zap.Int("created", len(plan.ToCreate)),
		zap.Int("updated", len(plan.ToUpdate)),
		zap.Int("deleted", len(plan.ToSoftDelete)),
	)

	resp := toEntryResponses(result)
	if !plan.Empty() {
		publishEvent(ctx, s.publisher, s.logger,
			messaging.NewEvent(EventWeekUpserted, tenantID, physician.PhysicianID, map[string]interface{}{
				"created": len(plan.ToCreate),
				"updated": len(plan.ToUpdate),
				"deleted": len(plan.ToSoftDelete),
				"entries": resp,
			}))
	}
	return resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) DeleteScheduleEntry(ctx context.Context, tenantID, id, callerID string) error {
	entry, err := s.getEntry(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if err := s.repo.ScheduleEntry.SoftDelete(ctx, tenantID, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleEntryNotFound
		}
		s.logger.Error("删除排班失败", zap.String("id", id), zap.Error(err))
		return err
	}

	publishEvent(ctx, s.publisher, s.logger,
		messaging.NewEvent(EventEntryDeleted, tenantID, entry.PhysicianID, map[string]interface{}{
			"id":          id,
			"day_of_week": entry.DayOfWeek,
		}))
	return nil
}

func (s *scheduleService) DeleteAllSchedules(ctx context.Context, tenantID, userID, callerID string) (int64, error) {
	physician, err := resolvePhysician(ctx, s.repo, s.logger, tenantID, userID)
	if err != nil {
		return 0, err
	}

	var deleted int64
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.ScheduleEntry.LockPhysician(ctx, tenantID, physician.PhysicianID); err != nil {
			return err
		}
		n, err := tx.ScheduleEntry.SoftDeleteAll(ctx, tenantID, physician.PhysicianID, callerID)
		deleted = n
		return err
	})
	if err != nil {
		s.logger.Error("清空排班失败", zap.String("physician_id", physician.PhysicianID), zap.Error(err))
		return 0, err
	}

	if deleted > 0 {
		publishEvent(ctx, s.publisher, s.logger,
			messaging.NewEvent(EventScheduleCleared, tenantID, physician.PhysicianID, map[string]interface{}{
				"deleted": deleted,
			}))
	}
	return deleted, nil
}

// ── 内部辅助方法 ──

func (s *scheduleService) getEntry(ctx context.Context, tenantID, id string) (*model.ScheduleEntry, error) {
	if tenantID == "" {
		return nil, pkgerrors.ErrTenantRequired
	}
	entry, err := s.repo.ScheduleEntry.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleEntryNotFound
		}
		s.logger.Error("查询排班失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// mapWriteError 将存储层错误映射为业务错误，day < 0 表示无法定位到单个星期
func (s *scheduleService) mapWriteError(err error, day int, msg string) error {
	var (
		ve *ValidationError
		ce *ConflictError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ce):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if day < 0 {
			return ErrScheduleConcurrentUpdate
		}
		return dayConflict(day)
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		return ErrScheduleConcurrentUpdate
	}
	s.logger.Error(msg, zap.Error(err))
	return err
}

func entryFromRequest(req *dto.ScheduleEntryRequest) model.ScheduleEntry {
	e := model.ScheduleEntry{
		DayOfWeek:         -1,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		RestStart:         copyStr(req.RestStart),
		RestEnd:           copyStr(req.RestEnd),
		SimultaneousSlots: 1,
		BreakBetween:      0,
		Modality:          model.ModalityInPerson,
		IsWorkingDay:      true,
	}
	if req.DayOfWeek != nil {
		e.DayOfWeek = *req.DayOfWeek
	}
	if req.AppointmentLength != nil {
		e.AppointmentLength = *req.AppointmentLength
	}
	if req.SimultaneousSlots != nil {
		e.SimultaneousSlots = *req.SimultaneousSlots
	}
	if req.BreakBetween != nil {
		e.BreakBetween = *req.BreakBetween
	}
	if req.Modality != "" {
		e.Modality = req.Modality
	}
	if req.IsWorkingDay != nil {
		e.IsWorkingDay = *req.IsWorkingDay
	}
	return e
}

func mergeUpdate(e *model.ScheduleEntry, req *dto.UpdateScheduleEntryRequest) {
	if req.DayOfWeek != nil {
		e.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		e.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		e.EndTime = *req.EndTime
	}
	if req.ClearRest {
		e.RestStart, e.RestEnd = nil, nil
	} else {
		if req.RestStart != nil {
			e.RestStart = copyStr(req.RestStart)
		}
		if req.RestEnd != nil {
			e.RestEnd = copyStr(req.RestEnd)
		}
	}
	if req.AppointmentLength != nil {
		e.AppointmentLength = *req.AppointmentLength
	}
	if req.SimultaneousSlots != nil {
		e.SimultaneousSlots = *req.SimultaneousSlots
	}
	if req.BreakBetween != nil {
		e.BreakBetween = *req.BreakBetween
	}
	if req.Modality != nil {
		e.Modality = *req.Modality
	}
	if req.IsWorkingDay != nil {
		e.IsWorkingDay = *req.IsWorkingDay
	}
}

func toEntryResponse(e *model.ScheduleEntry) dto.ScheduleEntryResponse {
	resp := dto.ScheduleEntryResponse{
		ID:                e.ScheduleEntryID,
		PhysicianID:       e.PhysicianID,
		DayOfWeek:         e.DayOfWeek,
		StartTime:         e.StartTime,
		EndTime:           e.EndTime,
		RestStart:         e.RestStart,
		RestEnd:           e.RestEnd,
		AppointmentLength: e.AppointmentLength,
		SimultaneousSlots: e.SimultaneousSlots,
		BreakBetween:      e.BreakBetween,
		Modality:          e.Modality,
		IsWorkingDay:      e.IsWorkingDay,
		Deleted:           e.IsDeleted(),
		Version:           e.Version,
		CreatedAt:         e.CreatedAt.Format(timestampLayout),
		UpdatedAt:         e.UpdatedAt.Format(timestampLayout),
	}
	if e.DeletedAt.Valid {
		at := e.DeletedAt.Time.Format(timestampLayout)
		resp.DeletedAt = &at
	}
	return resp
}

func toEntryResponses(entries []model.ScheduleEntry) []dto.ScheduleEntryResponse {
	result := make([]dto.ScheduleEntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, toEntryResponse(&entries[i]))
	}
	return result
}
