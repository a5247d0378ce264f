package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/internal/dto"
	"github.com/SEGIMED/back-sub000/internal/model"
	"github.com/SEGIMED/back-sub000/internal/repository"
	"github.com/SEGIMED/back-sub000/pkg/telemetry"
	"github.com/SEGIMED/back-sub000/pkg/timeutil"
)

// SlotService 号源生成业务接口
// now 由调用方传入，早于 now 的时段不返回
type SlotService interface {
	GetAvailableSlots(ctx context.Context, tenantID, userID, date string, now time.Time) (*dto.DaySlotsResponse, error)
	GetAvailableSlotsRange(ctx context.Context, tenantID, userID, from, to string, now time.Time) (*dto.RangeSlotsResponse, error)
	CollectRange(ctx context.Context, tenantID, userID, from, to string, now time.Time) (*RangeSlots, error)
}

// SlotOptions 号源生成参数
type SlotOptions struct {
	Location     *time.Location // 日期与排班时刻所在时区
	MaxRangeDays int
	RangeWorkers int
}

// DaySlots 单日号源
type DaySlots struct {
	Date        time.Time // 当天零点
	Modality    string
	Unavailable bool    // 存在停诊例外
	Reason      *string // 停诊原因
	Slots       []Slot
}

// RangeSlots 区间号源，Days 按日期升序
type RangeSlots struct {
	Physician *model.Physician
	Days      []DaySlots
}

type slotService struct {
	repo   *repository.Repository
	opts   SlotOptions
	logger *zap.Logger
}

// NewSlotService 创建 SlotService 实例
func NewSlotService(repo *repository.Repository, opts SlotOptions, logger *zap.Logger) SlotService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = 31
	}
	if opts.RangeWorkers <= 0 {
		opts.RangeWorkers = 1
	}
	return &slotService{repo: repo, opts: opts, logger: logger}
}

// ────────────────────── 单日 ──────────────────────

func (s *slotService) GetAvailableSlots(ctx context.Context, tenantID, userID, date string, now time.Time) (*dto.DaySlotsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "slots.day",
		attribute.String("tenant_id", tenantID),
		attribute.String("date", date),
	)
	defer span.End()

	dayStart, err := s.parseDate("date", date)
	if err != nil {
		return nil, err
	}

	physician, err := resolvePhysician(ctx, s.repo, s.logger, tenantID, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	day, err := s.generateDay(ctx, tenantID, physician, dayStart, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := toDaySlotsResponse(physician, &day)
	span.SetAttributes(attribute.Int("slots", len(resp.Slots)))
	return &resp, nil
}

// ────────────────────── 区间 ──────────────────────

func (s *slotService) GetAvailableSlotsRange(ctx context.Context, tenantID, userID, from, to string, now time.Time) (*dto.RangeSlotsResponse, error) {
	rs, err := s.CollectRange(ctx, tenantID, userID, from, to, now)
	if err != nil {
		return nil, err
	}

	resp := &dto.RangeSlotsResponse{
		PhysicianID:   rs.Physician.PhysicianID,
		PhysicianName: rs.Physician.FullName,
		From:          from,
		To:            to,
		Days:          make([]dto.DaySlotsResponse, 0, len(rs.Days)),
	}
	for i := range rs.Days {
		resp.Days = append(resp.Days, toDaySlotsResponse(rs.Physician, &rs.Days[i]))
	}
	return resp, nil
}

// CollectRange 并发生成 [from, to] 每天的号源，并发度受 RangeWorkers 限制
func (s *slotService) CollectRange(ctx context.Context, tenantID, userID, from, to string, now time.Time) (*RangeSlots, error) {
	ctx, span := telemetry.StartSpan(ctx, "slots.range",
		attribute.String("tenant_id", tenantID),
		attribute.String("from", from),
		attribute.String("to", to),
	)
	defer span.End()

	fromDay, err := s.parseDate("from", from)
	if err != nil {
		return nil, err
	}
	toDay, err := s.parseDate("to", to)
	if err != nil {
		return nil, err
	}
	if toDay.Before(fromDay) {
		return nil, &ValidationError{Field: "to", Date: to, Message: "结束日期不能早于开始日期"}
	}

	days := 0
	for d := fromDay; !d.After(toDay); d = d.AddDate(0, 0, 1) {
		days++
		if days > s.opts.MaxRangeDays {
			return nil, ErrRangeTooLarge
		}
	}

	physician, err := resolvePhysician(ctx, s.repo, s.logger, tenantID, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := make([]DaySlots, days)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.RangeWorkers)
	for i := 0; i < days; i++ {
		dayStart := fromDay.AddDate(0, 0, i)
		g.Go(func() error {
			day, err := s.generateDay(gctx, tenantID, physician, dayStart, now)
			if err != nil {
				return err
			}
			result[i] = day
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return &RangeSlots{Physician: physician, Days: result}, nil
}

// ── 内部辅助方法 ──

// generateDay 例外 → 每周排班 → 已有预约 → 生成时段
func (s *slotService) generateDay(ctx context.Context, tenantID string, physician *model.Physician, dayStart, now time.Time) (DaySlots, error) {
	day := DaySlots{Date: dayStart, Slots: []Slot{}}
	date := timeutil.FormatDate(dayStart)

	ex, err := s.repo.ScheduleException.GetByDate(ctx, tenantID, physician.PhysicianID, date)
	switch {
	case err == nil:
		if !ex.IsAvailable {
			day.Unavailable = true
			day.Reason = ex.Reason
			return day, nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询排班例外失败", zap.String("date", date), zap.Error(err))
		return day, err
	}

	entry, err := s.repo.ScheduleEntry.GetByDay(ctx, tenantID, physician.PhysicianID, int(dayStart.Weekday()))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return day, nil
		}
		s.logger.Error("查询排班失败", zap.String("date", date), zap.Error(err))
		return day, err
	}
	day.Modality = entry.Modality
	if !entry.IsWorkingDay {
		return day, nil
	}
	// 存储值不被默认信任，读取时按写入规则复核
	if err := ValidateEntry(entry); err != nil {
		s.logger.Error("排班数据无效，跳过号源生成",
			zap.String("schedule_entry_id", entry.ScheduleEntryID),
			zap.Error(err),
		)
		return day, nil
	}

	appointments, err := s.repo.Appointment.ListInRange(ctx, tenantID, physician.PhysicianID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error("查询预约失败", zap.String("date", date), zap.Error(err))
		return day, err
	}

	slots, err := GenerateSlots(entry, dayStart, BlockedIntervals(appointments, dayStart), now)
	if err != nil {
		return day, err
	}
	day.Slots = slots
	return day, nil
}

func (s *slotService) parseDate(field, value string) (time.Time, error) {
	d, err := timeutil.ParseDate(value, s.opts.Location)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Date: value, Message: "日期格式无效，应为 YYYY-MM-DD"}
	}
	return d, nil
}

func toDaySlotsResponse(physician *model.Physician, day *DaySlots) dto.DaySlotsResponse {
	resp := dto.DaySlotsResponse{
		Date:          timeutil.FormatDate(day.Date),
		PhysicianID:   physician.PhysicianID,
		PhysicianName: physician.FullName,
		Modality:      day.Modality,
		Unavailable:   day.Unavailable,
		Slots:         make([]dto.SlotResponse, 0, len(day.Slots)),
	}
	for _, sl := range day.Slots {
		resp.Slots = append(resp.Slots, dto.SlotResponse{
			Start:     sl.Start.Format(time.RFC3339),
			End:       sl.End.Format(time.RFC3339),
			Available: sl.Available,
		})
	}
	return resp
}
