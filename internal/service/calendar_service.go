package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

// CalendarService iCalendar 订阅
// 将区间号源与停诊日渲染为 RFC 5545 日历，供日历客户端订阅
type CalendarService interface {
	SlotsCalendar(ctx context.Context, tenantID, userID, from, to string, now time.Time) ([]byte, error)
}

type calendarService struct {
	slots  SlotService
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(slots SlotService, logger *zap.Logger) CalendarService {
	return &calendarService{slots: slots, logger: logger}
}

const icsProductID = "-//SEGIMED//Agenda//PT"

func (s *calendarService) SlotsCalendar(ctx context.Context, tenantID, userID, from, to string, now time.Time) ([]byte, error) {
	rs, err := s.slots.CollectRange(ctx, tenantID, userID, from, to, now)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(fmt.Sprintf("%s 可预约时段", rs.Physician.FullName))

	for _, day := range rs.Days {
		date := day.Date.Format("20060102")

		if day.Unavailable {
			evt := cal.AddEvent(fmt.Sprintf("%s-%s-off@agenda", rs.Physician.PhysicianID, date))
			evt.SetDtStampTime(now)
			evt.SetAllDayStartAt(day.Date)
			evt.SetAllDayEndAt(day.Date.AddDate(0, 0, 1))
			summary := "停诊"
			if day.Reason != nil && *day.Reason != "" {
				summary = "停诊: " + *day.Reason
			}
			evt.SetSummary(summary)
			continue
		}

		for _, sl := range day.Slots {
			evt := cal.AddEvent(fmt.Sprintf("%s-%s@agenda", rs.Physician.PhysicianID, sl.Start.UTC().Format("20060102T150405Z")))
			evt.SetDtStampTime(now)
			evt.SetStartAt(sl.Start)
			evt.SetEndAt(sl.End)
			evt.SetSummary("可预约")
			if day.Modality != "" {
				evt.SetDescription("就诊方式: " + day.Modality)
			}
		}
	}

	s.logger.Debug("生成号源日历",
		zap.String("physician_id", rs.Physician.PhysicianID),
		zap.Int("days", len(rs.Days)),
	)
	return []byte(cal.Serialize()), nil
}
