package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/SEGIMED/back-sub000/pkg/messaging"
)

// 领域事件类型（同时作为 RabbitMQ 路由键）
const (
	EventWeekUpserted     = "schedule.week_upserted"
	EventEntryCreated     = "schedule.entry_created"
	EventEntryUpdated     = "schedule.entry_updated"
	EventEntryDeleted     = "schedule.entry_deleted"
	EventScheduleCleared  = "schedule.cleared"
	EventExceptionCreated = "schedule.exception_created"
	EventExceptionDeleted = "schedule.exception_deleted"
)

// publishEvent 事务提交后发布，失败只记录日志
func publishEvent(ctx context.Context, publisher messaging.Publisher, logger *zap.Logger, event messaging.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("发布领域事件失败",
			zap.String("type", event.Type),
			zap.String("tenant_id", event.TenantID),
			zap.String("physician_id", event.PhysicianID),
			zap.Error(err),
		)
	}
}
