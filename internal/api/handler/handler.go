package handler

import "github.com/SEGIMED/back-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Schedule  *ScheduleHandler
	Exception *ExceptionHandler
	Slot      *SlotHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Schedule:  NewScheduleHandler(svc.Schedule),
		Exception: NewExceptionHandler(svc.Exception),
		Slot:      NewSlotHandler(svc.Slot, svc.Calendar, svc.Export),
	}
}
