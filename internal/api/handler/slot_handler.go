package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SEGIMED/back-sub000/internal/dto"
	"github.com/SEGIMED/back-sub000/internal/service"
	"github.com/SEGIMED/back-sub000/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// SlotHandler 号源查询、日历订阅与导出
type SlotHandler struct {
	slotSvc     service.SlotService
	calendarSvc service.CalendarService
	exportSvc   service.ExportService
	now         func() time.Time
}

// NewSlotHandler 创建 SlotHandler
func NewSlotHandler(slotSvc service.SlotService, calendarSvc service.CalendarService, exportSvc service.ExportService) *SlotHandler {
	return &SlotHandler{
		slotSvc:     slotSvc,
		calendarSvc: calendarSvc,
		exportSvc:   exportSvc,
		now:         time.Now,
	}
}

// GetSlots 单日可预约时段
// GET /api/v1/physicians/:user_id/slots?date=YYYY-MM-DD
func (h *SlotHandler) GetSlots(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var q dto.SlotsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, codeBadRequest, "date 不能为空")
		return
	}

	result, err := h.slotSvc.GetAvailableSlots(c.Request.Context(), tenantID, c.Param("user_id"), q.Date, h.now())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// GetSlotsRange 区间可预约时段（闭区间）
// GET /api/v1/physicians/:user_id/slots/range?from=&to=
func (h *SlotHandler) GetSlotsRange(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var q dto.SlotsRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, codeBadRequest, "from 与 to 不能为空")
		return
	}

	result, err := h.slotSvc.GetAvailableSlotsRange(c.Request.Context(), tenantID, c.Param("user_id"), q.From, q.To, h.now())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// Calendar iCalendar 订阅
// GET /api/v1/physicians/:user_id/slots/calendar.ics?from=&to=
func (h *SlotHandler) Calendar(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	var q dto.SlotsRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, codeBadRequest, "from 与 to 不能为空")
		return
	}

	data, err := h.calendarSvc.SlotsCalendar(c.Request.Context(), tenantID, c.Param("user_id"), q.From, q.To, h.now())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Attachment(c, icsContentType, fmt.Sprintf("slots_%s_%s.ics", q.From, q.To), data)
}

// ExportWeek 导出每周排班 Excel
// GET /api/v1/physicians/:user_id/schedules/export
func (h *SlotHandler) ExportWeek(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportWeekSchedule(c.Request.Context(), tenantID, c.Param("user_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
