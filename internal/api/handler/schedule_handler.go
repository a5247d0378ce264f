package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SEGIMED/back-sub000/internal/dto"
	"github.com/SEGIMED/back-sub000/internal/service"
	"github.com/SEGIMED/back-sub000/pkg/response"
)

// ScheduleHandler 每周排班 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// ListSchedule 获取医生每周排班
// GET /api/v1/physicians/:user_id/schedules
func (h *ScheduleHandler) ListSchedule(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	list, err := h.scheduleSvc.ListSchedule(c.Request.Context(), tenantID, c.Param("user_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// UpsertWeek 整周覆盖
// PUT /api/v1/physicians/:user_id/schedules
func (h *ScheduleHandler) UpsertWeek(c *gin.Context) {
	tenantID, callerID, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpsertWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, "参数校验失败", err.Error())
		return
	}

	list, err := h.scheduleSvc.UpsertWeekSchedule(c.Request.Context(), tenantID, c.Param("user_id"), &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateEntry 新增单日排班
// POST /api/v1/physicians/:user_id/schedules
func (h *ScheduleHandler) CreateEntry(c *gin.Context) {
	tenantID, callerID, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, "参数校验失败", err.Error())
		return
	}

	entry, err := h.scheduleSvc.CreateScheduleEntry(c.Request.Context(), tenantID, c.Param("user_id"), &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, entry)
}

// DeleteAll 清空医生每周排班
// DELETE /api/v1/physicians/:user_id/schedules
func (h *ScheduleHandler) DeleteAll(c *gin.Context) {
	tenantID, callerID, ok := MustGetCaller(c)
	if !ok {
		return
	}

	n, err := h.scheduleSvc.DeleteAllSchedules(c.Request.Context(), tenantID, c.Param("user_id"), callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, dto.DeleteAllResponse{Deleted: n})
}

// GetEntry 获取单条排班
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetEntry(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	entry, err := h.scheduleSvc.GetScheduleEntry(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, entry)
}

// UpdateEntry 部分更新单条排班
// PATCH /api/v1/schedules/:id
func (h *ScheduleHandler) UpdateEntry(c *gin.Context) {
	tenantID, callerID, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, "参数校验失败", err.Error())
		return
	}

	entry, err := h.scheduleSvc.UpdateScheduleEntry(c.Request.Context(), tenantID, c.Param("id"), &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, entry)
}

// DeleteEntry 软删除单条排班
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) DeleteEntry(c *gin.Context) {
	tenantID, callerID, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.DeleteScheduleEntry(c.Request.Context(), tenantID, c.Param("id"), callerID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
