package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SEGIMED/back-sub000/internal/dto"
	"github.com/SEGIMED/back-sub000/internal/service"
	"github.com/SEGIMED/back-sub000/pkg/response"
)

// ExceptionHandler 排班例外 HTTP 处理器
type ExceptionHandler struct {
	exceptionSvc service.ExceptionService
}

// NewExceptionHandler 创建 ExceptionHandler
func NewExceptionHandler(exceptionSvc service.ExceptionService) *ExceptionHandler {
	return &ExceptionHandler{exceptionSvc: exceptionSvc}
}

// ListExceptions GET /api/v1/physicians/:user_id/exceptions
func (h *ExceptionHandler) ListExceptions(c *gin.Context) {
	tenantID, ok := MustGetTenantID(c)
	if !ok {
		return
	}

	list, err := h.exceptionSvc.ListExceptions(c.Request.Context(), tenantID, c.Param("user_id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CreateException POST /api/v1/physicians/:user_id/exceptions
func (h *ExceptionHandler) CreateException(c *gin.Context) {
	tenantID, callerID, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, "参数校验失败", err.Error())
		return
	}

	ex, err := h.exceptionSvc.CreateException(c.Request.Context(), tenantID, c.Param("user_id"), &req, callerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, ex)
}

// DeleteException DELETE /api/v1/exceptions/:id
func (h *ExceptionHandler) DeleteException(c *gin.Context) {
	tenantID, callerID, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.exceptionSvc.DeleteException(c.Request.Context(), tenantID, c.Param("id"), callerID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, nil)
}
