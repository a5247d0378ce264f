package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SEGIMED/back-sub000/internal/service"
	pkgerrors "github.com/SEGIMED/back-sub000/pkg/errors"
	"github.com/SEGIMED/back-sub000/pkg/response"
)

// 业务错误码
const (
	codeBadRequest       = 20001
	codeValidation       = 20002
	codeDayConflict      = 20003
	codeConcurrentUpdate = 20004
	codeEntryNotFound    = 20005
	codePhysicianMissing = 20006
	codeTenantMissing    = 20007

	codeExceptionNotFound = 21001
	codeExceptionConflict = 21002

	codeRangeTooLarge = 22001
	codeExportFailed  = 23001
)

// handleServiceError 将 Service 层错误映射为 HTTP 响应
func handleServiceError(c *gin.Context, err error) {
	var (
		ve *service.ValidationError
		ce *service.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, "排班参数校验失败", ve.Error())
	case errors.As(err, &ce):
		code := codeDayConflict
		if ce.Date != "" {
			code = codeExceptionConflict
		}
		response.Conflict(c, code, "数据冲突", ce.Error())
	case errors.Is(err, service.ErrScheduleConcurrentUpdate):
		response.Conflict(c, codeConcurrentUpdate, err.Error(), "")
	case errors.Is(err, service.ErrScheduleEntryNotFound):
		response.NotFound(c, codeEntryNotFound, err.Error())
	case errors.Is(err, service.ErrExceptionNotFound):
		response.NotFound(c, codeExceptionNotFound, err.Error())
	case errors.Is(err, service.ErrPhysicianNotFound):
		response.NotFound(c, codePhysicianMissing, err.Error())
	case errors.Is(err, service.ErrRangeTooLarge):
		response.BadRequest(c, codeRangeTooLarge, err.Error())
	case errors.Is(err, pkgerrors.ErrTenantRequired):
		response.Forbidden(c, codeTenantMissing, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, codeExportFailed, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
