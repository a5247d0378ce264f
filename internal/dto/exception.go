package dto

// ── 排班例外 DTO ──

// CreateExceptionRequest 创建排班例外请求
type CreateExceptionRequest struct {
	Date        string  `json:"date"         binding:"required"` // YYYY-MM-DD
	IsAvailable bool    `json:"is_available"`
	Reason      *string `json:"reason"       binding:"omitempty,max=255"`
}

// ExceptionResponse 排班例外响应
type ExceptionResponse struct {
	ID          string  `json:"id"`
	PhysicianID string  `json:"physician_id"`
	Date        string  `json:"date"`
	IsAvailable bool    `json:"is_available"`
	Reason      *string `json:"reason,omitempty"`
	Deleted     bool    `json:"deleted"`
	CreatedAt   string  `json:"created_at"`
}
