package dto

// ── 号源 DTO ──

// SlotsQuery 单日号源查询参数
type SlotsQuery struct {
	Date string `form:"date" binding:"required"` // YYYY-MM-DD
}

// SlotsRangeQuery 区间号源查询参数（闭区间）
type SlotsRangeQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to"   binding:"required"`
}

// SlotResponse 可预约时段
type SlotResponse struct {
	Start     string `json:"start"` // RFC3339，含时区偏移
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// DaySlotsResponse 单日号源
type DaySlotsResponse struct {
	Date          string         `json:"date"`
	PhysicianID   string         `json:"physician_id"`
	PhysicianName string         `json:"physician_name"`
	Modality      string         `json:"modality,omitempty"`
	Unavailable   bool           `json:"unavailable,omitempty"` // 当天存在停诊例外
	Slots         []SlotResponse `json:"slots"`
}

// RangeSlotsResponse 区间号源
type RangeSlotsResponse struct {
	PhysicianID   string             `json:"physician_id"`
	PhysicianName string             `json:"physician_name"`
	From          string             `json:"from"`
	To            string             `json:"to"`
	Days          []DaySlotsResponse `json:"days"`
}
