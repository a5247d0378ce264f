package model

// Physician 医生档案 — 对应 physicians
// 由医生档案子系统维护，本服务只读
type Physician struct {
	PhysicianID string `gorm:"type:uuid;primaryKey"      json:"physician_id"`
	TenantID    string `gorm:"type:varchar(64);not null" json:"tenant_id"`
	UserID      string `gorm:"type:varchar(64);not null" json:"user_id"`
	FullName    string `gorm:"type:varchar(200)"         json:"full_name"`
	SoftDeleteModel
}

// TableName 指定表名
func (Physician) TableName() string { return "physicians" }
