package repository_test

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SEGIMED/back-sub000/internal/model"
)

// setupSQLite 创建独立的内存 SQLite 并迁移排班相关表
func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:agenda_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取 sql.DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.ScheduleEntry{},
		&model.ScheduleException{},
		&model.Physician{},
		&model.Appointment{},
	); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func newEntry(tenantID, physicianID string, day int) *model.ScheduleEntry {
	return &model.ScheduleEntry{
		TenantID:          tenantID,
		PhysicianID:       physicianID,
		DayOfWeek:         day,
		StartTime:         "09:00",
		EndTime:           "12:00",
		AppointmentLength: 30,
		SimultaneousSlots: 1,
		Modality:          model.ModalityInPerson,
		IsWorkingDay:      true,
	}
}
