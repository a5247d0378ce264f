package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SEGIMED/back-sub000/internal/model"
)

var slotNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func setupTestSlotService(opts SlotOptions) (SlotService, *testRepos) {
	tr := newTestRepos()
	return NewSlotService(tr.repo, opts, zap.NewNop()), tr
}

func seedEntry(t *testing.T, tr *testRepos, e model.ScheduleEntry) {
	t.Helper()
	e.TenantID = testTenant
	e.PhysicianID = testPhysicianID
	if err := tr.entries.Create(context.Background(), &e); err != nil {
		t.Fatalf("写入排班失败: %v", err)
	}
}

func seedException(t *testing.T, tr *testRepos, date string, available bool, reason *string) {
	t.Helper()
	if err := tr.exceptions.Create(context.Background(), &model.ScheduleException{
		TenantID:      testTenant,
		PhysicianID:   testPhysicianID,
		ExceptionDate: date,
		IsAvailable:   available,
		Reason:        reason,
	}); err != nil {
		t.Fatalf("写入例外失败: %v", err)
	}
}

func TestSlotService_Day(t *testing.T) {
	svc, tr := setupTestSlotService(SlotOptions{})
	seedEntry(t, tr, validEntry(1))
	tr.appointments.appointments = []model.Appointment{
		{TenantID: testTenant, PhysicianID: testPhysicianID, StartsAt: at("10:00"), EndsAt: at("10:30"), Status: "confirmed"},
		{TenantID: otherTenant, PhysicianID: testPhysicianID, StartsAt: at("11:00"), EndsAt: at("11:30"), Status: "confirmed"},
	}

	resp, err := svc.GetAvailableSlots(context.Background(), testTenant, testUserID, "2026-03-02", slotNow)
	if err != nil {
		t.Fatalf("查询号源失败: %v", err)
	}
	if len(resp.Slots) != 5 {
		t.Fatalf("期望 5 个时段（10:00 已约），实际 %d", len(resp.Slots))
	}
	if resp.Slots[0].Start != "2026-03-02T09:00:00Z" || resp.Slots[0].End != "2026-03-02T09:30:00Z" {
		t.Errorf("首个时段不正确: %+v", resp.Slots[0])
	}
	if resp.PhysicianName != "Dra. Ana Souza" || resp.Modality != model.ModalityInPerson {
		t.Errorf("响应元数据不正确: %+v", resp)
	}
}

func TestSlotService_UnavailableException(t *testing.T) {
	svc, tr := setupTestSlotService(SlotOptions{})
	seedEntry(t, tr, validEntry(1))
	seedException(t, tr, "2026-03-02", false, strPtr("Congresso"))

	resp, err := svc.GetAvailableSlots(context.Background(), testTenant, testUserID, "2026-03-02", slotNow)
	if err != nil {
		t.Fatalf("查询号源失败: %v", err)
	}
	if !resp.Unavailable {
		t.Error("停诊日应标记 unavailable")
	}
	if resp.Slots == nil || len(resp.Slots) != 0 {
		t.Errorf("停诊日应返回空列表，实际 %v", resp.Slots)
	}
}

func TestSlotService_AvailableExceptionKeepsSchedule(t *testing.T) {
	svc, tr := setupTestSlotService(SlotOptions{})
	seedEntry(t, tr, validEntry(1))
	seedException(t, tr, "2026-03-02", true, nil)

	resp, _ := svc.GetAvailableSlots(context.Background(), testTenant, testUserID, "2026-03-02", slotNow)
	if resp.Unavailable || len(resp.Slots) != 6 {
		t.Errorf("可出诊例外不影响每周排班，实际 unavailable=%v slots=%d", resp.Unavailable, len(resp.Slots))
	}
}

func TestSlotService_NoEntryForWeekday(t *testing.T) {
	svc, tr := setupTestSlotService(SlotOptions{})
	seedEntry(t, tr, validEntry(2))

	resp, err := svc.GetAvailableSlots(context.Background(), testTenant, testUserID, "2026-03-02", slotNow)
	if err != nil {
		t.Fatalf("无排班不应报错: %v", err)
	}
	if len(resp.Slots) != 0 {
		t.Errorf("周一无排班应返回空，实际 %d", len(resp.Slots))
	}
}

func TestSlotService_InvalidPersistedEntry(t *testing.T) {
	svc, tr := setupTestSlotService(SlotOptions{})
	bad := validEntry(1)
	bad.StartTime = "13:00" // 晚于 end_time
	seedEntry(t, tr, bad)

	resp, err := svc.GetAvailableSlots(context.Background(), testTenant, testUserID, "2026-03-02", slotNow)
	if err != nil {
		t.Fatalf("无效存储值不应导致请求失败: %v", err)
	}
	if len(resp.Slots) != 0 {
		t.Errorf("无效排班不应生成时段，实际 %d", len(resp.Slots))
	}
}

func TestSlotService_BadDate(t *testing.T) {
	svc, _ := setupTestSlotService(SlotOptions{})

	_, err := svc.GetAvailableSlots(context.Background(), testTenant, testUserID, "2026-3-2", slotNow)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "date" {
		t.Errorf("期望 date 校验失败，实际: %v", err)
	}
}

func TestSlotService_UnknownPhysician(t *testing.T) {
	svc, _ := setupTestSlotService(SlotOptions{})

	_, err := svc.GetAvailableSlots(context.Background(), testTenant, "nobody", "2026-03-02", slotNow)
	if !errors.Is(err, ErrPhysicianNotFound) {
		t.Errorf("期望 ErrPhysicianNotFound，实际: %v", err)
	}
}

func TestSlotService_Timezone(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	svc, tr := setupTestSlotService(SlotOptions{Location: loc})
	seedEntry(t, tr, validEntry(1))

	resp, _ := svc.GetAvailableSlots(context.Background(), testTenant, testUserID, "2026-03-02", slotNow)
	if len(resp.Slots) == 0 || resp.Slots[0].Start != "2026-03-02T09:00:00-03:00" {
		t.Errorf("时段应按配置时区生成，实际 %+v", resp.Slots)
	}
}

func TestSlotService_Range(t *testing.T) {
	svc, tr := setupTestSlotService(SlotOptions{RangeWorkers: 4})
	seedEntry(t, tr, validEntry(1))
	seedEntry(t, tr, validEntry(3))
	seedException(t, tr, "2026-03-04", false, nil)

	resp, err := svc.GetAvailableSlotsRange(context.Background(), testTenant, testUserID, "2026-03-01", "2026-03-07", slotNow)
	if err != nil {
		t.Fatalf("区间查询失败: %v", err)
	}
	if len(resp.Days) != 7 {
		t.Fatalf("期望 7 天，实际 %d", len(resp.Days))
	}

	wantDates := []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06", "2026-03-07"}
	for i, d := range resp.Days {
		if d.Date != wantDates[i] {
			t.Errorf("第 %d 天期望 %s，实际 %s", i, wantDates[i], d.Date)
		}
	}
	if len(resp.Days[1].Slots) != 6 {
		t.Errorf("周一应有 6 个时段，实际 %d", len(resp.Days[1].Slots))
	}
	if !resp.Days[3].Unavailable || len(resp.Days[3].Slots) != 0 {
		t.Errorf("周三停诊，实际 %+v", resp.Days[3])
	}
	if len(resp.Days[0].Slots) != 0 {
		t.Error("周日无排班应为空")
	}
}

func TestSlotService_RangeLimits(t *testing.T) {
	svc, _ := setupTestSlotService(SlotOptions{MaxRangeDays: 3})
	ctx := context.Background()

	if _, err := svc.GetAvailableSlotsRange(ctx, testTenant, testUserID, "2026-03-01", "2026-03-04", slotNow); !errors.Is(err, ErrRangeTooLarge) {
		t.Errorf("超过最大天数应返回 ErrRangeTooLarge，实际: %v", err)
	}
	if _, err := svc.GetAvailableSlotsRange(ctx, testTenant, testUserID, "2026-03-01", "2026-03-03", slotNow); err != nil {
		t.Errorf("恰好 3 天应成功: %v", err)
	}

	var ve *ValidationError
	if _, err := svc.GetAvailableSlotsRange(ctx, testTenant, testUserID, "2026-03-05", "2026-03-01", slotNow); !errors.As(err, &ve) {
		t.Errorf("结束早于开始应校验失败，实际: %v", err)
	}
}
