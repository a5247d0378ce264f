package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/SEGIMED/back-sub000/internal/dto"
)

func setupTestExceptionService() (ExceptionService, *testRepos, *recordingPublisher) {
	tr := newTestRepos()
	pub := &recordingPublisher{}
	return NewExceptionService(tr.repo, pub, zap.NewNop()), tr, pub
}

func TestExceptionService_Create_Success(t *testing.T) {
	svc, _, pub := setupTestExceptionService()

	result, err := svc.CreateException(context.Background(), testTenant, testUserID, &dto.CreateExceptionRequest{
		Date:   "2026-04-21",
		Reason: strPtr("Feriado"),
	}, testCaller)
	if err != nil {
		t.Fatalf("创建例外应成功: %v", err)
	}
	if result.Date != "2026-04-21" || result.IsAvailable {
		t.Errorf("返回值不正确: %+v", result)
	}
	if result.Reason == nil || *result.Reason != "Feriado" {
		t.Errorf("期望 reason=Feriado，实际 %v", result.Reason)
	}
	if got := pub.types(); len(got) != 1 || got[0] != EventExceptionCreated {
		t.Errorf("期望发布 %s，实际 %v", EventExceptionCreated, got)
	}
}

func TestExceptionService_Create_DuplicateDate(t *testing.T) {
	svc, _, _ := setupTestExceptionService()
	ctx := context.Background()
	req := &dto.CreateExceptionRequest{Date: "2026-04-21"}

	if _, err := svc.CreateException(ctx, testTenant, testUserID, req, testCaller); err != nil {
		t.Fatalf("第一次创建应成功: %v", err)
	}
	_, err := svc.CreateException(ctx, testTenant, testUserID, req, testCaller)

	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("同日重复例外应返回 ConflictError，实际: %v", err)
	}
	if ce.Date != "2026-04-21" {
		t.Errorf("冲突应定位到日期，实际 %q", ce.Date)
	}
}

func TestExceptionService_Create_InvalidDate(t *testing.T) {
	svc, _, _ := setupTestExceptionService()

	for _, date := range []string{"2026-02-30", "21/04/2026", ""} {
		_, err := svc.CreateException(context.Background(), testTenant, testUserID, &dto.CreateExceptionRequest{Date: date}, testCaller)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("日期 %q 应校验失败，实际: %v", date, err)
		}
	}
}

func TestExceptionService_DeleteAndRecreate(t *testing.T) {
	svc, _, pub := setupTestExceptionService()
	ctx := context.Background()
	req := &dto.CreateExceptionRequest{Date: "2026-05-01"}

	created, _ := svc.CreateException(ctx, testTenant, testUserID, req, testCaller)
	if err := svc.DeleteException(ctx, testTenant, created.ID, testCaller); err != nil {
		t.Fatalf("删除应成功: %v", err)
	}
	if err := svc.DeleteException(ctx, testTenant, created.ID, testCaller); !errors.Is(err, ErrExceptionNotFound) {
		t.Errorf("重复删除应返回 ErrExceptionNotFound，实际: %v", err)
	}
	if _, err := svc.CreateException(ctx, testTenant, testUserID, req, testCaller); err != nil {
		t.Errorf("删除后同一日期应可重新创建: %v", err)
	}

	types := pub.types()
	if len(types) != 3 || types[1] != EventExceptionDeleted {
		t.Errorf("事件序列不正确: %v", types)
	}
}

func TestExceptionService_ListByTenant(t *testing.T) {
	svc, _, _ := setupTestExceptionService()
	ctx := context.Background()

	_, _ = svc.CreateException(ctx, testTenant, testUserID, &dto.CreateExceptionRequest{Date: "2026-05-02"}, testCaller)
	_, _ = svc.CreateException(ctx, testTenant, testUserID, &dto.CreateExceptionRequest{Date: "2026-05-01"}, testCaller)
	_, _ = svc.CreateException(ctx, otherTenant, testUserID, &dto.CreateExceptionRequest{Date: "2026-05-03"}, testCaller)

	list, err := svc.ListExceptions(ctx, testTenant, testUserID)
	if err != nil {
		t.Fatalf("查询应成功: %v", err)
	}
	if len(list) != 2 || list[0].Date != "2026-05-01" {
		t.Errorf("期望本租户 2 条且按日期升序，实际 %+v", list)
	}
}

func TestExceptionService_CrossTenantDelete(t *testing.T) {
	svc, _, _ := setupTestExceptionService()
	ctx := context.Background()

	created, _ := svc.CreateException(ctx, testTenant, testUserID, &dto.CreateExceptionRequest{Date: "2026-05-01"}, testCaller)
	if err := svc.DeleteException(ctx, otherTenant, created.ID, testCaller); !errors.Is(err, ErrExceptionNotFound) {
		t.Errorf("跨租户删除应返回 NotFound，实际: %v", err)
	}
}
