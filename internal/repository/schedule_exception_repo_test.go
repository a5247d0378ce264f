package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/internal/model"
	"github.com/SEGIMED/back-sub000/internal/repository"
)

func newException(tenantID, date string, available bool) *model.ScheduleException {
	return &model.ScheduleException{
		TenantID:      tenantID,
		PhysicianID:   physician,
		ExceptionDate: date,
		IsAvailable:   available,
		Reason:        strPtr("congresso"),
	}
}

func TestScheduleExceptionRepo_ListOrderedByDate(t *testing.T) {
	repo := repository.NewRepository(setupSQLite(t))
	ctx := context.Background()

	for _, d := range []string{"2026-05-10", "2026-03-01", "2026-04-15"} {
		require.NoError(t, repo.ScheduleException.Create(ctx, newException(tenantA, d, false)))
	}
	require.NoError(t, repo.ScheduleException.Create(ctx, newException(tenantB, "2026-01-01", false)))

	list, err := repo.ScheduleException.ListByPhysician(ctx, tenantA, physician)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2026-03-01", list[0].ExceptionDate)
	assert.Equal(t, "2026-04-15", list[1].ExceptionDate)
	assert.Equal(t, "2026-05-10", list[2].ExceptionDate)

	ranged, err := repo.ScheduleException.ListInRange(ctx, tenantA, physician, "2026-03-01", "2026-04-30")
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestScheduleExceptionRepo_DuplicateDate(t *testing.T) {
	repo := repository.NewRepository(setupSQLite(t))
	ctx := context.Background()

	first := newException(tenantA, "2026-03-02", false)
	require.NoError(t, repo.ScheduleException.Create(ctx, first))

	err := repo.ScheduleException.Create(ctx, newException(tenantA, "2026-03-02", true))
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "同日期重复例外应违反唯一索引: %v", err)

	// 不同租户同一日期互不影响
	require.NoError(t, repo.ScheduleException.Create(ctx, newException(tenantB, "2026-03-02", false)))

	// 软删除后可重新创建
	require.NoError(t, repo.ScheduleException.SoftDelete(ctx, tenantA, first.ScheduleExceptionID, "user-1"))
	require.NoError(t, repo.ScheduleException.Create(ctx, newException(tenantA, "2026-03-02", true)))

	got, err := repo.ScheduleException.GetByDate(ctx, tenantA, physician, "2026-03-02")
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
}

func TestScheduleExceptionRepo_SoftDeleteScoped(t *testing.T) {
	repo := repository.NewRepository(setupSQLite(t))
	ctx := context.Background()

	ex := newException(tenantA, "2026-03-02", false)
	require.NoError(t, repo.ScheduleException.Create(ctx, ex))

	err := repo.ScheduleException.SoftDelete(ctx, tenantB, ex.ScheduleExceptionID, "user-b")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.ScheduleException.SoftDelete(ctx, tenantA, ex.ScheduleExceptionID, "user-a"))

	_, err = repo.ScheduleException.GetByID(ctx, tenantA, ex.ScheduleExceptionID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, err = repo.ScheduleException.GetByDate(ctx, tenantA, physician, "2026-03-02")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
