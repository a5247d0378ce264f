package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SEGIMED/back-sub000/internal/model"
	"github.com/SEGIMED/back-sub000/internal/repository"
	pkgerrors "github.com/SEGIMED/back-sub000/pkg/errors"
	"github.com/SEGIMED/back-sub000/pkg/messaging"
)

// ── Mock ScheduleEntryRepository ──

type mockScheduleEntryRepo struct {
	mu        sync.RWMutex
	entries   map[string]*model.ScheduleEntry
	seq       int
	lockCalls int
	failWith  error // 非 nil 时所有写操作返回该错误
}

func newMockScheduleEntryRepo() *mockScheduleEntryRepo {
	return &mockScheduleEntryRepo{entries: make(map[string]*model.ScheduleEntry)}
}

func (m *mockScheduleEntryRepo) ListByPhysician(_ context.Context, tenantID, physicianID string) ([]model.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.ScheduleEntry
	for _, e := range m.entries {
		if e.TenantID == tenantID && e.PhysicianID == physicianID && !e.IsDeleted() {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DayOfWeek < result[j].DayOfWeek })
	return result, nil
}

func (m *mockScheduleEntryRepo) GetByID(_ context.Context, tenantID, id string) (*model.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok && e.TenantID == tenantID && !e.IsDeleted() {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleEntryRepo) GetByDay(_ context.Context, tenantID, physicianID string, dayOfWeek int) (*model.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		if e.TenantID == tenantID && e.PhysicianID == physicianID && e.DayOfWeek == dayOfWeek && !e.IsDeleted() {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleEntryRepo) Create(_ context.Context, entry *model.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for _, e := range m.entries {
		if e.TenantID == entry.TenantID && e.PhysicianID == entry.PhysicianID &&
			e.DayOfWeek == entry.DayOfWeek && !e.IsDeleted() {
			return gorm.ErrDuplicatedKey
		}
	}
	if entry.ScheduleEntryID == "" {
		m.seq++
		entry.ScheduleEntryID = fmt.Sprintf("entry-%d", m.seq)
	}
	if entry.Version == 0 {
		entry.Version = 1
	}
	now := time.Now()
	entry.CreatedAt, entry.UpdatedAt = now, now
	cp := *entry
	m.entries[entry.ScheduleEntryID] = &cp
	return nil
}

func (m *mockScheduleEntryRepo) Update(_ context.Context, entry *model.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	cur, ok := m.entries[entry.ScheduleEntryID]
	if !ok || cur.IsDeleted() || cur.TenantID != entry.TenantID || cur.Version != entry.Version {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version++
	entry.UpdatedAt = time.Now()
	cp := *entry
	m.entries[entry.ScheduleEntryID] = &cp
	return nil
}

func (m *mockScheduleEntryRepo) SoftDelete(_ context.Context, tenantID, id, deletedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	e, ok := m.entries[id]
	if !ok || e.TenantID != tenantID || e.IsDeleted() {
		return gorm.ErrRecordNotFound
	}
	e.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	e.DeletedBy = &deletedBy
	return nil
}

func (m *mockScheduleEntryRepo) SoftDeleteAll(_ context.Context, tenantID, physicianID, deletedBy string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, e := range m.entries {
		if e.TenantID == tenantID && e.PhysicianID == physicianID && !e.IsDeleted() {
			e.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
			e.DeletedBy = &deletedBy
			n++
		}
	}
	return n, nil
}

func (m *mockScheduleEntryRepo) LockPhysician(context.Context, string, string) error {
	m.mu.Lock()
	m.lockCalls++
	m.mu.Unlock()
	return nil
}

// raw 返回含已删除行的快照
func (m *mockScheduleEntryRepo) raw(id string) model.ScheduleEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.entries[id]
}

// activeCount 某租户某医生某星期的有效排班数
func (m *mockScheduleEntryRepo) activeCount(tenantID, physicianID string, day int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		if e.TenantID == tenantID && e.PhysicianID == physicianID && e.DayOfWeek == day && !e.IsDeleted() {
			n++
		}
	}
	return n
}

// ── Mock ScheduleExceptionRepository ──

type mockScheduleExceptionRepo struct {
	mu         sync.RWMutex
	exceptions map[string]*model.ScheduleException
	seq        int
}

func newMockScheduleExceptionRepo() *mockScheduleExceptionRepo {
	return &mockScheduleExceptionRepo{exceptions: make(map[string]*model.ScheduleException)}
}

func (m *mockScheduleExceptionRepo) ListByPhysician(_ context.Context, tenantID, physicianID string) ([]model.ScheduleException, error) {
	return m.ListInRange(context.Background(), tenantID, physicianID, "0000-00-00", "9999-99-99")
}

func (m *mockScheduleExceptionRepo) ListInRange(_ context.Context, tenantID, physicianID, fromDate, toDate string) ([]model.ScheduleException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.ScheduleException
	for _, ex := range m.exceptions {
		if ex.TenantID == tenantID && ex.PhysicianID == physicianID && !ex.IsDeleted() &&
			ex.ExceptionDate >= fromDate && ex.ExceptionDate <= toDate {
			result = append(result, *ex)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ExceptionDate < result[j].ExceptionDate })
	return result, nil
}

func (m *mockScheduleExceptionRepo) GetByID(_ context.Context, tenantID, id string) (*model.ScheduleException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ex, ok := m.exceptions[id]; ok && ex.TenantID == tenantID && !ex.IsDeleted() {
		cp := *ex
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleExceptionRepo) GetByDate(_ context.Context, tenantID, physicianID, date string) (*model.ScheduleException, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ex := range m.exceptions {
		if ex.TenantID == tenantID && ex.PhysicianID == physicianID && ex.ExceptionDate == date && !ex.IsDeleted() {
			cp := *ex
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleExceptionRepo) Create(_ context.Context, ex *model.ScheduleException) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.exceptions {
		if e.TenantID == ex.TenantID && e.PhysicianID == ex.PhysicianID &&
			e.ExceptionDate == ex.ExceptionDate && !e.IsDeleted() {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	ex.ScheduleExceptionID = fmt.Sprintf("exc-%d", m.seq)
	ex.CreatedAt = time.Now()
	cp := *ex
	m.exceptions[ex.ScheduleExceptionID] = &cp
	return nil
}

func (m *mockScheduleExceptionRepo) SoftDelete(_ context.Context, tenantID, id, deletedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.exceptions[id]
	if !ok || ex.TenantID != tenantID || ex.IsDeleted() {
		return gorm.ErrRecordNotFound
	}
	ex.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	ex.DeletedBy = &deletedBy
	return nil
}

// ── Mock PhysicianRepository ──

type mockPhysicianRepo struct {
	physicians []model.Physician
}

func (m *mockPhysicianRepo) ResolveByUserID(_ context.Context, tenantID, userID string) (*model.Physician, error) {
	for i := range m.physicians {
		p := m.physicians[i]
		if p.TenantID == tenantID && p.UserID == userID {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock AppointmentRepository ──
// 不过滤状态，由 Service 层负责剔除已取消预约

type mockAppointmentRepo struct {
	appointments []model.Appointment
}

func (m *mockAppointmentRepo) ListInRange(_ context.Context, tenantID, physicianID string, from, to time.Time) ([]model.Appointment, error) {
	var result []model.Appointment
	for _, a := range m.appointments {
		if a.TenantID == tenantID && a.PhysicianID == physicianID &&
			!a.StartsAt.Before(from) && a.StartsAt.Before(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

// ── Mock Publisher ──

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// ── 测试夹具 ──

const (
	testTenant      = "clinic_a"
	otherTenant     = "clinic_b"
	testUserID      = "user-doc-1"
	testPhysicianID = "phy-1"
	testCaller      = "admin-1"
)

type testRepos struct {
	repo         *repository.Repository
	entries      *mockScheduleEntryRepo
	exceptions   *mockScheduleExceptionRepo
	physicians   *mockPhysicianRepo
	appointments *mockAppointmentRepo
}

func newTestRepos() *testRepos {
	tr := &testRepos{
		entries:    newMockScheduleEntryRepo(),
		exceptions: newMockScheduleExceptionRepo(),
		physicians: &mockPhysicianRepo{physicians: []model.Physician{
			{PhysicianID: testPhysicianID, TenantID: testTenant, UserID: testUserID, FullName: "Dra. Ana Souza"},
			{PhysicianID: "phy-b", TenantID: otherTenant, UserID: testUserID, FullName: "Dr. Outro"},
		}},
		appointments: &mockAppointmentRepo{},
	}
	tr.repo = &repository.Repository{
		ScheduleEntry:     tr.entries,
		ScheduleException: tr.exceptions,
		Physician:         tr.physicians,
		Appointment:       tr.appointments,
	}
	return tr
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }
