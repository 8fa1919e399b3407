package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-core-api/internal/models"
	appErrors "github.com/noah-isme/sms-core-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records    map[string]models.Attendance
	total      int
	present    int
	totalCalls int
	deleted    []string
	err        error
}

func (m *mockAttendanceRepo) Create(ctx context.Context, attendance *models.Attendance) error {
	if m.err != nil {
		return m.err
	}
	if m.records == nil {
		m.records = make(map[string]models.Attendance)
	}
	if attendance.ID == "" {
		attendance.ID = "generated"
	}
	m.records[attendance.ID] = *attendance
	return nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	if a, ok := m.records[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, a := range m.records {
		if a.EnrollmentID == enrollmentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, a := range m.records {
		if a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, id string, status models.AttendanceStatus, remarks *string) error {
	if a, ok := m.records[id]; ok {
		a.Status = status
		a.Remarks = remarks
		m.records[id] = a
	}
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.records, id)
	return nil
}

func (m *mockAttendanceRepo) Totals(ctx context.Context, enrollmentID string) (int, int, error) {
	m.totalCalls++
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.total, m.present, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
	deletes []string
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	delete(m.entries, key)
	return nil
}

func newAttendanceFixture(enrollmentStatus models.EnrollmentStatus) (*AttendanceService, *mockAttendanceRepo, *memoryCacheRepo) {
	repo := &mockAttendanceRepo{}
	enrollments := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"enr-1": {ID: "enr-1", Status: enrollmentStatus},
	}}
	cacheRepo := &memoryCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAttendanceService(repo, enrollments, cacheSvc, validator.New(), zap.NewNop())
	return svc, repo, cacheRepo
}

func TestAttendanceServiceMark(t *testing.T) {
	svc, repo, cache := newAttendanceFixture(models.EnrollmentStatusEnrolled)

	attendance, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "enr-1",
		Date:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:       "Present",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusPresent, attendance.Status)
	assert.Equal(t, 1, len(repo.records))
	assert.Contains(t, cache.deletes, "attendance:summary:enr-1")
}

func TestAttendanceServiceMarkNotEnrolled(t *testing.T) {
	for _, status := range []models.EnrollmentStatus{models.EnrollmentStatusDropped, models.EnrollmentStatusCompleted} {
		svc, repo, _ := newAttendanceFixture(status)

		_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
			EnrollmentID: "enr-1",
			Date:         time.Now(),
			Status:       "Present",
		})
		require.Error(t, err)
		assert.True(t, appErrors.IsValidation(err))
		assert.Contains(t, err.Error(), "Can only mark attendance for enrolled students")
		assert.Empty(t, repo.records)
	}
}

func TestAttendanceServiceMarkInvalidStatus(t *testing.T) {
	svc, _, _ := newAttendanceFixture(models.EnrollmentStatusEnrolled)

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "enr-1",
		Date:         time.Now(),
		Status:       "Sleeping",
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Status must be Present, Absent, or Late")
}

func TestAttendanceServiceMarkMissingEnrollment(t *testing.T) {
	svc, _, _ := newAttendanceFixture(models.EnrollmentStatusEnrolled)

	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{
		EnrollmentID: "ghost",
		Date:         time.Now(),
		Status:       "Present",
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestAttendanceServiceUpdateInvalidatesCache(t *testing.T) {
	svc, repo, cache := newAttendanceFixture(models.EnrollmentStatusEnrolled)
	repo.records = map[string]models.Attendance{"att-1": {ID: "att-1", EnrollmentID: "enr-1", Status: models.AttendanceStatusAbsent}}

	remark := "arrived 10 minutes in"
	attendance, err := svc.Update(context.Background(), "att-1", UpdateAttendanceRequest{Status: "Late", Remarks: &remark})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusLate, attendance.Status)
	require.NotNil(t, attendance.Remarks)
	assert.Equal(t, remark, *attendance.Remarks)
	assert.Contains(t, cache.deletes, "attendance:summary:enr-1")
}

func TestAttendanceServiceDeleteInvalidatesCache(t *testing.T) {
	svc, repo, cache := newAttendanceFixture(models.EnrollmentStatusEnrolled)
	repo.records = map[string]models.Attendance{"att-1": {ID: "att-1", EnrollmentID: "enr-1"}}

	require.NoError(t, svc.Delete(context.Background(), "att-1"))
	assert.Contains(t, repo.deleted, "att-1")
	assert.Contains(t, cache.deletes, "attendance:summary:enr-1")
}

func TestAttendanceServiceSummaryEmpty(t *testing.T) {
	svc, repo, _ := newAttendanceFixture(models.EnrollmentStatusEnrolled)
	repo.total = 0
	repo.present = 0

	summary, err := svc.Summary(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0.0, summary.Percentage)
}

func TestAttendanceServiceSummaryPercentage(t *testing.T) {
	svc, repo, _ := newAttendanceFixture(models.EnrollmentStatusEnrolled)
	repo.total = 4
	repo.present = 3

	summary, err := svc.Summary(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Present)
	assert.Equal(t, 75.0, summary.Percentage)
}

func TestAttendanceServicePercentageRepeating(t *testing.T) {
	svc, repo, _ := newAttendanceFixture(models.EnrollmentStatusEnrolled)
	repo.total = 3
	repo.present = 2

	pct, err := svc.Percentage(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.InDelta(t, 66.6667, pct, 0.001)
}

func TestAttendanceServiceSummaryUsesCache(t *testing.T) {
	svc, repo, _ := newAttendanceFixture(models.EnrollmentStatusEnrolled)
	repo.total = 10
	repo.present = 9

	first, err := svc.Summary(context.Background(), "enr-1")
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, first.Percentage, second.Percentage)
	assert.Equal(t, 1, repo.totalCalls)
}

func TestAttendanceServiceWorksWithoutCache(t *testing.T) {
	repo := &mockAttendanceRepo{total: 2, present: 1}
	enrollments := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"enr-1": {ID: "enr-1", Status: models.EnrollmentStatusEnrolled},
	}}
	svc := NewAttendanceService(repo, enrollments, nil, validator.New(), zap.NewNop())

	summary, err := svc.Summary(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, summary.Percentage)
}
