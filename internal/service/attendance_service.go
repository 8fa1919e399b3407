package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-core-api/internal/models"
	appErrors "github.com/noah-isme/sms-core-api/pkg/errors"
)

type attendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Attendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Attendance, error)
	Update(ctx context.Context, id string, status models.AttendanceStatus, remarks *string) error
	Delete(ctx context.Context, id string) error
	Totals(ctx context.Context, enrollmentID string) (total int, present int, err error)
}

type enrollmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
}

// MarkAttendanceRequest describes payload for marking attendance.
type MarkAttendanceRequest struct {
	EnrollmentID string    `json:"enrollment_id" validate:"required"`
	Date         time.Time `json:"date" validate:"required"`
	Status       string    `json:"status" validate:"required"`
	Remarks      *string   `json:"remarks"`
}

// UpdateAttendanceRequest describes payload for correcting a record.
// A nil Remarks clears the field.
type UpdateAttendanceRequest struct {
	Status  string  `json:"status" validate:"required"`
	Remarks *string `json:"remarks"`
}

// AttendanceService coordinates per-enrollment attendance entries and
// the attendance-percentage aggregate.
type AttendanceService struct {
	repo        attendanceRepository
	enrollments enrollmentReader
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, enrollments enrollmentReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

func summaryCacheKey(enrollmentID string) string {
	return fmt.Sprintf("attendance:summary:%s", enrollmentID)
}

// Mark records an attendance event for an enrollment. Only enrollments
// currently in Enrolled status accept attendance. Marking the same
// enrollment twice on one date produces two rows; both count in the
// percentage.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	enrollment, err := s.enrollments.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusEnrolled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Can only mark attendance for enrolled students")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Status must be Present, Absent, or Late")
	}
	attendance := &models.Attendance{
		EnrollmentID: req.EnrollmentID,
		Date:         req.Date,
		Status:       status,
		Remarks:      req.Remarks,
	}
	if err := s.repo.Create(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance")
	}
	s.cache.Invalidate(ctx, summaryCacheKey(req.EnrollmentID))
	return attendance, nil
}

// Get returns an attendance record by ID.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.Attendance, error) {
	attendance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return attendance, nil
}

// ListByEnrollment returns an enrollment's attendance, newest date first.
func (s *AttendanceService) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Attendance, error) {
	records, err := s.repo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// ListByDate returns all attendance records across enrollments for a date.
func (s *AttendanceService) ListByDate(ctx context.Context, date time.Time) ([]models.Attendance, error) {
	records, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// Update corrects the status and remarks of an existing record.
func (s *AttendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	status := models.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Status must be Present, Absent, or Late")
	}
	attendance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if err := s.repo.Update(ctx, id, status, req.Remarks); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	attendance.Status = status
	attendance.Remarks = req.Remarks
	s.cache.Invalidate(ctx, summaryCacheKey(attendance.EnrollmentID))
	return attendance, nil
}

// Delete removes an attendance record unconditionally.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	attendance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	s.cache.Invalidate(ctx, summaryCacheKey(attendance.EnrollmentID))
	return nil
}

// Summary returns total/present counts and the attendance percentage
// for an enrollment. An enrollment with no attendance rows yields 0.0,
// not a division error.
func (s *AttendanceService) Summary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error) {
	key := summaryCacheKey(enrollmentID)
	var cached models.AttendanceSummary
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	total, present, err := s.repo.Totals(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance totals")
	}
	summary := &models.AttendanceSummary{Total: total, Present: present}
	if total > 0 {
		summary.Percentage = float64(present) * 100.0 / float64(total)
	}
	s.cache.Set(ctx, key, summary)
	return summary, nil
}

// Percentage returns only the attendance percentage for an enrollment.
func (s *AttendanceService) Percentage(ctx context.Context, enrollmentID string) (float64, error) {
	summary, err := s.Summary(ctx, enrollmentID)
	if err != nil {
		return 0, err
	}
	return summary.Percentage, nil
}
