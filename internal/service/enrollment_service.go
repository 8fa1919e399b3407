package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-core-api/internal/models"
	"github.com/noah-isme/sms-core-api/internal/validation"
	appErrors "github.com/noah-isme/sms-core-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
	UpdateGrade(ctx context.Context, id string, grade *string) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	UpdateStatusAndGrade(ctx context.Context, id string, status models.EnrollmentStatus, grade *string) error
	CountEnrolled(ctx context.Context, courseID string) (int, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// EnrollStudentRequest describes enrollment creation payload.
type EnrollStudentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

// EnrollmentService orchestrates enrollment workflows: capacity limits,
// status transitions and grade assignment.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentReader
	courses   courseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentReader, courses courseReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, validator: validate, logger: logger}
}

// Enroll registers an active student into a course with free capacity.
// The capacity check-then-create sequence is not atomic against
// concurrent enrolls for the same course; the system assumes a single
// operator per session.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollStudentRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Status != models.StudentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Only active students can be enrolled")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	enrolled, err := s.repo.CountEnrolled(ctx, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if enrolled >= course.MaxCapacity {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Course has reached maximum capacity")
	}
	enrollment := &models.Enrollment{
		StudentID:      req.StudentID,
		CourseID:       req.CourseID,
		EnrollmentDate: time.Now().UTC(),
		Status:         models.EnrollmentStatusEnrolled,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	s.logger.Info("student enrolled",
		zap.String("student_id", req.StudentID),
		zap.String("course_id", req.CourseID),
	)
	detail, err := s.repo.FindDetailByID(ctx, enrollment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment detail")
	}
	return detail, nil
}

// Get returns an enrollment with joined student and course context.
// When a referent has been deleted the joined side is omitted rather
// than failing.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return detail, nil
}

// ListByStudent returns a student's enrollments, newest first.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListByCourse returns a course's enrollments, newest first.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// UpdateGrade sets or clears the grade without touching the status.
func (s *EnrollmentService) UpdateGrade(ctx context.Context, id string, grade string) (*models.Enrollment, error) {
	if err := validation.Grade(grade); err != nil {
		return nil, err
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	var value *string
	if strings.TrimSpace(grade) != "" {
		value = &grade
	}
	if err := s.repo.UpdateGrade(ctx, id, value); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	enrollment.Grade = value
	return enrollment, nil
}

// Drop sets the enrollment status to Dropped. No check is made on the
// prior status; terminality is not enforced at this layer.
func (s *EnrollmentService) Drop(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.repo.UpdateStatus(ctx, id, models.EnrollmentStatusDropped); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}
	enrollment.Status = models.EnrollmentStatusDropped
	return enrollment, nil
}

// Complete sets the grade and transitions the enrollment to Completed.
// Completion requires a concrete letter grade.
func (s *EnrollmentService) Complete(ctx context.Context, id string, grade string) (*models.Enrollment, error) {
	if strings.TrimSpace(grade) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "A grade is required to complete an enrollment")
	}
	if err := validation.Grade(grade); err != nil {
		return nil, err
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.repo.UpdateStatusAndGrade(ctx, id, models.EnrollmentStatusCompleted, &grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete enrollment")
	}
	enrollment.Status = models.EnrollmentStatusCompleted
	enrollment.Grade = &grade
	return enrollment, nil
}

// CountEnrolled returns the number of currently Enrolled records for a course.
func (s *EnrollmentService) CountEnrolled(ctx context.Context, courseID string) (int, error) {
	count, err := s.repo.CountEnrolled(ctx, courseID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	return count, nil
}
