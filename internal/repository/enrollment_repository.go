package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sms-core-api/internal/models"
)

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Detail queries LEFT JOIN the referenced student and course. A deleted
// referent scans as NULL and the joined columns are simply omitted.
const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.course_id, e.enrollment_date, e.grade, e.status, e.created_at, e.updated_at,
        s.student_id AS student_natural_id, s.first_name AS student_first_name, s.last_name AS student_last_name,
        c.course_code AS course_code, c.name AS course_name
        FROM enrollments e
        LEFT JOIN students s ON s.id = e.student_id
        LEFT JOIN courses c ON c.id = e.course_id`

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrollmentDate.IsZero() {
		enrollment.EnrollmentDate = now
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusEnrolled
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (id, student_id, course_id, enrollment_date, grade, status, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :enrollment_date, :grade, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, enrollment_date, grade, status, created_at, updated_at FROM enrollments WHERE id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with joined student and course info.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + " WHERE e.id = $1"
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByStudent returns a student's enrollments, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + " WHERE e.student_id = $1 ORDER BY e.enrollment_date DESC"
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}
	return enrollments, nil
}

// ListByCourse returns a course's enrollments, newest first.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + " WHERE e.course_id = $1 ORDER BY e.enrollment_date DESC"
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, courseID); err != nil {
		return nil, fmt.Errorf("list enrollments by course: %w", err)
	}
	return enrollments, nil
}

// UpdateGrade persists only the grade; a nil grade clears it.
func (r *EnrollmentRepository) UpdateGrade(ctx context.Context, id string, grade *string) error {
	const query = `UPDATE enrollments SET grade = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, grade, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment grade: %w", err)
	}
	return nil
}

// UpdateStatus persists only the status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// UpdateStatusAndGrade persists status and grade together, as done on completion.
func (r *EnrollmentRepository) UpdateStatusAndGrade(ctx context.Context, id string, status models.EnrollmentStatus, grade *string) error {
	const query = `UPDATE enrollments SET status = $2, grade = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, grade, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment status and grade: %w", err)
	}
	return nil
}

// CountEnrolled counts enrollments for a course currently in Enrolled status.
func (r *EnrollmentRepository) CountEnrolled(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, models.EnrollmentStatusEnrolled); err != nil {
		return 0, fmt.Errorf("count enrolled: %w", err)
	}
	return count, nil
}
