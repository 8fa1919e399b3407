package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sms-core-api/internal/models"
)

// AttendanceRepository handles persistence of attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = "id, enrollment_id, attendance_date, status, remarks, created_at, updated_at"

// Create inserts a new attendance record. There is no uniqueness
// constraint on (enrollment, date); each row is an independent event.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if attendance.CreatedAt.IsZero() {
		attendance.CreatedAt = now
	}
	attendance.UpdatedAt = now
	const query = `INSERT INTO attendance (id, enrollment_id, attendance_date, status, remarks, created_at, updated_at)
        VALUES (:id, :enrollment_id, :attendance_date, :status, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// FindByID fetches an attendance record by ID.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance WHERE id = $1", attendanceColumns)
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, query, id); err != nil {
		return nil, err
	}
	return &attendance, nil
}

// ListByEnrollment lists an enrollment's attendance, newest date first.
func (r *AttendanceRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Attendance, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance WHERE enrollment_id = $1 ORDER BY attendance_date DESC", attendanceColumns)
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list attendance by enrollment: %w", err)
	}
	return records, nil
}

// ListByDate lists attendance across all enrollments for a given date.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Attendance, error) {
	query := fmt.Sprintf("SELECT %s FROM attendance WHERE attendance_date = $1", attendanceColumns)
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, date); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	return records, nil
}

// Update persists status and remarks; a nil remarks clears the field.
func (r *AttendanceRepository) Update(ctx context.Context, id string, status models.AttendanceStatus, remarks *string) error {
	const query = `UPDATE attendance SET status = $2, remarks = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, remarks, time.Now().UTC()); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// Delete removes an attendance record.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM attendance WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// Totals returns total and present counts for an enrollment in one query.
func (r *AttendanceRepository) Totals(ctx context.Context, enrollmentID string) (total int, present int, err error) {
	const query = `SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = $2 THEN 1 ELSE 0 END), 0) AS present
        FROM attendance WHERE enrollment_id = $1`
	row := struct {
		Total   int `db:"total"`
		Present int `db:"present"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, enrollmentID, models.AttendanceStatusPresent); err != nil {
		return 0, 0, fmt.Errorf("attendance totals: %w", err)
	}
	return row.Total, row.Present, nil
}
