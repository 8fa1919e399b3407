package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
	AttendanceStatusLate    AttendanceStatus = "Late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// Attendance is a single dated event under one enrollment. Multiple
// rows may exist for the same enrollment and date; each is an
// independent event.
type Attendance struct {
	ID           string           `db:"id" json:"id"`
	EnrollmentID string           `db:"enrollment_id" json:"enrollment_id"`
	Date         time.Time        `db:"attendance_date" json:"date"`
	Status       AttendanceStatus `db:"status" json:"status"`
	Remarks      *string          `db:"remarks" json:"remarks,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceSummary aggregates attendance rows for one enrollment.
type AttendanceSummary struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Percentage float64 `json:"percentage"`
}
