package models

import "time"

// StudentStatus represents the lifecycle state of a student.
type StudentStatus string

// Possible student statuses.
const (
	StudentStatusActive    StudentStatus = "Active"
	StudentStatusInactive  StudentStatus = "Inactive"
	StudentStatusGraduated StudentStatus = "Graduated"
)

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	switch s {
	case StudentStatusActive, StudentStatusInactive, StudentStatusGraduated:
		return true
	default:
		return false
	}
}

// Student represents a learner registered in the institution.
// StudentID is the caller-facing natural key (STU###) and is immutable
// after creation; ID is the internal storage identity.
type Student struct {
	ID             string        `db:"id" json:"id"`
	StudentID      string        `db:"student_id" json:"student_id"`
	FirstName      string        `db:"first_name" json:"first_name"`
	LastName       string        `db:"last_name" json:"last_name"`
	Email          string        `db:"email" json:"email"`
	Phone          string        `db:"phone" json:"phone,omitempty"`
	DateOfBirth    time.Time     `db:"date_of_birth" json:"date_of_birth"`
	Address        string        `db:"address" json:"address,omitempty"`
	EnrollmentDate time.Time     `db:"enrollment_date" json:"enrollment_date"`
	Status         StudentStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}
