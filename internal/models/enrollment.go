package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Enrolled is the initial state;
// Completed and Dropped are intended terminal states, though the
// service layer does not reject repeat transitions.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "Enrolled"
	EnrollmentStatusCompleted EnrollmentStatus = "Completed"
	EnrollmentStatusDropped   EnrollmentStatus = "Dropped"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusCompleted, EnrollmentStatusDropped:
		return true
	default:
		return false
	}
}

// Enrollment is the join record linking one student to one course,
// carrying status and an optional letter grade.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	CourseID       string           `db:"course_id" json:"course_id"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollment_date"`
	Grade          *string          `db:"grade" json:"grade,omitempty"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
// The joined fields are nullable: when the referenced student or course
// has been deleted the join silently omits that side.
type EnrollmentDetail struct {
	Enrollment
	StudentNaturalID *string `db:"student_natural_id" json:"student_natural_id,omitempty"`
	StudentFirstName *string `db:"student_first_name" json:"student_first_name,omitempty"`
	StudentLastName  *string `db:"student_last_name" json:"student_last_name,omitempty"`
	CourseCode       *string `db:"course_code" json:"course_code,omitempty"`
	CourseName       *string `db:"course_name" json:"course_name,omitempty"`
}
