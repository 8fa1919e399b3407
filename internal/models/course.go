package models

import "time"

// Course represents an offered course. CourseCode is the natural key
// ([A-Z]{2,4} followed by three digits) and is immutable after creation.
type Course struct {
	ID          string    `db:"id" json:"id"`
	CourseCode  string    `db:"course_code" json:"course_code"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Credits     int       `db:"credits" json:"credits"`
	Instructor  string    `db:"instructor" json:"instructor,omitempty"`
	Semester    string    `db:"semester" json:"semester,omitempty"`
	MaxCapacity int       `db:"max_capacity" json:"max_capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
