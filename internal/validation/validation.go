// Package validation holds the stateless field-level rules that gate
// every mutation. Each function either returns nil or a typed
// validation error whose message is surfaced verbatim to callers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	appErrors "github.com/noah-isme/sms-core-api/pkg/errors"
)

var (
	emailPattern      = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern      = regexp.MustCompile(`^[0-9]{10}$`)
	studentIDPattern  = regexp.MustCompile(`^STU[0-9]{3,}$`)
	courseCodePattern = regexp.MustCompile(`^[A-Z]{2,4}[0-9]{3}$`)
)

// validGrades is the closed set of letter grades an enrollment may carry.
var validGrades = []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D", "F"}

func fail(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

// Email requires a non-empty, RFC-shaped address.
func Email(email string) error {
	if strings.TrimSpace(email) == "" {
		return fail("Email cannot be empty")
	}
	if !emailPattern.MatchString(email) {
		return fail("Invalid email format")
	}
	return nil
}

// Phone accepts an empty value; a non-empty value must be exactly 10 digits.
func Phone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return nil
	}
	if !phonePattern.MatchString(phone) {
		return fail("Phone number must be 10 digits")
	}
	return nil
}

// StudentID requires the STU### natural key format.
func StudentID(studentID string) error {
	if strings.TrimSpace(studentID) == "" {
		return fail("Student ID cannot be empty")
	}
	if !studentIDPattern.MatchString(studentID) {
		return fail("Student ID must be in format STU### (e.g., STU001)")
	}
	return nil
}

// CourseCode requires the XX### natural key format.
func CourseCode(courseCode string) error {
	if strings.TrimSpace(courseCode) == "" {
		return fail("Course code cannot be empty")
	}
	if !courseCodePattern.MatchString(courseCode) {
		return fail("Course code must be in format XX### (e.g., CS101)")
	}
	return nil
}

// Name requires a non-empty value of at least 2 characters. The field
// name parameterises the failure message.
func Name(name, fieldName string) error {
	if strings.TrimSpace(name) == "" {
		return fail(fmt.Sprintf("%s cannot be empty", fieldName))
	}
	if len(name) < 2 {
		return fail(fmt.Sprintf("%s must be at least 2 characters long", fieldName))
	}
	return nil
}

// DateOfBirth must be set, not in the future and at most 100 years ago.
func DateOfBirth(dob time.Time) error {
	if dob.IsZero() {
		return fail("Date of birth cannot be empty")
	}
	now := time.Now()
	if dob.After(now) {
		return fail("Date of birth cannot be in the future")
	}
	if dob.Before(now.AddDate(-100, 0, 0)) {
		return fail("Date of birth is too old")
	}
	return nil
}

// Credits must be in [1,6].
func Credits(credits int) error {
	if credits < 1 || credits > 6 {
		return fail("Credits must be between 1 and 6")
	}
	return nil
}

// Capacity must be in [1,500].
func Capacity(capacity int) error {
	if capacity < 1 || capacity > 500 {
		return fail("Capacity must be between 1 and 500")
	}
	return nil
}

// Grade accepts an empty value; a non-empty value must be one of the
// eleven letter grades.
func Grade(grade string) error {
	if strings.TrimSpace(grade) == "" {
		return nil
	}
	for _, valid := range validGrades {
		if valid == grade {
			return nil
		}
	}
	return fail("Invalid grade. Must be one of: A+, A, A-, B+, B, B-, C+, C, C-, D, F")
}
