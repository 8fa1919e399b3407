package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sms-core-api/pkg/errors"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("john.doe@example.com"))
	assert.NoError(t, Email("a+b_c-d@sub.domain.io"))

	assert.Error(t, Email(""))
	assert.Error(t, Email("   "))
	assert.Error(t, Email("no-at-sign.example.com"))
	assert.Error(t, Email("john@domain"))
	assert.Error(t, Email("john@domain.c"))
}

func TestPhone(t *testing.T) {
	assert.NoError(t, Phone(""))
	assert.NoError(t, Phone("   "))
	assert.NoError(t, Phone("0123456789"))

	assert.Error(t, Phone("123456789"))
	assert.Error(t, Phone("12345678901"))
	assert.Error(t, Phone("12345abcde"))
}

func TestStudentID(t *testing.T) {
	assert.NoError(t, StudentID("STU001"))
	assert.NoError(t, StudentID("STU12345"))

	assert.Error(t, StudentID(""))
	assert.Error(t, StudentID("STU01"))
	assert.Error(t, StudentID("stu001"))
	assert.Error(t, StudentID("STUABC"))
	assert.Error(t, StudentID("001STU"))
}

func TestCourseCode(t *testing.T) {
	assert.NoError(t, CourseCode("CS101"))
	assert.NoError(t, CourseCode("MATH201"))

	assert.Error(t, CourseCode(""))
	assert.Error(t, CourseCode("C101"))
	assert.Error(t, CourseCode("TOOLONG101"))
	assert.Error(t, CourseCode("cs101"))
	assert.Error(t, CourseCode("CS10"))
	assert.Error(t, CourseCode("CS1011"))
}

func TestName(t *testing.T) {
	assert.NoError(t, Name("Jo", "First name"))

	err := Name("", "First name")
	require.Error(t, err)
	assert.Equal(t, "First name cannot be empty", appErrors.FromError(err).Message)

	err = Name("J", "Last name")
	require.Error(t, err)
	assert.Equal(t, "Last name must be at least 2 characters long", appErrors.FromError(err).Message)
}

func TestDateOfBirth(t *testing.T) {
	assert.NoError(t, DateOfBirth(time.Now().AddDate(-20, 0, 0)))

	assert.Error(t, DateOfBirth(time.Time{}))
	assert.Error(t, DateOfBirth(time.Now().AddDate(0, 0, 1)))
	assert.Error(t, DateOfBirth(time.Now().AddDate(-101, 0, 0)))
}

func TestCredits(t *testing.T) {
	for credits := 1; credits <= 6; credits++ {
		assert.NoError(t, Credits(credits))
	}
	assert.Error(t, Credits(0))
	assert.Error(t, Credits(7))
	assert.Error(t, Credits(-1))
}

func TestCapacity(t *testing.T) {
	assert.NoError(t, Capacity(1))
	assert.NoError(t, Capacity(500))

	assert.Error(t, Capacity(0))
	assert.Error(t, Capacity(501))
}

func TestGrade(t *testing.T) {
	for _, grade := range []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D", "F"} {
		assert.NoError(t, Grade(grade))
	}
	assert.NoError(t, Grade(""))
	assert.NoError(t, Grade("  "))

	assert.Error(t, Grade("E"))
	assert.Error(t, Grade("A++"))
	assert.Error(t, Grade("b+"))

	err := Grade("Z")
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
}
