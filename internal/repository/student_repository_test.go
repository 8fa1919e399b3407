package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sms-core-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "student_id", "first_name", "last_name", "email", "phone", "date_of_birth", "address", "enrollment_date", "status", "created_at", "updated_at"}).
		AddRow("id1", "STU001", "John", "Doe", "john@example.com", "5551234567", now.AddDate(-20, 0, 0), "12 Main St", now, "Active", now, now)
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{StudentID: "STU001", FirstName: "John", LastName: "Doe", Email: "john@example.com", Status: models.StudentStatusActive}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByStudentID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, first_name, last_name, email, phone, date_of_birth, address, enrollment_date, status, created_at, updated_at FROM students WHERE student_id = $1")).
		WithArgs("STU001").
		WillReturnRows(studentRows())

	student, err := repo.FindByStudentID(context.Background(), "STU001")
	require.NoError(t, err)
	assert.Equal(t, "id1", student.ID)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByStudentID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE student_id = $1 LIMIT 1")).
		WithArgs("STU001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE student_id = $1 LIMIT 1")).
		WithArgs("STU999").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByStudentID(context.Background(), "STU001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByStudentID(context.Background(), "STU999")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListOrdersByEnrollmentDate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, first_name, last_name, email, phone, date_of_birth, address, enrollment_date, status, created_at, updated_at FROM students ORDER BY enrollment_date DESC")).
		WillReturnRows(studentRows())

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListByStatus(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, first_name, last_name, email, phone, date_of_birth, address, enrollment_date, status, created_at, updated_at FROM students WHERE status = $1 ORDER BY enrollment_date DESC")).
		WithArgs(models.StudentStatusActive).
		WillReturnRows(studentRows())

	students, err := repo.ListByStatus(context.Background(), models.StudentStatusActive)
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("id1", models.StudentStatusGraduated, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "id1", models.StudentStatusGraduated)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs("id1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "id1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
