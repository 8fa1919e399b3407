package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-core-api/internal/models"
	appErrors "github.com/noah-isme/sms-core-api/pkg/errors"
)

type mockCourseRepo struct {
	courses map[string]models.Course
	byCode  map[string]string
	deleted []string
	err     error
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.err != nil {
		return m.err
	}
	if m.courses == nil {
		m.courses = make(map[string]models.Course)
	}
	if course.ID == "" {
		course.ID = "generated"
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	if id, ok := m.byCode[code]; ok {
		return m.FindByID(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.byCode[code]
	return ok, nil
}

func (m *mockCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCourseRepo) ListBySemester(ctx context.Context, semester string) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		if c.Semester == semester {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.courses, id)
	return nil
}

func validCreateCourseRequest() CreateCourseRequest {
	return CreateCourseRequest{
		CourseCode:  "CS101",
		Name:        "Intro to Computer Science",
		Description: "Fundamentals",
		Credits:     3,
		Instructor:  "Dr. Smith",
		Semester:    "Fall 2026",
		MaxCapacity: 30,
	}
}

func TestCourseServiceCreate(t *testing.T) {
	repo := &mockCourseRepo{byCode: make(map[string]string)}
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	course, err := svc.Create(context.Background(), validCreateCourseRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, "CS101", course.CourseCode)
	assert.Equal(t, 1, len(repo.courses))
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockCourseRepo{byCode: map[string]string{"CS101": "other"}}
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validCreateCourseRequest())
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Course code already exists")
}

func TestCourseServiceCreateInvalidFields(t *testing.T) {
	repo := &mockCourseRepo{byCode: make(map[string]string)}
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	cases := []struct {
		name    string
		mutate  func(*CreateCourseRequest)
		message string
	}{
		{"bad code", func(r *CreateCourseRequest) { r.CourseCode = "c101" }, "Course code must be in format XX### (e.g., CS101)"},
		{"credits too high", func(r *CreateCourseRequest) { r.Credits = 7 }, "Credits must be between 1 and 6"},
		{"capacity too high", func(r *CreateCourseRequest) { r.MaxCapacity = 501 }, "Capacity must be between 1 and 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateCourseRequest()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.True(t, appErrors.IsValidation(err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestCourseServiceGetByCode(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{"id1": {ID: "id1", CourseCode: "MATH201"}},
		byCode:  map[string]string{"MATH201": "id1"},
	}
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	course, err := svc.GetByCode(context.Background(), "MATH201")
	require.NoError(t, err)
	assert.Equal(t, "id1", course.ID)

	_, err = svc.GetByCode(context.Background(), "PHYS101")
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestCourseServiceUpdateKeepsCode(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{"id1": {ID: "id1", CourseCode: "CS101", Name: "Old", Credits: 3, MaxCapacity: 30}},
		byCode:  map[string]string{"CS101": "id1"},
	}
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "id1", UpdateCourseRequest{
		Name:        "New Name",
		Credits:     4,
		MaxCapacity: 25,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "CS101", updated.CourseCode)
	assert.Equal(t, 25, updated.MaxCapacity)
}

func TestCourseServiceListBySemester(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{
		"a": {ID: "a", Semester: "Fall 2026"},
		"b": {ID: "b", Semester: "Spring 2026"},
	}}
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	courses, err := svc.ListBySemester(context.Background(), "Fall 2026")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "a", courses[0].ID)
}

func TestCourseServiceDelete(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{"id1": {ID: "id1"}}}
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "id1"))
	assert.Contains(t, repo.deleted, "id1")
}
