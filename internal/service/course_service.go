package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-core-api/internal/models"
	"github.com/noah-isme/sms-core-api/internal/validation"
	appErrors "github.com/noah-isme/sms-core-api/pkg/errors"
)

type courseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindByCode(ctx context.Context, code string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]models.Course, error)
	ListBySemester(ctx context.Context, semester string) ([]models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	CourseCode  string `json:"course_code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Credits     int    `json:"credits" validate:"required"`
	Instructor  string `json:"instructor"`
	Semester    string `json:"semester"`
	MaxCapacity int    `json:"max_capacity" validate:"required"`
}

// UpdateCourseRequest holds payload for updating courses. The course
// code is immutable.
type UpdateCourseRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Credits     int    `json:"credits" validate:"required"`
	Instructor  string `json:"instructor"`
	Semester    string `json:"semester"`
	MaxCapacity int    `json:"max_capacity" validate:"required"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

func validateCourseFields(name string, credits, capacity int) error {
	if err := validation.Name(name, "Course name"); err != nil {
		return err
	}
	if err := validation.Credits(credits); err != nil {
		return err
	}
	return validation.Capacity(capacity)
}

// Create registers a new course offering.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := validation.CourseCode(req.CourseCode); err != nil {
		return nil, err
	}
	if err := validateCourseFields(req.Name, req.Credits, req.MaxCapacity); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByCode(ctx, req.CourseCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Course code already exists")
	}
	course := &models.Course{
		CourseCode:  req.CourseCode,
		Name:        req.Name,
		Description: req.Description,
		Credits:     req.Credits,
		Instructor:  req.Instructor,
		Semester:    req.Semester,
		MaxCapacity: req.MaxCapacity,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_code", course.CourseCode))
	return course, nil
}

// Get returns a course by internal ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// GetByCode returns a course by its course code.
func (s *CourseService) GetByCode(ctx context.Context, code string) (*models.Course, error) {
	course, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// List returns all courses ordered by course code.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// ListBySemester returns courses for the given semester label.
func (s *CourseService) ListBySemester(ctx context.Context, semester string) ([]models.Course, error) {
	courses, err := s.repo.ListBySemester(ctx, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses by semester")
	}
	return courses, nil
}

// Update modifies the mutable fields of an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := validateCourseFields(req.Name, req.Credits, req.MaxCapacity); err != nil {
		return nil, err
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	course.Name = req.Name
	course.Description = req.Description
	course.Credits = req.Credits
	course.Instructor = req.Instructor
	course.Semester = req.Semester
	course.MaxCapacity = req.MaxCapacity
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes a course unconditionally; enrollments are not cascaded.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}
