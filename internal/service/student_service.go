package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sms-core-api/internal/models"
	"github.com/noah-isme/sms-core-api/internal/validation"
	appErrors "github.com/noah-isme/sms-core-api/pkg/errors"
)

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	List(ctx context.Context) ([]models.Student, error)
	ListByStatus(ctx context.Context, status models.StudentStatus) ([]models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	UpdateStatus(ctx context.Context, id string, status models.StudentStatus) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	StudentID   string    `json:"student_id" validate:"required"`
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	Email       string    `json:"email" validate:"required"`
	Phone       string    `json:"phone"`
	DateOfBirth time.Time `json:"date_of_birth" validate:"required"`
	Address     string    `json:"address"`
}

// UpdateStudentRequest holds payload for updating students. The natural
// key and enrollment date are immutable; status changes go through
// ChangeStatus.
type UpdateStudentRequest struct {
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	Email       string    `json:"email" validate:"required"`
	Phone       string    `json:"phone"`
	DateOfBirth time.Time `json:"date_of_birth" validate:"required"`
	Address     string    `json:"address"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

func (s *StudentService) validateFields(studentID, firstName, lastName, email, phone string, dob time.Time, includeID bool) error {
	if includeID {
		if err := validation.StudentID(studentID); err != nil {
			return err
		}
	}
	if err := validation.Name(firstName, "First name"); err != nil {
		return err
	}
	if err := validation.Name(lastName, "Last name"); err != nil {
		return err
	}
	if err := validation.Email(email); err != nil {
		return err
	}
	if err := validation.Phone(phone); err != nil {
		return err
	}
	return validation.DateOfBirth(dob)
}

// Create registers a new student. New students start Active with the
// enrollment date set to now.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.validateFields(req.StudentID, req.FirstName, req.LastName, req.Email, req.Phone, req.DateOfBirth, true); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByStudentID(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Student ID already exists")
	}
	student := &models.Student{
		StudentID:      req.StudentID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		DateOfBirth:    req.DateOfBirth,
		Address:        req.Address,
		EnrollmentDate: time.Now().UTC(),
		Status:         models.StudentStatusActive,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.StudentID))
	return student, nil
}

// Get returns a student by internal ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// GetByStudentID returns a student by the STU### natural key.
func (s *StudentService) GetByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// List returns all students, newest enrollment first.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// ListActive returns all students with status Active.
func (s *StudentService) ListActive(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.ListByStatus(ctx, models.StudentStatusActive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active students")
	}
	return students, nil
}

// Update modifies an existing student record. The student_id is
// immutable and not re-validated.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.validateFields("", req.FirstName, req.LastName, req.Email, req.Phone, req.DateOfBirth, false); err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = req.Email
	student.Phone = req.Phone
	student.DateOfBirth = req.DateOfBirth
	student.Address = req.Address
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// ChangeStatus sets a student's status to Active, Inactive or Graduated.
func (s *StudentService) ChangeStatus(ctx context.Context, id string, status models.StudentStatus) (*models.Student, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Status must be Active, Inactive, or Graduated")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student status")
	}
	student.Status = status
	return student, nil
}

// Delete removes a student unconditionally. Enrollments and attendance
// referencing the student are not cascaded; subsequent enrollment joins
// omit the missing side.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
