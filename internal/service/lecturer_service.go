package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuseye/attendance-api/internal/models"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
)

type lecturerRepository interface {
	List(ctx context.Context) ([]models.Lecturer, error)
	FindByID(ctx context.Context, id int64) (*models.Lecturer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, lecturer *models.Lecturer) error
}

// LecturerService manages lecturer accounts.
type LecturerService struct {
	repo      lecturerRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLecturerService constructs a LecturerService.
func NewLecturerService(repo lecturerRepository, validate *validator.Validate, logger *zap.Logger) *LecturerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LecturerService{repo: repo, validator: validate, logger: logger}
}

// List returns all lecturers.
func (s *LecturerService) List(ctx context.Context) ([]models.Lecturer, error) {
	lecturers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lecturers")
	}
	return lecturers, nil
}

// Get returns one lecturer by ID.
func (s *LecturerService) Get(ctx context.Context, id int64) (*models.Lecturer, error) {
	lecturer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}
	return lecturer, nil
}

// Create registers a new lecturer account with a hashed password.
func (s *LecturerService) Create(ctx context.Context, req models.CreateLecturerRequest) (*models.Lecturer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lecturer payload")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check lecturer email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	// Creation is open; new accounts never carry the admin flag.
	lecturer := &models.Lecturer{
		LecturerName: req.LecturerName,
		Email:        req.Email,
		Department:   req.Department,
		FacultyID:    req.FacultyID,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, lecturer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lecturer")
	}

	s.logger.Info("lecturer created", zap.Int64("lecturer_id", lecturer.LecturerID))
	return lecturer, nil
}
