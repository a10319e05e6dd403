package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuseye/attendance-api/internal/models"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsByEmailOrRegNumber(ctx context.Context, email, regNumber string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateImagePath(ctx context.Context, id int64, imagePath string) error
}

type faceImageStore interface {
	Save(filename string, data []byte) (string, error)
}

type downloadSigner interface {
	Sign(filename string) (string, time.Time, error)
}

// StudentService manages student accounts and face enrollment.
type StudentService struct {
	repo      studentRepository
	faces     faceImageStore
	signer    downloadSigner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService. The signer backs signed
// reference-image download links and may be nil to disable them.
func NewStudentService(repo studentRepository, faces faceImageStore, signer downloadSigner, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, faces: faces, signer: signer, validator: validate, logger: logger}
}

// List returns students matching the filter along with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one student by ID.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student account with a hashed password.
func (s *StudentService) Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	exists, err := s.repo.ExistsByEmailOrRegNumber(ctx, req.Email, req.RegNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email or registration number already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		StudentName:  req.StudentName,
		RegNumber:    req.RegNumber,
		Email:        req.Email,
		YearOfStudy:  req.YearOfStudy,
		FacultyID:    req.FacultyID,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.logger.Info("student created", zap.Int64("student_id", student.StudentID))
	return student, nil
}

// RegisterFace stores an uploaded reference image for the student and points
// the account at it. Re-registering replaces the pointer; the previous image
// file stays on disk but is no longer referenced.
func (s *StudentService) RegisterFace(ctx context.Context, studentID int64, image []byte, originalName string) (*models.RegisterFaceResult, error) {
	if len(image) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidImage, "image payload is empty")
	}
	contentType := http.DetectContentType(image)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return nil, appErrors.Clone(appErrors.ErrInvalidImage, "")
	}

	student, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	filename := referenceFilename(student.StudentID, student.StudentName, originalName, contentType)
	if _, err := s.faces.Save(filename, image); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store reference image")
	}

	if err := s.repo.UpdateImagePath(ctx, studentID, filename); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reference image path")
	}

	s.logger.Info("reference face registered",
		zap.Int64("student_id", studentID),
		zap.String("image_path", filename))
	return &models.RegisterFaceResult{StudentID: studentID, ImagePath: filename}, nil
}

// FaceImageLink returns a short-lived signed download link for the student's
// current reference image.
func (s *StudentService) FaceImageLink(ctx context.Context, studentID int64) (*models.FaceImageLink, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "image downloads are not enabled")
	}

	student, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.ImagePath == nil || *student.ImagePath == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student has no registered reference image")
	}

	token, expiresAt, err := s.signer.Sign(*student.ImagePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &models.FaceImageLink{
		StudentID: studentID,
		URL:       "/files/faces?token=" + url.QueryEscape(token),
		ExpiresAt: expiresAt,
	}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9_]+`)

// referenceFilename derives a stable on-disk name keyed by student ID, so
// re-registration for the same student overwrites the same file while two
// students who share a display name never collide.
func referenceFilename(studentID int64, studentName, originalName, contentType string) string {
	base := strings.ToLower(strings.TrimSpace(studentName))
	base = strings.ReplaceAll(base, " ", "_")
	base = unsafeFilenameChars.ReplaceAllString(base, "")
	if base == "" {
		base = "student"
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		if contentType == "image/png" {
			ext = ".png"
		} else {
			ext = ".jpg"
		}
	}
	return fmt.Sprintf("%d_%s%s", studentID, base, ext)
}
