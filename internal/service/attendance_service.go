package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuseye/attendance-api/internal/models"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
	"github.com/campuseye/attendance-api/pkg/jobs"
)

type attendanceRepository interface {
	MarkManual(ctx context.Context, studentID, courseID int64, date, timeIn time.Time, status models.AttendanceStatus) (*models.Attendance, error)
	HistoryByStudent(ctx context.Context, studentID int64) ([]models.AttendanceHistoryRow, error)
	Delete(ctx context.Context, attendanceID int64) error
}

type adminLecturerRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Lecturer, error)
}

// AttendanceService covers the manual marking surface and the student's own
// attendance view. Destructive operations require an admin lecturer.
type AttendanceService struct {
	repo      attendanceRepository
	lecturers adminLecturerRepository
	audit     auditEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, lecturers adminLecturerRepository, audit auditEnqueuer, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, lecturers: lecturers, audit: audit, validator: validate, logger: logger, now: time.Now}
}

// Mark records a manual attendance entry on behalf of a lecturer. The same
// (student, course, date) key as recognition applies, so marking twice
// updates the status instead of duplicating the row.
func (s *AttendanceService) Mark(ctx context.Context, claims *models.JWTClaims, req models.ManualAttendanceRequest) (*models.Attendance, error) {
	if err := s.requireAdmin(ctx, claims); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Present, Late or Absent")
	}

	now := s.now().UTC()
	date := dateOf(now)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
		}
		date = parsed.UTC()
	}

	record, err := s.repo.MarkManual(ctx, req.StudentID, req.CourseID, date, now, req.Status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	s.enqueueAudit(record)
	s.logger.Info("attendance marked manually",
		zap.Int64("student_id", record.StudentID),
		zap.Int64("course_id", record.CourseID),
		zap.String("status", string(record.Status)),
		zap.Int64("marked_by", claims.UserID))
	return record, nil
}

// HistoryForStudent returns the given student's attendance rows.
func (s *AttendanceService) HistoryForStudent(ctx context.Context, studentID int64) ([]models.AttendanceHistoryRow, error) {
	rows, err := s.repo.HistoryByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	return rows, nil
}

// Delete removes one attendance record. Admin only.
func (s *AttendanceService) Delete(ctx context.Context, claims *models.JWTClaims, attendanceID int64) error {
	if err := s.requireAdmin(ctx, claims); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, attendanceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance record")
	}
	s.logger.Info("attendance record deleted",
		zap.Int64("attendance_id", attendanceID),
		zap.Int64("deleted_by", claims.UserID))
	return nil
}

// requireAdmin checks the caller is a lecturer whose account carries the
// admin flag. The flag is read from storage, not from the token, so demotion
// takes effect without waiting for token expiry.
func (s *AttendanceService) requireAdmin(ctx context.Context, claims *models.JWTClaims) error {
	if claims == nil || claims.Role != models.RoleLecturer {
		return appErrors.Clone(appErrors.ErrForbidden, "lecturer account required")
	}
	lecturer, err := s.lecturers.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrForbidden, "lecturer account required")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}
	if !lecturer.IsAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "admin privileges required")
	}
	return nil
}

func (s *AttendanceService) enqueueAudit(record *models.Attendance) {
	if s.audit == nil {
		return
	}
	note := "marked manually"
	log := models.AttendanceLog{
		StudentID:  record.StudentID,
		CourseID:   &record.CourseID,
		Action:     models.LogActionManualMark,
		Timestamp:  s.now().UTC(),
		SystemNote: &note,
	}
	job := jobs.Job{ID: uuid.NewString(), Type: models.LogActionManualMark, Payload: log}
	if err := s.audit.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue manual mark audit log", zap.Error(err))
	}
}
