package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuseye/attendance-api/internal/models"
	"github.com/campuseye/attendance-api/internal/recognizer"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
	"github.com/campuseye/attendance-api/pkg/jobs"
)

// Comparer scores a probe image against one stored reference image. A nil
// error means the pair was compared; acceptance is decided here, not by the
// comparison service.
type Comparer interface {
	Verify(ctx context.Context, probe []byte, referencePath string) (*recognizer.Result, error)
}

type galleryRepository interface {
	ListWithFaceImage(ctx context.Context) ([]models.GalleryEntry, error)
}

type recognitionAttendanceRepository interface {
	MarkRecognized(ctx context.Context, studentID, courseID int64, date, timeIn time.Time) (*models.Attendance, error)
}

type imageStore interface {
	Save(filename string, data []byte) (string, error)
	Exists(filename string) bool
	Path(filename string) string
}

type auditEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type recognitionObserver interface {
	ObserveIdentify(outcome string, seconds float64)
}

// RecognitionConfig tunes match acceptance.
type RecognitionConfig struct {
	// MatchThreshold is the exclusive upper bound on distance for a
	// candidate to be accepted.
	MatchThreshold float64
}

// RecognitionService implements face identification: it scans the reference
// gallery in order, scores each candidate through the comparison service and
// accepts the first candidate whose distance falls under the threshold.
type RecognitionService struct {
	gallery    galleryRepository
	attendance recognitionAttendanceRepository
	comparer   Comparer
	faces      imageStore
	captures   imageStore
	audit      auditEnqueuer
	metrics    recognitionObserver
	logger     *zap.Logger
	config     RecognitionConfig
	now        func() time.Time
}

// NewRecognitionService constructs a RecognitionService. The audit queue and
// metrics observer are optional; captures may be nil to disable probe
// snapshots.
func NewRecognitionService(
	gallery galleryRepository,
	attendance recognitionAttendanceRepository,
	comparer Comparer,
	faces imageStore,
	captures imageStore,
	audit auditEnqueuer,
	metrics recognitionObserver,
	logger *zap.Logger,
	config RecognitionConfig,
) *RecognitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MatchThreshold <= 0 {
		config.MatchThreshold = 0.4
	}
	return &RecognitionService{
		gallery:    gallery,
		attendance: attendance,
		comparer:   comparer,
		faces:      faces,
		captures:   captures,
		audit:      audit,
		metrics:    metrics,
		logger:     logger,
		config:     config,
		now:        time.Now,
	}
}

// Identify resolves a probe image to an enrolled student. When courseID is
// non-nil a successful identification is also reconciled into that course's
// attendance for today. A probe matching nobody returns ErrNoFaceMatch.
func (s *RecognitionService) Identify(ctx context.Context, probe []byte, courseID *int64) (*models.IdentifyResult, error) {
	start := s.now()

	if err := validateProbe(probe); err != nil {
		s.observe("invalid_image", start)
		return nil, err
	}

	s.snapshotProbe(probe)

	gallery, err := s.gallery.ListWithFaceImage(ctx)
	if err != nil {
		s.observe("error", start)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load face gallery")
	}

	for _, entry := range gallery {
		referencePath := s.faces.Path(entry.ImagePath)
		if !s.faces.Exists(entry.ImagePath) {
			s.logger.Debug("skipping gallery entry with missing reference image",
				zap.Int64("student_id", entry.StudentID),
				zap.String("image_path", entry.ImagePath))
			continue
		}

		result, err := s.comparer.Verify(ctx, probe, referencePath)
		if err != nil {
			// One broken candidate must not sink the whole scan.
			s.logger.Warn("face comparison failed for candidate",
				zap.Int64("student_id", entry.StudentID),
				zap.Error(err))
			continue
		}

		if result.Distance >= s.config.MatchThreshold {
			continue
		}

		identified := &models.IdentifyResult{
			Student:    entry.Info(),
			Distance:   result.Distance,
			Confidence: 1 - result.Distance,
		}

		if courseID != nil {
			now := s.now().UTC()
			record, err := s.attendance.MarkRecognized(ctx, entry.StudentID, *courseID, dateOf(now), now)
			if err != nil {
				s.observe("error", start)
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
			}
			identified.Attendance = record
		}

		s.enqueueAudit(entry.StudentID, courseID, identified.Confidence)
		s.observe("match", start)

		s.logger.Info("face identified",
			zap.Int64("student_id", entry.StudentID),
			zap.Float64("distance", result.Distance))
		return identified, nil
	}

	s.observe("no_match", start)
	return nil, appErrors.Clone(appErrors.ErrNoFaceMatch, "")
}

// validateProbe rejects payloads that are not decodable JPEG or PNG images.
func validateProbe(probe []byte) error {
	if len(probe) == 0 {
		return appErrors.Clone(appErrors.ErrInvalidImage, "image payload is empty")
	}
	switch http.DetectContentType(probe) {
	case "image/jpeg", "image/png":
		return nil
	default:
		return appErrors.Clone(appErrors.ErrInvalidImage, "")
	}
}

// snapshotProbe stores the uploaded probe for later review. Failures are
// logged and swallowed; the capture is never on the identification path.
func (s *RecognitionService) snapshotProbe(probe []byte) {
	if s.captures == nil {
		return
	}
	name := fmt.Sprintf("%s_%s.jpg", s.now().UTC().Format("20060102T150405"), uuid.NewString())
	if _, err := s.captures.Save(name, probe); err != nil {
		s.logger.Warn("failed to store probe snapshot", zap.Error(err))
	}
}

func (s *RecognitionService) enqueueAudit(studentID int64, courseID *int64, confidence float64) {
	if s.audit == nil {
		return
	}
	note := "matched via face comparison"
	log := models.AttendanceLog{
		StudentID:       studentID,
		CourseID:        courseID,
		Action:          models.LogActionFaceRecognized,
		Timestamp:       s.now().UTC(),
		ConfidenceScore: &confidence,
		SystemNote:      &note,
	}
	job := jobs.Job{ID: uuid.NewString(), Type: models.LogActionFaceRecognized, Payload: log}
	if err := s.audit.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue recognition audit log", zap.Error(err))
	}
}

func (s *RecognitionService) observe(outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveIdentify(outcome, s.now().Sub(start).Seconds())
}

// dateOf truncates a timestamp to its calendar date in UTC.
func dateOf(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
