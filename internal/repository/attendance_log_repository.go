package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuseye/attendance-api/internal/models"
)

// AttendanceLogRepository persists audit rows for marking actions.
type AttendanceLogRepository struct {
	db *sqlx.DB
}

// NewAttendanceLogRepository constructs an AttendanceLogRepository.
func NewAttendanceLogRepository(db *sqlx.DB) *AttendanceLogRepository {
	return &AttendanceLogRepository{db: db}
}

// Insert writes one audit row.
func (r *AttendanceLogRepository) Insert(ctx context.Context, log *models.AttendanceLog) error {
	const query = `INSERT INTO attendance_logs (student_id, course_id, action, timestamp, confidence_score, system_note)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING log_id`
	if err := r.db.GetContext(ctx, &log.LogID, query,
		log.StudentID, log.CourseID, log.Action, log.Timestamp, log.ConfidenceScore, log.SystemNote); err != nil {
		return fmt.Errorf("insert attendance log: %w", err)
	}
	return nil
}
