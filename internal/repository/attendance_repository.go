package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campuseye/attendance-api/internal/models"
)

const attendanceColumns = "attendance_id, student_id, course_id, date, time_in, time_out, status, recognized_face"

// AttendanceRepository handles persistence for attendance records. It is the
// only component that writes attendance rows; the (student_id, course_id,
// date) triple carries a uniqueness constraint so concurrent marking for the
// same key collapses into a single row.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FindByStudentCourseDate fetches the attendance row for one key, if any.
func (r *AttendanceRepository) FindByStudentCourseDate(ctx context.Context, studentID, courseID int64, date time.Time) (*models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE student_id = $1 AND course_id = $2 AND date = $3`, attendanceColumns)
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record, query, studentID, courseID, date); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &record, nil
}

// MarkRecognized reconciles a successful identification into attendance
// state for the given day. The insert path stamps time_in; the update path
// only refreshes status to Present, preserving the original check-in time so
// repeated recognitions on the same day are idempotent. The single statement
// relies on the key constraint, so two concurrent calls cannot both insert.
func (r *AttendanceRepository) MarkRecognized(ctx context.Context, studentID, courseID int64, date time.Time, timeIn time.Time) (*models.Attendance, error) {
	query := fmt.Sprintf(`INSERT INTO attendance (student_id, course_id, date, time_in, status, recognized_face)
VALUES ($1, $2, $3, $4, $5, true)
ON CONFLICT (student_id, course_id, date)
DO UPDATE SET status = EXCLUDED.status
RETURNING %s`, attendanceColumns)
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query, studentID, courseID, date, timeIn, models.AttendanceStatusPresent); err != nil {
		return nil, fmt.Errorf("mark recognized attendance: %w", err)
	}
	return &stored, nil
}

// MarkManual records a lecturer-entered attendance row with an explicit
// status, using the same insert-or-update path as recognition so duplicates
// for a key can never appear.
func (r *AttendanceRepository) MarkManual(ctx context.Context, studentID, courseID int64, date time.Time, timeIn time.Time, status models.AttendanceStatus) (*models.Attendance, error) {
	query := fmt.Sprintf(`INSERT INTO attendance (student_id, course_id, date, time_in, status, recognized_face)
VALUES ($1, $2, $3, $4, $5, false)
ON CONFLICT (student_id, course_id, date)
DO UPDATE SET status = EXCLUDED.status
RETURNING %s`, attendanceColumns)
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query, studentID, courseID, date, timeIn, status); err != nil {
		return nil, fmt.Errorf("mark manual attendance: %w", err)
	}
	return &stored, nil
}

// HistoryByStudent returns a student's attendance rows with course names.
func (r *AttendanceRepository) HistoryByStudent(ctx context.Context, studentID int64) ([]models.AttendanceHistoryRow, error) {
	query := `SELECT a.attendance_id, a.student_id, a.course_id, a.date, a.time_in, a.time_out, a.status, a.recognized_face,
c.course_name, c.course_code
FROM attendance a
JOIN courses c ON c.course_id = a.course_id
WHERE a.student_id = $1
ORDER BY a.date DESC, a.time_in DESC`
	var rows []models.AttendanceHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance history: %w", err)
	}
	return rows, nil
}

// Delete removes one attendance record by ID.
func (r *AttendanceRepository) Delete(ctx context.Context, attendanceID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE attendance_id = $1`, attendanceID)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Summary aggregates attendance counts per course for admin reporting.
func (r *AttendanceRepository) Summary(ctx context.Context) ([]models.AttendanceSummaryRow, error) {
	query := `SELECT c.course_name, c.course_code, f.faculty_name,
COUNT(a.attendance_id) AS total_records,
COUNT(a.attendance_id) FILTER (WHERE a.status = 'Present') AS present,
COUNT(a.attendance_id) FILTER (WHERE a.status = 'Late') AS late,
COUNT(a.attendance_id) FILTER (WHERE a.status = 'Absent') AS absent
FROM courses c
LEFT JOIN faculties f ON f.faculty_id = c.faculty_id
LEFT JOIN attendance a ON a.course_id = c.course_id
GROUP BY c.course_id, c.course_name, c.course_code, f.faculty_name
ORDER BY c.course_code`
	var rows []models.AttendanceSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	return rows, nil
}
