package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusLate    AttendanceStatus = "Late"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Attendance represents one student's presence for one course on one
// calendar date. At most one row exists per (student, course, date); the
// attendance table carries a uniqueness constraint on that triple.
type Attendance struct {
	AttendanceID   int64            `db:"attendance_id" json:"attendance_id"`
	StudentID      int64            `db:"student_id" json:"student_id"`
	CourseID       int64            `db:"course_id" json:"course_id"`
	Date           time.Time        `db:"date" json:"date"`
	TimeIn         time.Time        `db:"time_in" json:"time_in"`
	TimeOut        *time.Time       `db:"time_out" json:"time_out,omitempty"`
	Status         AttendanceStatus `db:"status" json:"status"`
	RecognizedFace bool             `db:"recognized_face" json:"recognized_face"`
}

// AttendanceHistoryRow is a student's own attendance view with course names.
type AttendanceHistoryRow struct {
	Attendance
	CourseName string `db:"course_name" json:"course_name"`
	CourseCode string `db:"course_code" json:"course_code"`
}

// AttendanceLog is an audit row for recognition and manual marking actions.
type AttendanceLog struct {
	LogID           int64     `db:"log_id" json:"log_id"`
	StudentID       int64     `db:"student_id" json:"student_id"`
	CourseID        *int64    `db:"course_id" json:"course_id,omitempty"`
	Action          string    `db:"action" json:"action"`
	Timestamp       time.Time `db:"timestamp" json:"timestamp"`
	ConfidenceScore *float64  `db:"confidence_score" json:"confidence_score,omitempty"`
	SystemNote      *string   `db:"system_note" json:"system_note,omitempty"`
}

// Audit log actions.
const (
	LogActionFaceRecognized = "face_recognized"
	LogActionManualMark     = "manual_mark"
)

// AttendanceSummaryRow aggregates attendance per course for admin reporting.
type AttendanceSummaryRow struct {
	CourseName     string  `db:"course_name" json:"course_name"`
	CourseCode     string  `db:"course_code" json:"course_code"`
	FacultyName    *string `db:"faculty_name" json:"faculty_name,omitempty"`
	TotalRecords   int     `db:"total_records" json:"total_records"`
	Present        int     `db:"present" json:"present"`
	Late           int     `db:"late" json:"late"`
	Absent         int     `db:"absent" json:"absent"`
	AttendanceRate float64 `db:"attendance_rate" json:"attendance_rate"`
}
