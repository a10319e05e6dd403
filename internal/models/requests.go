package models

import "time"

// CreateStudentRequest is the payload for registering a student account.
type CreateStudentRequest struct {
	StudentName string `json:"student_name" validate:"required,min=2"`
	RegNumber   string `json:"reg_number" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	YearOfStudy *int   `json:"year_of_study" validate:"omitempty,min=1,max=8"`
	FacultyID   *int64 `json:"faculty_id"`
}

// CreateLecturerRequest is the payload for registering a lecturer account.
// The admin flag is deliberately absent: accounts always start without it
// and it is only granted directly in storage by an operator.
type CreateLecturerRequest struct {
	LecturerName string  `json:"lecturer_name" validate:"required,min=2"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=6"`
	Department   *string `json:"department"`
	FacultyID    *int64  `json:"faculty_id"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	CourseName string `json:"course_name" validate:"required,min=2"`
	CourseCode string `json:"course_code" validate:"required"`
	FacultyID  *int64 `json:"faculty_id"`
	LecturerID *int64 `json:"lecturer_id"`
}

// CreateEnrollmentRequest links a student to a course.
type CreateEnrollmentRequest struct {
	StudentID int64  `json:"student_id" validate:"required"`
	CourseID  int64  `json:"course_id" validate:"required"`
	Semester  string `json:"semester" validate:"required"`
	Year      int    `json:"year" validate:"required,min=2000"`
}

// ManualAttendanceRequest records a lecturer-entered attendance row.
type ManualAttendanceRequest struct {
	StudentID int64            `json:"student_id" validate:"required"`
	CourseID  int64            `json:"course_id" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required"`
	// Date is optional; empty means today. Format 2006-01-02.
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// RegisterFaceResult reports where a reference image was stored.
type RegisterFaceResult struct {
	StudentID int64  `json:"student_id"`
	ImagePath string `json:"image_path"`
}

// FaceImageLink is a short-lived signed download link for a student's
// reference image, relative to the API base path.
type FaceImageLink struct {
	StudentID int64     `json:"student_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
