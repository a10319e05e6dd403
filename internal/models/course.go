package models

// Course represents a taught unit that attendance is recorded against.
type Course struct {
	CourseID   int64  `db:"course_id" json:"course_id"`
	CourseName string `db:"course_name" json:"course_name"`
	CourseCode string `db:"course_code" json:"course_code"`
	FacultyID  *int64 `db:"faculty_id" json:"faculty_id,omitempty"`
	LecturerID *int64 `db:"lecturer_id" json:"lecturer_id,omitempty"`
}

// Enrollment links a student to a course for a semester.
type Enrollment struct {
	ID        int64  `db:"id" json:"id"`
	StudentID int64  `db:"student_id" json:"student_id"`
	CourseID  int64  `db:"course_id" json:"course_id"`
	Semester  string `db:"semester" json:"semester"`
	Year      int    `db:"year" json:"year"`
}

// EnrollmentDetail extends the link row with display names for listings.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	CourseName  string `db:"course_name" json:"course_name"`
}
