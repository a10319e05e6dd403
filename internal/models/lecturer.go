package models

// Lecturer represents a teaching staff account. IsAdmin gates the
// administrative surfaces (user management, manual attendance, reports).
type Lecturer struct {
	LecturerID   int64   `db:"lecturer_id" json:"lecturer_id"`
	LecturerName string  `db:"lecturer_name" json:"lecturer_name"`
	Email        string  `db:"email" json:"email"`
	Department   *string `db:"department" json:"department,omitempty"`
	FacultyID    *int64  `db:"faculty_id" json:"faculty_id,omitempty"`
	IsAdmin      bool    `db:"is_admin" json:"is_admin"`
	PasswordHash string  `db:"password_hash" json:"-"`
}

// Faculty groups students, lecturers and courses.
type Faculty struct {
	FacultyID   int64   `db:"faculty_id" json:"faculty_id"`
	FacultyName string  `db:"faculty_name" json:"faculty_name"`
	Description *string `db:"description" json:"description,omitempty"`
}
