package models

// Student represents an enrolled person stored in the students table. A
// non-null ImagePath means the student is enrolled in facial recognition;
// the path always points at the single current reference image.
type Student struct {
	StudentID    int64   `db:"student_id" json:"student_id"`
	StudentName  string  `db:"student_name" json:"student_name"`
	RegNumber    string  `db:"reg_number" json:"reg_number"`
	Email        string  `db:"email" json:"email"`
	YearOfStudy  *int    `db:"year_of_study" json:"year_of_study,omitempty"`
	FacultyID    *int64  `db:"faculty_id" json:"faculty_id,omitempty"`
	ImagePath    *string `db:"image_path" json:"image_path,omitempty"`
	PasswordHash string  `db:"password_hash" json:"-"`
}

// StudentInfo is the public summary returned by identification and rosters.
type StudentInfo struct {
	StudentID   int64  `json:"student_id"`
	StudentName string `json:"student_name"`
	RegNumber   string `json:"reg_number"`
	Email       string `json:"email"`
}

// Info projects the public fields of a student.
func (s Student) Info() StudentInfo {
	return StudentInfo{
		StudentID:   s.StudentID,
		StudentName: s.StudentName,
		RegNumber:   s.RegNumber,
		Email:       s.Email,
	}
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	FacultyID *int64
	Search    string
	Page      int
	PageSize  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
