package models

// GalleryEntry pairs an identity with its stored reference image. The
// gallery is recomputed from the students table on every identification
// request; entries whose file has since disappeared are skipped during the
// scan rather than treated as errors.
type GalleryEntry struct {
	StudentID   int64  `db:"student_id"`
	StudentName string `db:"student_name"`
	RegNumber   string `db:"reg_number"`
	Email       string `db:"email"`
	ImagePath   string `db:"image_path"`
}

// Info projects the public identity fields of a gallery entry.
func (g GalleryEntry) Info() StudentInfo {
	return StudentInfo{
		StudentID:   g.StudentID,
		StudentName: g.StudentName,
		RegNumber:   g.RegNumber,
		Email:       g.Email,
	}
}

// IdentifyResult is the positive outcome of an identification request.
// Confidence is derived as 1 - distance; the raw distance is only assumed
// to lie in [0, 1].
type IdentifyResult struct {
	Student    StudentInfo `json:"student"`
	Distance   float64     `json:"distance"`
	Confidence float64     `json:"confidence"`
	Attendance *Attendance `json:"attendance,omitempty"`
}
