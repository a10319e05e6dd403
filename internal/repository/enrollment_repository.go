package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuseye/attendance-api/internal/models"
)

// EnrollmentRepository manages the student-course link table.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Exists reports whether the student is already enrolled in the course.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID int64) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM student_course WHERE student_id = $1 AND course_id = $2 LIMIT 1`, studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create inserts a new enrollment and populates its generated ID.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	const query = `INSERT INTO student_course (student_id, course_id, semester, year)
VALUES ($1, $2, $3, $4)
RETURNING id`
	if err := r.db.GetContext(ctx, &enrollment.ID, query,
		enrollment.StudentID, enrollment.CourseID, enrollment.Semester, enrollment.Year); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// List returns all enrollments with student and course names.
func (r *EnrollmentRepository) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	const query = `SELECT sc.id, sc.student_id, sc.course_id, sc.semester, sc.year, s.student_name, c.course_name
FROM student_course sc
JOIN students s ON s.student_id = sc.student_id
JOIN courses c ON c.course_id = sc.course_id
ORDER BY sc.id ASC`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
