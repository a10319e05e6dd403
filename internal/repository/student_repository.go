package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campuseye/attendance-api/internal/models"
)

const studentColumns = "student_id, student_name, reg_number, email, year_of_study, faculty_id, image_path, password_hash"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if filter.FacultyID != nil {
		conditions = append(conditions, fmt.Sprintf("faculty_id = $%d", len(args)+1))
		args = append(args, *filter.FacultyID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(student_name) LIKE $%d OR LOWER(reg_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	whereClause := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM students WHERE %s ORDER BY student_name ASC LIMIT %d OFFSET %d`,
		studentColumns, whereClause, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE student_id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByEmail fetches a student by email for credential checks.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE email = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByEmailOrRegNumber checks uniqueness before creating a student.
func (r *StudentRepository) ExistsByEmailOrRegNumber(ctx context.Context, email, regNumber string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM students WHERE email = $1 OR reg_number = $2 LIMIT 1`, email, regNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student uniqueness: %w", err)
	}
	return true, nil
}

// Create inserts a new student record and populates its generated ID.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (student_name, reg_number, email, year_of_study, faculty_id, image_path, password_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING student_id`
	if err := r.db.GetContext(ctx, &student.StudentID, query,
		student.StudentName, student.RegNumber, student.Email, student.YearOfStudy,
		student.FacultyID, student.ImagePath, student.PasswordHash); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateImagePath overwrites a student's reference image path. Last write
// wins; the previous file is orphaned on disk, never deleted here.
func (r *StudentRepository) UpdateImagePath(ctx context.Context, id int64, imagePath string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET image_path = $2 WHERE student_id = $1`, id, imagePath)
	if err != nil {
		return fmt.Errorf("update student image path: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student image path: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListWithFaceImage enumerates the reference gallery: every student with a
// registered reference image, in a stable order. The result is recomputed on
// each call; there is no caching and no staleness guarantee beyond that.
func (r *StudentRepository) ListWithFaceImage(ctx context.Context) ([]models.GalleryEntry, error) {
	const query = `SELECT student_id, student_name, reg_number, email, image_path
FROM students
WHERE image_path IS NOT NULL
ORDER BY student_id ASC`
	var entries []models.GalleryEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list face gallery: %w", err)
	}
	return entries, nil
}
