package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuseye/attendance-api/internal/models"
)

const lecturerColumns = "lecturer_id, lecturer_name, email, department, faculty_id, is_admin, password_hash"

// LecturerRepository manages persistence for lecturer records.
type LecturerRepository struct {
	db *sqlx.DB
}

// NewLecturerRepository constructs a LecturerRepository.
func NewLecturerRepository(db *sqlx.DB) *LecturerRepository {
	return &LecturerRepository{db: db}
}

// List returns all lecturers.
func (r *LecturerRepository) List(ctx context.Context) ([]models.Lecturer, error) {
	query := fmt.Sprintf(`SELECT %s FROM lecturers ORDER BY lecturer_name ASC`, lecturerColumns)
	var lecturers []models.Lecturer
	if err := r.db.SelectContext(ctx, &lecturers, query); err != nil {
		return nil, fmt.Errorf("list lecturers: %w", err)
	}
	return lecturers, nil
}

// FindByID fetches a lecturer by ID.
func (r *LecturerRepository) FindByID(ctx context.Context, id int64) (*models.Lecturer, error) {
	query := fmt.Sprintf(`SELECT %s FROM lecturers WHERE lecturer_id = $1`, lecturerColumns)
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, id); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// FindByEmail fetches a lecturer by email for credential checks.
func (r *LecturerRepository) FindByEmail(ctx context.Context, email string) (*models.Lecturer, error) {
	query := fmt.Sprintf(`SELECT %s FROM lecturers WHERE email = $1`, lecturerColumns)
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, email); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// ExistsByEmail checks email uniqueness before creating a lecturer.
func (r *LecturerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM lecturers WHERE email = $1 LIMIT 1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check lecturer email: %w", err)
	}
	return true, nil
}

// Create inserts a new lecturer record and populates its generated ID.
func (r *LecturerRepository) Create(ctx context.Context, lecturer *models.Lecturer) error {
	const query = `INSERT INTO lecturers (lecturer_name, email, department, faculty_id, is_admin, password_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING lecturer_id`
	if err := r.db.GetContext(ctx, &lecturer.LecturerID, query,
		lecturer.LecturerName, lecturer.Email, lecturer.Department,
		lecturer.FacultyID, lecturer.IsAdmin, lecturer.PasswordHash); err != nil {
		return fmt.Errorf("create lecturer: %w", err)
	}
	return nil
}
