package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseye/attendance-api/internal/models"
)

func newEnrollmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryExists(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM student_course WHERE student_id = $1 AND course_id = $2")).
		WithArgs(int64(2), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM student_course").
		WithArgs(int64(2), int64(11)).
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.Exists(context.Background(), 2, 11)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO student_course (student_id, course_id, semester, year)")).
		WithArgs(int64(2), int64(10), "Fall", 2024).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	enrollment := &models.Enrollment{StudentID: 2, CourseID: 10, Semester: "Fall", Year: 2024}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	assert.Equal(t, int64(5), enrollment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newEnrollmentMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "semester", "year", "student_name", "course_name"}).
		AddRow(int64(5), int64(2), int64(10), "Fall", 2024, "Alice Mwangi", "Databases")
	mock.ExpectQuery("SELECT sc.id, sc.student_id, sc.course_id").
		WillReturnRows(rows)

	enrollments, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "Databases", enrollments[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
