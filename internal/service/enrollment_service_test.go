package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseye/attendance-api/internal/models"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	existing map[[2]int64]bool
	created  *models.Enrollment
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, courseID int64) (bool, error) {
	return m.existing[[2]int64{studentID, courseID}], nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.ID = 5
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) List(ctx context.Context) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

type mockStudentFinder struct {
	known map[int64]bool
}

func (m *mockStudentFinder) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if m.known[id] {
		return &models.Student{StudentID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type mockCourseFinder struct {
	known map[int64]bool
}

func (m *mockCourseFinder) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if m.known[id] {
		return &models.Course{CourseID: id}, nil
	}
	return nil, sql.ErrNoRows
}

func newTestEnrollmentService(repo *mockEnrollmentRepo) *EnrollmentService {
	students := &mockStudentFinder{known: map[int64]bool{2: true}}
	courses := &mockCourseFinder{known: map[int64]bool{10: true}}
	return NewEnrollmentService(repo, students, courses, nil, nil)
}

func TestEnrollmentCreate(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newTestEnrollmentService(repo)

	enrollment, err := svc.Create(context.Background(), models.CreateEnrollmentRequest{
		StudentID: 2, CourseID: 10, Semester: "Fall", Year: 2024,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), enrollment.ID)
	require.NotNil(t, repo.created)
	assert.Equal(t, "Fall", repo.created.Semester)
}

func TestEnrollmentCreateRejectsDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{existing: map[[2]int64]bool{{2, 10}: true}}
	svc := newTestEnrollmentService(repo)

	_, err := svc.Create(context.Background(), models.CreateEnrollmentRequest{
		StudentID: 2, CourseID: 10, Semester: "Fall", Year: 2024,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestEnrollmentCreateUnknownStudent(t *testing.T) {
	svc := newTestEnrollmentService(&mockEnrollmentRepo{})

	_, err := svc.Create(context.Background(), models.CreateEnrollmentRequest{
		StudentID: 404, CourseID: 10, Semester: "Fall", Year: 2024,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestEnrollmentCreateUnknownCourse(t *testing.T) {
	svc := newTestEnrollmentService(&mockEnrollmentRepo{})

	_, err := svc.Create(context.Background(), models.CreateEnrollmentRequest{
		StudentID: 2, CourseID: 404, Semester: "Fall", Year: 2024,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
