package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuseye/attendance-api/internal/models"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
)

type mockLecturerRepo struct {
	lecturers map[int64]*models.Lecturer
	emailUsed bool
	created   *models.Lecturer
}

func (m *mockLecturerRepo) List(ctx context.Context) ([]models.Lecturer, error) {
	var out []models.Lecturer
	for _, l := range m.lecturers {
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockLecturerRepo) FindByID(ctx context.Context, id int64) (*models.Lecturer, error) {
	if l, ok := m.lecturers[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLecturerRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.emailUsed, nil
}

func (m *mockLecturerRepo) Create(ctx context.Context, lecturer *models.Lecturer) error {
	lecturer.LecturerID = 7
	m.created = lecturer
	return nil
}

func TestCreateLecturerHashesPassword(t *testing.T) {
	repo := &mockLecturerRepo{}
	svc := NewLecturerService(repo, nil, nil)

	lecturer, err := svc.Create(context.Background(), models.CreateLecturerRequest{
		LecturerName: "Dr. Wafula",
		Email:        "wafula@uni.test",
		Password:     "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), lecturer.LecturerID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(lecturer.PasswordHash), []byte("secret-pass")))
}

func TestCreateLecturerRejectsDuplicateEmail(t *testing.T) {
	repo := &mockLecturerRepo{emailUsed: true}
	svc := NewLecturerService(repo, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateLecturerRequest{
		LecturerName: "Dr. Wafula",
		Email:        "wafula@uni.test",
		Password:     "secret-pass",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

// Lecturer creation is an open endpoint. A caller must not be able to grant
// itself the admin flag through the payload; the flag only exists in storage.
func TestCreateLecturerNeverGrantsAdmin(t *testing.T) {
	repo := &mockLecturerRepo{}
	svc := NewLecturerService(repo, nil, nil)

	var req models.CreateLecturerRequest
	payload := []byte(`{"lecturer_name":"Mallory","email":"mallory@uni.test","password":"secret-pass","is_admin":true}`)
	require.NoError(t, json.Unmarshal(payload, &req))

	lecturer, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, lecturer.IsAdmin)
	assert.False(t, repo.created.IsAdmin)
}
