package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuseye/attendance-api/internal/models"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
)

type mockLecturerReader struct {
	lecturers map[string]*models.Lecturer
}

func (m *mockLecturerReader) FindByEmail(ctx context.Context, email string) (*models.Lecturer, error) {
	if l, ok := m.lecturers[email]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	if s, ok := m.students[email]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestAuthService(t *testing.T) (*AuthService, *mockLecturerReader, *mockStudentReader) {
	lecturers := &mockLecturerReader{lecturers: map[string]*models.Lecturer{
		"prof@uni.test": {LecturerID: 1, LecturerName: "Prof Kamau", Email: "prof@uni.test", PasswordHash: hashPassword(t, "lecturer-pass")},
	}}
	students := &mockStudentReader{students: map[string]*models.Student{
		"alice@uni.test": {StudentID: 2, StudentName: "Alice Mwangi", Email: "alice@uni.test", PasswordHash: hashPassword(t, "student-pass")},
	}}
	svc := NewAuthService(lecturers, students, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "attendance-api",
	})
	return svc, lecturers, students
}

func TestLoginResolvesLecturerRole(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "prof@uni.test", Password: "lecturer-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleLecturer, resp.Role)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, models.RoleLecturer, claims.Role)
}

func TestLoginFallsBackToStudent(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@uni.test", Password: "student-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, resp.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(2), claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@uni.test", Password: "whatever"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@uni.test", Password: "wrong"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@uni.test", Password: "student-pass"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
