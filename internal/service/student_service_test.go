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
	"github.com/campuseye/attendance-api/pkg/storage"
)

type mockStudentRepo struct {
	students   map[int64]*models.Student
	duplicates bool
	created    *models.Student
	imagePaths map[int64]string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByEmailOrRegNumber(ctx context.Context, email, regNumber string) (bool, error) {
	return m.duplicates, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	student.StudentID = 11
	m.created = student
	return nil
}

func (m *mockStudentRepo) UpdateImagePath(ctx context.Context, id int64, imagePath string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	if m.imagePaths == nil {
		m.imagePaths = make(map[int64]string)
	}
	m.imagePaths[id] = imagePath
	return nil
}

type mockFaceStore struct {
	saved map[string][]byte
}

func (m *mockFaceStore) Save(filename string, data []byte) (string, error) {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[filename] = data
	return filename, nil
}

func newTestStudentService(repo *mockStudentRepo) (*StudentService, *mockFaceStore) {
	store := &mockFaceStore{}
	signer := storage.NewDownloadSigner("test-secret", time.Hour)
	return NewStudentService(repo, store, signer, nil, nil), store
}

func TestCreateStudentHashesPassword(t *testing.T) {
	repo := &mockStudentRepo{students: map[int64]*models.Student{}}
	svc, _ := newTestStudentService(repo)

	student, err := svc.Create(context.Background(), models.CreateStudentRequest{
		StudentName: "Alice Mwangi",
		RegNumber:   "CS/001/21",
		Email:       "alice@uni.test",
		Password:    "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), student.StudentID)
	assert.NotEqual(t, "secret-pass", student.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte("secret-pass")))
}

func TestCreateStudentRejectsDuplicates(t *testing.T) {
	repo := &mockStudentRepo{duplicates: true}
	svc, _ := newTestStudentService(repo)

	_, err := svc.Create(context.Background(), models.CreateStudentRequest{
		StudentName: "Alice Mwangi",
		RegNumber:   "CS/001/21",
		Email:       "alice@uni.test",
		Password:    "secret-pass",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterFaceStoresImageAndUpdatesPath(t *testing.T) {
	repo := &mockStudentRepo{students: map[int64]*models.Student{
		11: {StudentID: 11, StudentName: "Alice Mwangi"},
	}}
	svc, store := newTestStudentService(repo)

	result, err := svc.RegisterFace(context.Background(), 11, jpegProbe, "selfie.jpg")
	require.NoError(t, err)
	assert.Equal(t, "11_alice_mwangi.jpg", result.ImagePath)
	assert.Contains(t, store.saved, "11_alice_mwangi.jpg")
	assert.Equal(t, "11_alice_mwangi.jpg", repo.imagePaths[11])
}

func TestRegisterFaceReplacesPreviousImage(t *testing.T) {
	repo := &mockStudentRepo{students: map[int64]*models.Student{
		11: {StudentID: 11, StudentName: "Alice Mwangi"},
	}}
	svc, store := newTestStudentService(repo)

	_, err := svc.RegisterFace(context.Background(), 11, jpegProbe, "first.jpg")
	require.NoError(t, err)
	_, err = svc.RegisterFace(context.Background(), 11, jpegProbe, "second.jpg")
	require.NoError(t, err)

	// Same derived name both times, so the second write wins.
	assert.Len(t, store.saved, 1)
	assert.Equal(t, "11_alice_mwangi.jpg", repo.imagePaths[11])
}

func TestRegisterFaceSameNameDifferentStudents(t *testing.T) {
	repo := &mockStudentRepo{students: map[int64]*models.Student{
		11: {StudentID: 11, StudentName: "Alice Mwangi"},
		12: {StudentID: 12, StudentName: "Alice Mwangi"},
	}}
	svc, store := newTestStudentService(repo)

	_, err := svc.RegisterFace(context.Background(), 11, jpegProbe, "a.jpg")
	require.NoError(t, err)
	_, err = svc.RegisterFace(context.Background(), 12, jpegProbe, "b.jpg")
	require.NoError(t, err)

	// Filenames are keyed by ID, so a shared display name never makes one
	// registration replace the other's gallery image.
	assert.Len(t, store.saved, 2)
	assert.Equal(t, "11_alice_mwangi.jpg", repo.imagePaths[11])
	assert.Equal(t, "12_alice_mwangi.jpg", repo.imagePaths[12])
}

func TestRegisterFaceRejectsNonImage(t *testing.T) {
	repo := &mockStudentRepo{students: map[int64]*models.Student{11: {StudentID: 11}}}
	svc, _ := newTestStudentService(repo)

	_, err := svc.RegisterFace(context.Background(), 11, []byte("plain text"), "notes.txt")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidImage.Code, appErr.Code)
}

func TestRegisterFaceUnknownStudent(t *testing.T) {
	repo := &mockStudentRepo{students: map[int64]*models.Student{}}
	svc, _ := newTestStudentService(repo)

	_, err := svc.RegisterFace(context.Background(), 404, jpegProbe, "selfie.jpg")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestReferenceFilename(t *testing.T) {
	cases := []struct {
		id           int64
		name         string
		original     string
		contentType  string
		wantFilename string
	}{
		{11, "Alice Mwangi", "selfie.jpg", "image/jpeg", "11_alice_mwangi.jpg"},
		{12, "Brian O'Neil", "pic.PNG", "image/png", "12_brian_oneil.png"},
		{13, "  Cynthia  Njeri ", "upload", "image/png", "13_cynthia__njeri.png"},
		{14, "", "x.bin", "image/jpeg", "14_student.jpg"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.wantFilename, referenceFilename(tc.id, tc.name, tc.original, tc.contentType), tc.name)
	}
}

func TestFaceImageLinkSignsCurrentImage(t *testing.T) {
	path := "11_alice_mwangi.jpg"
	repo := &mockStudentRepo{students: map[int64]*models.Student{
		11: {StudentID: 11, StudentName: "Alice Mwangi", ImagePath: &path},
	}}
	svc, _ := newTestStudentService(repo)

	link, err := svc.FaceImageLink(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(11), link.StudentID)
	assert.Contains(t, link.URL, "/files/faces?token=")
	assert.True(t, link.ExpiresAt.After(time.Now()))
}

func TestFaceImageLinkWithoutRegisteredImage(t *testing.T) {
	repo := &mockStudentRepo{students: map[int64]*models.Student{
		11: {StudentID: 11, StudentName: "Alice Mwangi"},
	}}
	svc, _ := newTestStudentService(repo)

	_, err := svc.FaceImageLink(context.Background(), 11)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
