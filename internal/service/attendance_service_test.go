package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseye/attendance-api/internal/models"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
)

type mockAttendanceRepo struct {
	records   map[string]models.Attendance
	deleted   []int64
	deleteErr error
	history   []models.AttendanceHistoryRow
}

func markKey(studentID, courseID int64, date time.Time) string {
	return fmt.Sprintf("%d/%d/%s", studentID, courseID, date.Format("2006-01-02"))
}

func (m *mockAttendanceRepo) MarkManual(ctx context.Context, studentID, courseID int64, date, timeIn time.Time, status models.AttendanceStatus) (*models.Attendance, error) {
	if m.records == nil {
		m.records = make(map[string]models.Attendance)
	}
	key := markKey(studentID, courseID, date)
	record, ok := m.records[key]
	if ok {
		// Upsert semantics: status changes, time_in does not.
		record.Status = status
	} else {
		record = models.Attendance{
			AttendanceID: int64(len(m.records) + 1),
			StudentID:    studentID,
			CourseID:     courseID,
			Date:         date,
			TimeIn:       timeIn,
			Status:       status,
		}
	}
	m.records[key] = record
	return &record, nil
}

func (m *mockAttendanceRepo) HistoryByStudent(ctx context.Context, studentID int64) ([]models.AttendanceHistoryRow, error) {
	return m.history, nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, attendanceID int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, attendanceID)
	return nil
}

type mockAdminLecturers struct {
	lecturers map[int64]*models.Lecturer
}

func (m *mockAdminLecturers) FindByID(ctx context.Context, id int64) (*models.Lecturer, error) {
	if l, ok := m.lecturers[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: 1, Role: models.RoleLecturer}
}

func newTestAttendanceService(repo *mockAttendanceRepo) (*AttendanceService, *mockAudit) {
	lecturers := &mockAdminLecturers{lecturers: map[int64]*models.Lecturer{
		1: {LecturerID: 1, IsAdmin: true},
		2: {LecturerID: 2, IsAdmin: false},
	}}
	audit := &mockAudit{}
	return NewAttendanceService(repo, lecturers, audit, nil, nil), audit
}

func TestMarkManualAttendance(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc, audit := newTestAttendanceService(repo)

	record, err := svc.Mark(context.Background(), adminClaims(), models.ManualAttendanceRequest{
		StudentID: 2, CourseID: 10, Status: models.AttendanceStatusLate,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusLate, record.Status)
	assert.False(t, record.RecognizedFace)

	require.Len(t, audit.jobs, 1)
	logged, ok := audit.jobs[0].Payload.(models.AttendanceLog)
	require.True(t, ok)
	assert.Equal(t, models.LogActionManualMark, logged.Action)
}

func TestMarkTwiceSameDayUpdatesStatusKeepsTimeIn(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc, _ := newTestAttendanceService(repo)

	first, err := svc.Mark(context.Background(), adminClaims(), models.ManualAttendanceRequest{
		StudentID: 2, CourseID: 10, Status: models.AttendanceStatusPresent, Date: "2024-05-01",
	})
	require.NoError(t, err)

	second, err := svc.Mark(context.Background(), adminClaims(), models.ManualAttendanceRequest{
		StudentID: 2, CourseID: 10, Status: models.AttendanceStatusAbsent, Date: "2024-05-01",
	})
	require.NoError(t, err)

	assert.Equal(t, first.AttendanceID, second.AttendanceID)
	assert.Equal(t, models.AttendanceStatusAbsent, second.Status)
	assert.True(t, second.TimeIn.Equal(first.TimeIn))
	assert.Len(t, repo.records, 1)
}

func TestMarkRejectsNonAdmin(t *testing.T) {
	svc, _ := newTestAttendanceService(&mockAttendanceRepo{})

	cases := []*models.JWTClaims{
		nil,
		{UserID: 2, Role: models.RoleLecturer},
		{UserID: 5, Role: models.RoleStudent},
		{UserID: 99, Role: models.RoleLecturer},
	}
	for _, claims := range cases {
		_, err := svc.Mark(context.Background(), claims, models.ManualAttendanceRequest{
			StudentID: 2, CourseID: 10, Status: models.AttendanceStatusPresent,
		})
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	}
}

func TestMarkRejectsInvalidStatus(t *testing.T) {
	svc, _ := newTestAttendanceService(&mockAttendanceRepo{})

	_, err := svc.Mark(context.Background(), adminClaims(), models.ManualAttendanceRequest{
		StudentID: 2, CourseID: 10, Status: "Sleeping",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDeleteAttendance(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc, _ := newTestAttendanceService(repo)

	require.NoError(t, svc.Delete(context.Background(), adminClaims(), 7))
	assert.Equal(t, []int64{7}, repo.deleted)
}

func TestDeleteAttendanceMissing(t *testing.T) {
	repo := &mockAttendanceRepo{deleteErr: sql.ErrNoRows}
	svc, _ := newTestAttendanceService(repo)

	err := svc.Delete(context.Background(), adminClaims(), 99)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestHistoryForStudent(t *testing.T) {
	repo := &mockAttendanceRepo{history: []models.AttendanceHistoryRow{
		{Attendance: models.Attendance{AttendanceID: 1, StudentID: 2}, CourseName: "Databases", CourseCode: "CS201"},
	}}
	svc, _ := newTestAttendanceService(repo)

	rows, err := svc.HistoryForStudent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CS201", rows[0].CourseCode)
}
