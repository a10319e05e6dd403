package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseye/attendance-api/internal/models"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
)

type mockSummaryRepo struct {
	rows  []models.AttendanceSummaryRow
	calls int
}

func (m *mockSummaryRepo) Summary(ctx context.Context) ([]models.AttendanceSummaryRow, error) {
	m.calls++
	return m.rows, nil
}

type mockCache struct {
	store map[string][]byte
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

func summaryRows() []models.AttendanceSummaryRow {
	return []models.AttendanceSummaryRow{
		{CourseName: "Databases", CourseCode: "CS201", TotalRecords: 10, Present: 6, Late: 2, Absent: 2},
		{CourseName: "Networks", CourseCode: "CS305", TotalRecords: 0},
	}
}

func TestSummaryComputesRate(t *testing.T) {
	svc := NewReportService(&mockSummaryRepo{rows: summaryRows()}, nil, nil, time.Minute)

	rows, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.InDelta(t, 80.0, rows[0].AttendanceRate, 1e-9)
	// No records means a zero rate, not a division by zero.
	assert.Zero(t, rows[1].AttendanceRate)
}

func TestSummaryCachesResult(t *testing.T) {
	repo := &mockSummaryRepo{rows: summaryRows()}
	cache := &mockCache{}
	svc := NewReportService(repo, cache, nil, time.Minute)

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	rows, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.InDelta(t, 80.0, rows[0].AttendanceRate, 1e-9)

	svc.InvalidateSummary(context.Background())
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestExportCSV(t *testing.T) {
	svc := NewReportService(&mockSummaryRepo{rows: summaryRows()}, nil, nil, time.Minute)

	result, err := svc.Export(context.Background(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, string(result.Content), "CS201")
	assert.Contains(t, string(result.Content), "80.0")
}

func TestExportPDF(t *testing.T) {
	svc := NewReportService(&mockSummaryRepo{rows: summaryRows()}, nil, nil, time.Minute)

	result, err := svc.Export(context.Background(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, len(result.Content) > 0)
	assert.Equal(t, "%PDF", string(result.Content[:4]))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewReportService(&mockSummaryRepo{rows: summaryRows()}, nil, nil, time.Minute)

	_, err := svc.Export(context.Background(), "xlsx")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
