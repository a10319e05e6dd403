package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/campuseye/attendance-api/internal/models"
	appErrors "github.com/campuseye/attendance-api/pkg/errors"
	"github.com/campuseye/attendance-api/pkg/export"
)

const summaryCacheKey = "reports:attendance_summary"

type summaryRepository interface {
	Summary(ctx context.Context) ([]models.AttendanceSummaryRow, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ExportFormat selects the rendered report type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered report bytes with transport metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ReportService aggregates attendance into per-course summaries for admins.
// Summaries are cached; marking attendance does not invalidate the cache, it
// simply expires.
type ReportService struct {
	repo     summaryRepository
	cache    reportCache
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewReportService constructs a ReportService.
func NewReportService(repo summaryRepository, cache reportCache, logger *zap.Logger, cacheTTL time.Duration) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ReportService{
		repo:     repo,
		cache:    cache,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// Summary returns per-course attendance aggregates with a derived rate.
func (s *ReportService) Summary(ctx context.Context) ([]models.AttendanceSummaryRow, error) {
	if s.cache != nil {
		var cached []models.AttendanceSummaryRow
		err := s.cache.Get(ctx, summaryCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("summary cache read failed", zap.Error(err))
		}
	}

	rows, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build attendance summary")
	}

	for i := range rows {
		rows[i].AttendanceRate = attendanceRate(rows[i])
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, summaryCacheKey, rows, s.cacheTTL); err != nil {
			s.logger.Warn("summary cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// Export renders the summary in the requested format.
func (s *ReportService) Export(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	rows, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}

	dataset := summaryDataset(rows)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "attendance_summary_" + stamp + ".csv"}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, "Attendance Summary")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "attendance_summary_" + stamp + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// InvalidateSummary drops the cached summary, if any.
func (s *ReportService) InvalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, summaryCacheKey); err != nil {
		s.logger.Warn("summary cache invalidation failed", zap.Error(err))
	}
}

func attendanceRate(row models.AttendanceSummaryRow) float64 {
	if row.TotalRecords == 0 {
		return 0
	}
	return float64(row.Present+row.Late) / float64(row.TotalRecords) * 100
}

func summaryDataset(rows []models.AttendanceSummaryRow) export.Dataset {
	headers := []string{"Course", "Code", "Faculty", "Total", "Present", "Late", "Absent", "Rate (%)"}
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		faculty := ""
		if row.FacultyName != nil {
			faculty = *row.FacultyName
		}
		out = append(out, map[string]string{
			"Course":   row.CourseName,
			"Code":     row.CourseCode,
			"Faculty":  faculty,
			"Total":    strconv.Itoa(row.TotalRecords),
			"Present":  strconv.Itoa(row.Present),
			"Late":     strconv.Itoa(row.Late),
			"Absent":   strconv.Itoa(row.Absent),
			"Rate (%)": strconv.FormatFloat(row.AttendanceRate, 'f', 1, 64),
		})
	}
	return export.Dataset{Headers: headers, Rows: out}
}
