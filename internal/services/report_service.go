package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/exporter"
	"retailsmart/internal/files"
	"retailsmart/internal/infrastructure"
	"retailsmart/internal/validation"
	"retailsmart/pkg/contracts/domain"
)

// ErrInvalidReportName is returned for names that are not plain report file names
var ErrInvalidReportName = errors.New("invalid report name")

// Reporter builds the KPI report for a date range
type Reporter interface {
	Report(ctx context.Context, r domain.DateRange) (exporter.Report, error)
}

// ReportService saves KPI reports into the export directory and serves them back
type ReportService struct {
	reporter  Reporter
	exporter  *exporter.ReportExporter
	discovery *files.Discovery
	validator *validation.FileValidator
	dir       string
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// NewReportService creates a report service writing into dir
func NewReportService(reporter Reporter, dir string, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		reporter:  reporter,
		exporter:  exporter.NewReportExporter(dir),
		discovery: files.NewDiscovery(dir),
		validator: validation.NewFileValidator(logger),
		dir:       dir,
		metrics:   metrics,
		logger:    logger.With(slog.String("service", "reports")),
	}
}

// Save writes the report for r in format (csv, xlsx or both) and
// describes the files written
func (s *ReportService) Save(ctx context.Context, r domain.DateRange, format string) ([]files.FileInfo, error) {
	if !exporter.ValidFormat(format) {
		return nil, apierrors.NewAppValidationError(fmt.Sprintf("%v: %q", ErrUnknownFormat, format))
	}
	if err := s.validator.ValidateOutputDirectory(s.dir); err != nil {
		return nil, apierrors.NewStorageError("export directory is not writable", err)
	}

	report, err := s.reporter.Report(ctx, r)
	if err != nil {
		return nil, err
	}

	paths, err := s.exporter.Export(report, format)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to save report", err)
	}

	saved := make([]files.FileInfo, 0, len(paths))
	for _, path := range paths {
		info, err := s.discovery.Stat(path)
		if err != nil {
			return nil, apierrors.NewStorageError("saved report is missing", err)
		}
		saved = append(saved, info)
		s.metrics.RecordExport(ctx, info.Format)
	}

	s.logger.InfoContext(ctx, "KPI report saved",
		slog.String("format", format),
		slog.String("source", report.DataSource),
		slog.Int("files", len(saved)))
	return saved, nil
}

// List returns the saved reports, newest first
func (s *ReportService) List(ctx context.Context) ([]files.FileInfo, error) {
	reports, err := s.discovery.FindReports(".")
	if err != nil {
		return nil, apierrors.NewStorageError("failed to list reports", err)
	}
	s.logger.DebugContext(ctx, "Reports listed", slog.Int("count", len(reports)))
	return reports, nil
}

// Open returns a saved report by file name. The caller closes the reader.
func (s *ReportService) Open(ctx context.Context, name string) (files.FileInfo, io.ReadSeekCloser, error) {
	if !validReportName(name) {
		return files.FileInfo{}, nil, apierrors.NewAppValidationError(fmt.Sprintf("%v: %q", ErrInvalidReportName, name))
	}

	path := filepath.Join(s.dir, name)
	if err := s.validator.ValidateFile(path, ".csv", ".xlsx"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return files.FileInfo{}, nil, apierrors.NewNotFoundError("report "+name, err)
		}
		return files.FileInfo{}, nil, apierrors.NewStorageError("report is not readable", err)
	}

	info, err := s.discovery.Stat(path)
	if err != nil {
		return files.FileInfo{}, nil, apierrors.NewStorageError("report is not readable", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return files.FileInfo{}, nil, apierrors.NewStorageError("report is not readable", err)
	}

	s.logger.DebugContext(ctx, "Report opened", slog.String("name", name))
	return info, f, nil
}

// validReportName accepts bare kpi_report_ csv and xlsx file names only
func validReportName(name string) bool {
	if name == "" || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
	default:
		return false
	}
	return strings.HasPrefix(name, files.ReportPrefix)
}
