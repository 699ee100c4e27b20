package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
	"github.com/noah-isme/ecde-votmis-api/pkg/export"
)

type directoryReader interface {
	List(ctx context.Context, institutionID int64, filter models.DirectoryFilter) ([]models.PersonView, error)
	Register(ctx context.Context, institutionID int64, filter models.UPIRegisterFilter) ([]models.PersonView, error)
	Deceased(ctx context.Context, institutionID int64) ([]models.PersonView, error)
}

type reportExporter interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

const recentAdmissionsLimit = 10

var upiRegisterHeaders = []string{"UPI", "Name", "Gender", "Date of Birth", "Course", "Admission Date", "Status"}

// ReportService builds dashboards, admission summaries and registers.
type ReportService struct {
	directory directoryReader
	cache     *CacheService
	exporters map[models.ReportFormat]reportExporter
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(directory directoryReader, cache *CacheService, csv reportExporter, pdf reportExporter, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	exporters := map[models.ReportFormat]reportExporter{}
	if csv != nil {
		exporters[models.ReportFormatCSV] = csv
	}
	if pdf != nil {
		exporters[models.ReportFormatPDF] = pdf
	}
	return &ReportService{
		directory: directory,
		cache:     cache,
		exporters: exporters,
		logger:    logger,
		now:       time.Now,
	}
}

// Dashboard returns headline counts for the actor's institution, served from
// cache when available. The boolean reports a cache hit.
func (s *ReportService) Dashboard(ctx context.Context, actor *models.Actor) (*models.DashboardSummary, bool, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}

	if cached, ok := s.cache.Dashboard(ctx, institutionID); ok {
		return cached, true, nil
	}

	views, err := s.directory.Register(ctx, institutionID, models.UPIRegisterFilter{})
	if err != nil {
		return nil, false, err
	}
	summary := &models.DashboardSummary{InstitutionID: institutionID}
	for _, view := range views {
		if view.Deceased {
			summary.Deceased++
			continue
		}
		switch view.ProgramType {
		case models.ProgramECDE:
			summary.ECDELearners++
		case models.ProgramVocational:
			summary.VocationalPupils++
		}
		switch view.Status {
		case models.PersonStatusEnrolled:
			summary.TotalEnrolled++
		case models.PersonStatusTransferred:
			summary.Transferred++
		}
	}

	s.cache.StoreDashboard(ctx, summary)
	return summary, false, nil
}

// AdmissionReport summarises currently enrolled persons.
func (s *ReportService) AdmissionReport(ctx context.Context, actor *models.Actor) (*models.AdmissionReport, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	views, err := s.directory.List(ctx, institutionID, models.DirectoryFilter{Status: models.PersonStatusEnrolled})
	if err != nil {
		return nil, err
	}

	report := &models.AdmissionReport{TotalAdmissions: len(views)}
	var ageSum, aged int
	for _, view := range views {
		switch view.ProgramType {
		case models.ProgramECDE:
			report.ECDEAdmissions++
		case models.ProgramVocational:
			report.VocationalCount++
		}
		switch strings.ToLower(view.Gender) {
		case "male":
			report.MaleCount++
		case "female":
			report.FemaleCount++
		}
		if view.Age != nil {
			ageSum += *view.Age
			aged++
		}
	}
	if aged > 0 {
		report.AverageAge = math.Round(float64(ageSum)/float64(aged)*10) / 10
	}

	recent := make([]models.PersonView, len(views))
	copy(recent, views)
	SortByRecentAdmission(recent)
	if len(recent) > recentAdmissionsLimit {
		recent = recent[:recentAdmissionsLimit]
	}
	report.RecentAdmissions = recent
	return report, nil
}

// UPIRegister lists every issued identifier of the institution, deceased persons included.
func (s *ReportService) UPIRegister(ctx context.Context, actor *models.Actor, filter models.UPIRegisterFilter) ([]models.PersonView, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	return s.directory.Register(ctx, institutionID, filter)
}

// DeceasedRegister lists deceased persons of the institution.
func (s *ReportService) DeceasedRegister(ctx context.Context, actor *models.Actor) ([]models.PersonView, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	return s.directory.Deceased(ctx, institutionID)
}

// ExportUPIRegister renders the UPI register in the requested format.
func (s *ReportService) ExportUPIRegister(ctx context.Context, actor *models.Actor, filter models.UPIRegisterFilter, format models.ReportFormat) (*ExportFile, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	views, err := s.UPIRegister(ctx, actor, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: upiRegisterHeaders, Rows: make([]map[string]string, 0, len(views))}
	for _, view := range views {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"UPI":            view.UPI,
			"Name":           view.Name,
			"Gender":         view.Gender,
			"Date of Birth":  formatDate(view.DOB),
			"Course":         view.Course,
			"Admission Date": formatDate(view.AdmissionDate),
			"Status":         string(registerStatus(view)),
		})
	}

	data, err := exporter.Render(dataset, "UPI Register")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render upi register")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("upi-register-%s.%s", s.now().Format("20060102"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Data:        data,
	}, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
