package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

type personLister interface {
	FindByInstitution(ctx context.Context, program models.Program, institutionID int64, includeDeceased bool) ([]models.Person, error)
}

// DirectoryService is the read path shared by listings, searches and reports.
// It merges both programs into one sequence of PersonView rows.
type DirectoryService struct {
	persons personLister
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(persons personLister, metrics *MetricsService, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{persons: persons, metrics: metrics, logger: logger, now: time.Now}
}

// List returns the living persons of an institution that satisfy every filter.
// Unless filter.Sort asks for recent admissions the result keeps program
// concatenation order (ECDE then vocational).
func (s *DirectoryService) List(ctx context.Context, institutionID int64, filter models.DirectoryFilter) ([]models.PersonView, error) {
	views, err := s.fetch(ctx, institutionID, false)
	if err != nil {
		return nil, err
	}
	result := make([]models.PersonView, 0, len(views))
	for _, view := range views {
		if view.Deceased {
			continue
		}
		if matchesDirectoryFilter(view, filter) {
			result = append(result, view)
		}
	}
	if filter.Sort == models.DirectorySortRecent {
		SortByRecentAdmission(result)
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Register returns every person of an institution, deceased included, for the UPI register.
func (s *DirectoryService) Register(ctx context.Context, institutionID int64, filter models.UPIRegisterFilter) ([]models.PersonView, error) {
	views, err := s.fetch(ctx, institutionID, true)
	if err != nil {
		return nil, err
	}
	result := make([]models.PersonView, 0, len(views))
	for _, view := range views {
		if program := models.FilterValue(string(filter.ProgramType)); program != "" && string(view.ProgramType) != program {
			continue
		}
		if status := models.FilterValue(string(filter.Status)); status != "" && string(registerStatus(view)) != status {
			continue
		}
		if !matchesSearch(view, filter.SearchTerm) {
			continue
		}
		result = append(result, view)
	}
	return result, nil
}

// Deceased returns the deceased persons of an institution across both programs.
func (s *DirectoryService) Deceased(ctx context.Context, institutionID int64) ([]models.PersonView, error) {
	views, err := s.fetch(ctx, institutionID, true)
	if err != nil {
		return nil, err
	}
	result := make([]models.PersonView, 0)
	for _, view := range views {
		if view.Deceased {
			result = append(result, view)
		}
	}
	return result, nil
}

// fetch loads both programs concurrently. Any failure fails the whole call.
func (s *DirectoryService) fetch(ctx context.Context, institutionID int64, includeDeceased bool) ([]models.PersonView, error) {
	start := time.Now()
	results := make([][]models.Person, len(models.Programs))
	g, gctx := errgroup.WithContext(ctx)
	for i, program := range models.Programs {
		i, program := i, program
		g.Go(func() error {
			persons, err := s.persons.FindByInstitution(gctx, program, institutionID, includeDeceased)
			if err != nil {
				return err
			}
			results[i] = persons
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("directory fetch failed", zap.Int64("institution_id", institutionID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrFetch.Code, appErrors.ErrFetch.Status, "failed to fetch learner records")
	}
	s.metrics.ObserveDBQuery("directory_fetch", time.Since(start))

	now := s.now()
	views := make([]models.PersonView, 0, len(results[0])+len(results[1]))
	for _, persons := range results {
		for _, person := range persons {
			views = append(views, person.ToView(now))
		}
	}
	return views, nil
}

func matchesDirectoryFilter(view models.PersonView, filter models.DirectoryFilter) bool {
	if program := models.FilterValue(string(filter.ProgramType)); program != "" && string(view.ProgramType) != program {
		return false
	}
	if gender := models.FilterValue(filter.Gender); gender != "" && !strings.EqualFold(view.Gender, gender) {
		return false
	}
	if status := models.FilterValue(string(filter.Status)); status != "" && string(view.Status) != status {
		return false
	}
	if filter.AdmissionYear != nil {
		if view.AdmissionDate == nil || view.AdmissionDate.Year() != *filter.AdmissionYear {
			return false
		}
	}
	if filter.AgeRange != nil {
		if view.Age == nil || *view.Age < filter.AgeRange.Min || *view.Age > filter.AgeRange.Max {
			return false
		}
	}
	return matchesSearch(view, filter.SearchTerm)
}

// matchesSearch is a case-insensitive substring match on name, UPI and course.
func matchesSearch(view models.PersonView, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, field := range []string{view.Name, view.UPI, view.Course} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func registerStatus(view models.PersonView) models.PersonStatus {
	if view.Deceased {
		return models.PersonStatusDeceased
	}
	return view.Status
}

// SortByRecentAdmission orders views by admission date, falling back to creation
// time, most recent first. The sort is stable.
func SortByRecentAdmission(views []models.PersonView) {
	sort.SliceStable(views, func(i, j int) bool {
		return recencyOf(views[i]).After(recencyOf(views[j]))
	})
}

func recencyOf(view models.PersonView) time.Time {
	if view.AdmissionDate != nil {
		return *view.AdmissionDate
	}
	if view.CreatedAt != nil {
		return *view.CreatedAt
	}
	return time.Time{}
}
