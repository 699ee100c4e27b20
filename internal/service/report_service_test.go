package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
	"github.com/noah-isme/ecde-votmis-api/pkg/export"
)

type mapCacheRepo struct {
	values  map[string][]byte
	deleted []string
}

func newMapCacheRepo() *mapCacheRepo {
	return &mapCacheRepo{values: map[string][]byte{}}
}

func (m *mapCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mapCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *mapCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func newTestReportService(store *memPersonStore, cache *CacheService) *ReportService {
	svc := NewReportService(newTestDirectory(store), cache, export.NewCSVExporter(), export.NewPDFExporter(), zap.NewNop())
	svc.now = func() time.Time { return dateAt(2024, 6, 14) }
	return svc
}

func seedReportData(store *memPersonStore) {
	dob := dateAt(2020, 6, 15)
	store.seed(models.ProgramECDE, 42, "BT001", "Amina", "Wafula", func(p *models.Person) { p.DOB = &dob })
	store.seed(models.ProgramECDE, 42, "BT002", "Baraka", "Otieno", func(p *models.Person) {
		p.Gender = "male"
		p.Status = models.PersonStatusTransferred
	})
	store.seed(models.ProgramVocational, 42, "BT003", "Chebet", "Kiprop", func(p *models.Person) {
		older := dateAt(2004, 1, 10)
		p.DOB = &older
	})
	store.seed(models.ProgramVocational, 42, "BT004", "Dalmas", "Were", func(p *models.Person) {
		p.Deceased = true
		p.Status = models.PersonStatusDeceased
	})
}

func TestReportDashboardCountsAndCaches(t *testing.T) {
	store := newMemPersonStore()
	seedReportData(store)
	repo := newMapCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc := newTestReportService(store, cache)

	summary, hit, err := svc.Dashboard(context.Background(), actorAt(42))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, summary.ECDELearners)
	assert.Equal(t, 1, summary.VocationalPupils)
	assert.Equal(t, 2, summary.TotalEnrolled)
	assert.Equal(t, 1, summary.Transferred)
	assert.Equal(t, 1, summary.Deceased)
	assert.Contains(t, repo.values, DashboardCacheKey(42))

	store.seed(models.ProgramECDE, 42, "BT005", "Esther", "Nafula", nil)
	cached, hit, err := svc.Dashboard(context.Background(), actorAt(42))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, cached.ECDELearners)
}

func TestReportAdmissionReport(t *testing.T) {
	store := newMemPersonStore()
	seedReportData(store)
	svc := newTestReportService(store, nil)

	report, err := svc.AdmissionReport(context.Background(), actorAt(42))
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalAdmissions)
	assert.Equal(t, 1, report.ECDEAdmissions)
	assert.Equal(t, 1, report.VocationalCount)
	assert.Equal(t, 2, report.FemaleCount)
	assert.Equal(t, 0, report.MaleCount)
	assert.InDelta(t, 11.5, report.AverageAge, 0.001)
	assert.Len(t, report.RecentAdmissions, 2)
}

func TestReportUPIRegisterIncludesDeceased(t *testing.T) {
	store := newMemPersonStore()
	seedReportData(store)
	svc := newTestReportService(store, nil)

	views, err := svc.UPIRegister(context.Background(), actorAt(42), models.UPIRegisterFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 4)

	deceased, err := svc.DeceasedRegister(context.Background(), actorAt(42))
	require.NoError(t, err)
	require.Len(t, deceased, 1)
	assert.Equal(t, "BT004", deceased[0].UPI)
}

func TestReportExportUPIRegisterCSV(t *testing.T) {
	store := newMemPersonStore()
	seedReportData(store)
	svc := newTestReportService(store, nil)

	file, err := svc.ExportUPIRegister(context.Background(), actorAt(42), models.UPIRegisterFilter{ProgramType: models.ProgramECDE}, models.ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "upi-register-20240614.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "UPI,Name,Gender,Date of Birth,Course,Admission Date,Status", lines[0])
	assert.Equal(t, "BT001,Amina Wafula,female,2020-06-15,ECDE,,enrolled", lines[1])
}

func TestReportExportUPIRegisterPDF(t *testing.T) {
	store := newMemPersonStore()
	seedReportData(store)
	svc := newTestReportService(store, nil)

	file, err := svc.ExportUPIRegister(context.Background(), actorAt(42), models.UPIRegisterFilter{}, models.ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestReportExportRejectsUnknownFormat(t *testing.T) {
	svc := newTestReportService(newMemPersonStore(), nil)

	_, err := svc.ExportUPIRegister(context.Background(), actorAt(42), models.UPIRegisterFilter{}, models.ReportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportRequiresInstitution(t *testing.T) {
	svc := newTestReportService(newMemPersonStore(), nil)

	_, _, err := svc.Dashboard(context.Background(), &models.Actor{UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
