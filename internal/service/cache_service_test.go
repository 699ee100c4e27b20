package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

type failingCacheRepo struct{ mapCacheRepo }

func (f *failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func TestCacheServiceStoreAndLoadDashboard(t *testing.T) {
	repo := newMapCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)

	_, ok := svc.Dashboard(context.Background(), 7)
	assert.False(t, ok)

	svc.StoreDashboard(context.Background(), &models.DashboardSummary{InstitutionID: 7, ECDELearners: 3})
	summary, ok := svc.Dashboard(context.Background(), 7)
	assert.True(t, ok)
	assert.Equal(t, 3, summary.ECDELearners)
}

func TestCacheServiceEvictDashboardsSkipsUnsetIDs(t *testing.T) {
	repo := newMapCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	svc.StoreDashboard(context.Background(), &models.DashboardSummary{InstitutionID: 4})

	svc.EvictDashboards(context.Background(), 4, 0)

	assert.Equal(t, []string{DashboardCacheKey(4)}, repo.deleted)
	assert.NotContains(t, repo.values, DashboardCacheKey(4))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMapCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)
	svc.StoreDashboard(context.Background(), &models.DashboardSummary{InstitutionID: 1})
	assert.Empty(t, repo.values)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	_, ok := nilSvc.Dashboard(context.Background(), 1)
	assert.False(t, ok)
	nilSvc.EvictDashboards(context.Background(), 1)
}

func TestCacheServiceReadErrorIsMiss(t *testing.T) {
	repo := &failingCacheRepo{mapCacheRepo: *newMapCacheRepo()}
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	_, ok := svc.Dashboard(context.Background(), 1)
	assert.False(t, ok)
}
