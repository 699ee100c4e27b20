package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

func TestInstitutionRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM institutions WHERE (LOWER(name) LIKE $1 OR LOWER(COALESCE(unique_code, '')) LIKE $1) ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs("%bumala%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "unique_code"}).AddRow(1, "Bumala ECDE", "K01"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM institutions WHERE")).
		WithArgs("%bumala%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	institutions, total, err := repo.List(context.Background(), models.InstitutionFilter{Search: "Bumala"})
	require.NoError(t, err)
	require.Len(t, institutions, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "K01", *institutions[0].UniqueCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstitutionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	mock.ExpectQuery("INSERT INTO institutions").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	institution := &models.Institution{Name: "Nambale VTC"}
	require.NoError(t, repo.Create(context.Background(), institution))
	assert.Equal(t, int64(42), institution.ID)
	assert.NotNil(t, institution.CreatedAt)
}

func TestProfileRepositoryRoles(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT role FROM user_roles WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("data_clerk").AddRow("teacher"))

	roles, err := repo.Roles(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleDataClerk, models.RoleTeacher}, roles)
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	log := &models.AuditLog{Action: models.AuditActionPersonRegister, Resource: "person"}
	require.NoError(t, repo.Create(context.Background(), log))
	assert.NotEmpty(t, log.ID)
	assert.False(t, log.CreatedAt.IsZero())
}
