package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

const institutionColumns = `id, name, type, level, category, ownership, ownership_doc, education_system, unique_code,
        registration_no, registration_date, kra_pin, county, subcounty, ward, zone, location, nearest_town,
        nearest_police, nearest_health, geo_lat, geo_lng, sbp_compliance, created_at`

// InstitutionRepository manages persistence for institutions.
type InstitutionRepository struct {
	db *sqlx.DB
}

// NewInstitutionRepository constructs an InstitutionRepository.
func NewInstitutionRepository(db *sqlx.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// List returns institutions matching filter ordered by name.
func (r *InstitutionRepository) List(ctx context.Context, filter models.InstitutionFilter) ([]models.Institution, int, error) {
	base := "FROM institutions"
	var args []interface{}
	if filter.Search != "" {
		base += " WHERE (LOWER(name) LIKE $1 OR LOWER(COALESCE(unique_code, '')) LIKE $1)"
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", institutionColumns, base, size, offset)
	var institutions []models.Institution
	if err := r.db.SelectContext(ctx, &institutions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list institutions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count institutions: %w", err)
	}
	return institutions, total, nil
}

// FindByID fetches an institution by ID.
func (r *InstitutionRepository) FindByID(ctx context.Context, id int64) (*models.Institution, error) {
	query := fmt.Sprintf("SELECT %s FROM institutions WHERE id = $1", institutionColumns)
	var institution models.Institution
	if err := r.db.GetContext(ctx, &institution, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find institution: %w", err)
	}
	return &institution, nil
}

// Create inserts a new institution and assigns its ID.
func (r *InstitutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	if institution.CreatedAt == nil {
		now := time.Now().UTC()
		institution.CreatedAt = &now
	}
	const query = `INSERT INTO institutions (name, type, level, category, ownership, ownership_doc, education_system, unique_code,
        registration_no, registration_date, kra_pin, county, subcounty, ward, zone, location, nearest_town,
        nearest_police, nearest_health, geo_lat, geo_lng, sbp_compliance, created_at)
        VALUES (:name, :type, :level, :category, :ownership, :ownership_doc, :education_system, :unique_code,
        :registration_no, :registration_date, :kra_pin, :county, :subcounty, :ward, :zone, :location, :nearest_town,
        :nearest_police, :nearest_health, :geo_lat, :geo_lng, :sbp_compliance, :created_at) RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, institution)
	if err != nil {
		return fmt.Errorf("create institution: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&institution.ID); err != nil {
			return fmt.Errorf("scan institution id: %w", err)
		}
	}
	return rows.Err()
}

// Update overwrites an institution's bio data.
func (r *InstitutionRepository) Update(ctx context.Context, institution *models.Institution) error {
	const query = `UPDATE institutions SET name = :name, type = :type, level = :level, category = :category,
        ownership = :ownership, ownership_doc = :ownership_doc, education_system = :education_system,
        unique_code = :unique_code, registration_no = :registration_no, registration_date = :registration_date,
        kra_pin = :kra_pin, county = :county, subcounty = :subcounty, ward = :ward, zone = :zone,
        location = :location, nearest_town = :nearest_town, nearest_police = :nearest_police,
        nearest_health = :nearest_health, geo_lat = :geo_lat, geo_lng = :geo_lng, sbp_compliance = :sbp_compliance
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, institution)
	if err != nil {
		return fmt.Errorf("update institution: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
