package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

// ProfileRepository reads the profiles and user_roles rows maintained by the identity provider.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns the profile of userID.
func (r *ProfileRepository) FindByID(ctx context.Context, userID string) (*models.Profile, error) {
	const query = `SELECT id, full_name, institution_id, created_at, updated_at FROM profiles WHERE id = $1 LIMIT 1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

// Roles returns the roles granted to userID.
func (r *ProfileRepository) Roles(ctx context.Context, userID string) ([]models.Role, error) {
	const query = `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`
	var roles []models.Role
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}
	return roles, nil
}
