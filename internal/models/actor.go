package models

import "time"

// Role names a permission set granted through user_roles.
type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleInstitutionAdmin Role = "institution_admin"
	RoleTeacher          Role = "teacher"
	RoleDataClerk        Role = "data_clerk"
)

// Profile mirrors the profiles row of an identity-provider user.
type Profile struct {
	ID            string     `db:"id" json:"id"`
	FullName      *string    `db:"full_name" json:"full_name,omitempty"`
	InstitutionID *int64     `db:"institution_id" json:"institution_id,omitempty"`
	CreatedAt     *time.Time `db:"created_at" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Actor is the caller of a service operation, resolved once per request.
type Actor struct {
	UserID        string `json:"user_id"`
	FullName      string `json:"full_name"`
	InstitutionID *int64 `json:"institution_id,omitempty"`
	Roles         []Role `json:"roles"`
}

// HasRole reports whether the actor holds any of roles.
func (a *Actor) HasRole(roles ...Role) bool {
	if a == nil {
		return false
	}
	for _, held := range a.Roles {
		for _, r := range roles {
			if held == r {
				return true
			}
		}
	}
	return false
}

// Institution returns the actor's home institution.
func (a *Actor) Institution() (int64, bool) {
	if a == nil || a.InstitutionID == nil || *a.InstitutionID <= 0 {
		return 0, false
	}
	return *a.InstitutionID, true
}

// ActingFor returns a copy of the actor bound to another institution.
func (a *Actor) ActingFor(institutionID int64) *Actor {
	clone := *a
	clone.InstitutionID = &institutionID
	return &clone
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
