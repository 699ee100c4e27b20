package models

import "time"

// Institution is an ECDE centre or vocational training centre.
type Institution struct {
	ID               int64      `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Type             *string    `db:"type" json:"type,omitempty"`
	Level            *string    `db:"level" json:"level,omitempty"`
	Category         *string    `db:"category" json:"category,omitempty"`
	Ownership        *string    `db:"ownership" json:"ownership,omitempty"`
	OwnershipDoc     *string    `db:"ownership_doc" json:"ownership_doc,omitempty"`
	EducationSystem  *string    `db:"education_system" json:"education_system,omitempty"`
	UniqueCode       *string    `db:"unique_code" json:"unique_code,omitempty"`
	RegistrationNo   *string    `db:"registration_no" json:"registration_no,omitempty"`
	RegistrationDate *time.Time `db:"registration_date" json:"registration_date,omitempty"`
	KRAPin           *string    `db:"kra_pin" json:"kra_pin,omitempty"`
	County           *string    `db:"county" json:"county,omitempty"`
	Subcounty        *string    `db:"subcounty" json:"subcounty,omitempty"`
	Ward             *string    `db:"ward" json:"ward,omitempty"`
	Zone             *string    `db:"zone" json:"zone,omitempty"`
	Location         *string    `db:"location" json:"location,omitempty"`
	NearestTown      *string    `db:"nearest_town" json:"nearest_town,omitempty"`
	NearestPolice    *string    `db:"nearest_police" json:"nearest_police,omitempty"`
	NearestHealth    *string    `db:"nearest_health" json:"nearest_health,omitempty"`
	GeoLat           *string    `db:"geo_lat" json:"geo_lat,omitempty"`
	GeoLng           *string    `db:"geo_lng" json:"geo_lng,omitempty"`
	SBPCompliance    *bool      `db:"sbp_compliance" json:"sbp_compliance,omitempty"`
	CreatedAt        *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// InstitutionFilter narrows institution listings.
type InstitutionFilter struct {
	Search   string
	Page     int
	PageSize int
}
