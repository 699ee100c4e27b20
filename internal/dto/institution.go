package dto

// InstitutionRequest carries institution bio data.
type InstitutionRequest struct {
	Name             string  `json:"name" validate:"required"`
	Type             *string `json:"type"`
	Level            *string `json:"level"`
	Category         *string `json:"category"`
	Ownership        *string `json:"ownership"`
	OwnershipDoc     *string `json:"ownershipDoc"`
	EducationSystem  *string `json:"educationSystem"`
	UniqueCode       *string `json:"uniqueCode" validate:"omitempty,alphanum,max=16"`
	RegistrationNo   *string `json:"registrationNo"`
	RegistrationDate *Date   `json:"registrationDate"`
	KRAPin           *string `json:"kraPin"`
	County           *string `json:"county"`
	Subcounty        *string `json:"subcounty"`
	Ward             *string `json:"ward"`
	Zone             *string `json:"zone"`
	Location         *string `json:"location"`
	NearestTown      *string `json:"nearestTown"`
	NearestPolice    *string `json:"nearestPolice"`
	NearestHealth    *string `json:"nearestHealth"`
	GeoLat           *string `json:"geoLat"`
	GeoLng           *string `json:"geoLng"`
	SBPCompliance    *bool   `json:"sbpCompliance"`
}
