package dto

import (
	"strings"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

// RegisterPersonRequest registers an ECDE learner or vocational student.
type RegisterPersonRequest struct {
	Program       models.Program `json:"program" validate:"required,oneof=ecde vocational"`
	FirstName     string         `json:"firstName" validate:"required"`
	LastName      string         `json:"lastName" validate:"required"`
	OtherName     string         `json:"otherName"`
	Gender        string         `json:"gender" validate:"required,oneof=male female"`
	DateOfBirth   *Date          `json:"dateOfBirth" validate:"required"`
	AdmissionDate *Date          `json:"admissionDate"`
}

// Normalized returns a copy with program and gender trimmed and lowercased.
func (r RegisterPersonRequest) Normalized() RegisterPersonRequest {
	r.Program = models.Program(strings.ToLower(strings.TrimSpace(string(r.Program))))
	r.Gender = strings.ToLower(strings.TrimSpace(r.Gender))
	return r
}

// UpdatePersonRequest patches the bio data of a person. Omitted fields keep their value.
type UpdatePersonRequest struct {
	FirstName     *string              `json:"firstName" validate:"omitempty,min=1"`
	LastName      *string              `json:"lastName" validate:"omitempty,min=1"`
	OtherName     *string              `json:"otherName"`
	Gender        *string              `json:"gender" validate:"omitempty,oneof=male female"`
	DateOfBirth   *Date                `json:"dateOfBirth"`
	AdmissionDate *Date                `json:"admissionDate"`
	Status        *models.PersonStatus `json:"status" validate:"omitempty,oneof=enrolled graduated suspended"`
}

// Normalized returns a copy with gender and status trimmed and lowercased. The
// receiver's pointers are not written through.
func (r UpdatePersonRequest) Normalized() UpdatePersonRequest {
	if r.Gender != nil {
		gender := strings.ToLower(strings.TrimSpace(*r.Gender))
		r.Gender = &gender
	}
	if r.Status != nil {
		status := models.PersonStatus(strings.ToLower(strings.TrimSpace(string(*r.Status))))
		r.Status = &status
	}
	return r
}

// PhotoUpload carries an uploaded image stream.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
}

// DirectoryQuery mirrors the directory filters accepted over HTTP.
type DirectoryQuery struct {
	Search        string `form:"search"`
	ProgramType   string `form:"programType"`
	Gender        string `form:"gender"`
	Status        string `form:"status"`
	AdmissionYear string `form:"admissionYear"`
	MinAge        string `form:"minAge"`
	MaxAge        string `form:"maxAge"`
	Sort          string `form:"sort"`
	Limit         string `form:"limit"`
}
