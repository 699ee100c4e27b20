package models

import (
	"strings"
	"time"
)

// Program distinguishes the two learner populations tracked by the system.
type Program string

const (
	ProgramECDE       Program = "ecde"
	ProgramVocational Program = "vocational"
)

// Programs lists every program in directory concatenation order.
var Programs = []Program{ProgramECDE, ProgramVocational}

// Valid reports whether p names a known program.
func (p Program) Valid() bool {
	return p == ProgramECDE || p == ProgramVocational
}

// Label is the human readable course name shown in listings and reports.
func (p Program) Label() string {
	switch p {
	case ProgramECDE:
		return "ECDE"
	case ProgramVocational:
		return "Vocational Training"
	default:
		return string(p)
	}
}

// ParseProgram normalises user input into a Program.
func ParseProgram(raw string) (Program, bool) {
	p := Program(strings.ToLower(strings.TrimSpace(raw)))
	return p, p.Valid()
}

// PersonStatus enumerates the lifecycle states of a person record.
type PersonStatus string

const (
	PersonStatusEnrolled    PersonStatus = "enrolled"
	PersonStatusTransferred PersonStatus = "transferred"
	PersonStatusGraduated   PersonStatus = "graduated"
	PersonStatusSuspended   PersonStatus = "suspended"
	PersonStatusDeceased    PersonStatus = "deceased"
)

// Person is an ECDE learner or a vocational student. Program is set by the
// repository from the table the row was read from.
type Person struct {
	ID            int64        `db:"id" json:"id"`
	Program       Program      `db:"-" json:"program"`
	UPI           string       `db:"upi" json:"upi"`
	FirstName     string       `db:"first_name" json:"first_name"`
	LastName      string       `db:"last_name" json:"last_name"`
	OtherName     *string      `db:"other_name" json:"other_name,omitempty"`
	Gender        string       `db:"gender" json:"gender"`
	DOB           *time.Time   `db:"dob" json:"dob,omitempty"`
	AdmissionDate *time.Time   `db:"admission_date" json:"admission_date,omitempty"`
	Photo         *string      `db:"photo" json:"photo,omitempty"`
	PhotoURL      *string      `db:"-" json:"photo_url,omitempty"`
	Status        PersonStatus `db:"status" json:"status"`
	Deceased      bool         `db:"deceased" json:"deceased"`
	DateOfDeath   *time.Time   `db:"date_of_death" json:"date_of_death,omitempty"`
	CauseOfDeath  *string      `db:"cause_of_death" json:"cause_of_death,omitempty"`
	DeathDetails  *string      `db:"death_details" json:"death_details,omitempty"`
	InstitutionID *int64       `db:"institution_id" json:"institution_id,omitempty"`
	CreatedAt     *time.Time   `db:"created_at" json:"created_at,omitempty"`
}

// FullName joins the name parts the way registers print them.
func (p Person) FullName() string {
	parts := []string{p.FirstName}
	if p.OtherName != nil && strings.TrimSpace(*p.OtherName) != "" {
		parts = append(parts, strings.TrimSpace(*p.OtherName))
	}
	parts = append(parts, p.LastName)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// PersonScope restricts UPI lookups to one institution. A nil scope is unscoped.
type PersonScope struct {
	InstitutionID int64
}

// ScopeTo returns a scope bound to institutionID.
func ScopeTo(institutionID int64) *PersonScope {
	return &PersonScope{InstitutionID: institutionID}
}

// PersonPatch carries the mutable columns of a person; nil fields are left unchanged.
type PersonPatch struct {
	FirstName     *string       `db:"first_name"`
	LastName      *string       `db:"last_name"`
	OtherName     *string       `db:"other_name"`
	Gender        *string       `db:"gender"`
	DOB           *time.Time    `db:"dob"`
	AdmissionDate *time.Time    `db:"admission_date"`
	Photo         *string       `db:"photo"`
	Status        *PersonStatus `db:"status"`
	Deceased      *bool         `db:"deceased"`
	DateOfDeath   *time.Time    `db:"date_of_death"`
	CauseOfDeath  *string       `db:"cause_of_death"`
	DeathDetails  *string       `db:"death_details"`
	InstitutionID *int64        `db:"institution_id"`
}

// PersonView is the program-agnostic row returned by the directory.
type PersonView struct {
	ID            int64        `json:"id"`
	UPI           string       `json:"upi"`
	Name          string       `json:"name"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	Gender        string       `json:"gender"`
	DOB           *time.Time   `json:"dob,omitempty"`
	Age           *int         `json:"age,omitempty"`
	AdmissionDate *time.Time   `json:"admission_date,omitempty"`
	Status        PersonStatus `json:"status"`
	ProgramType   Program      `json:"program_type"`
	Course        string       `json:"course"`
	Photo         *string      `json:"photo,omitempty"`
	Deceased      bool         `json:"deceased"`
	DateOfDeath   *time.Time   `json:"date_of_death,omitempty"`
	CauseOfDeath  *string      `json:"cause_of_death,omitempty"`
	InstitutionID *int64       `json:"institution_id,omitempty"`
	CreatedAt     *time.Time   `json:"created_at,omitempty"`
}

// AgeOn returns the whole years between dob and now, decremented when this
// year's birthday has not been reached yet.
func AgeOn(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// ToView normalises a person into the directory shape evaluated at now.
func (p Person) ToView(now time.Time) PersonView {
	view := PersonView{
		ID:            p.ID,
		UPI:           p.UPI,
		Name:          p.FullName(),
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Gender:        strings.ToLower(p.Gender),
		DOB:           p.DOB,
		AdmissionDate: p.AdmissionDate,
		Status:        p.Status,
		ProgramType:   p.Program,
		Course:        p.Program.Label(),
		Photo:         p.Photo,
		Deceased:      p.Deceased,
		DateOfDeath:   p.DateOfDeath,
		CauseOfDeath:  p.CauseOfDeath,
		InstitutionID: p.InstitutionID,
		CreatedAt:     p.CreatedAt,
	}
	if p.DOB != nil {
		age := AgeOn(*p.DOB, now)
		view.Age = &age
	}
	return view
}

// DirectorySort selects the ordering of directory results.
type DirectorySort string

const (
	DirectorySortDefault DirectorySort = ""
	DirectorySortRecent  DirectorySort = "recent"
)

// AgeRange bounds ages inclusively.
type AgeRange struct {
	Min int
	Max int
}

// FilterAll is the filter value that imposes no constraint.
const FilterAll = "all"

// FilterValue trims and lowercases a filter value. FilterAll, in any case,
// becomes the empty string.
func FilterValue(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == FilterAll {
		return ""
	}
	return v
}

// DirectoryFilter holds the AND-combined directory filters. Zero values and
// nil pointers impose no constraint.
type DirectoryFilter struct {
	SearchTerm    string
	ProgramType   Program
	Gender        string
	Status        PersonStatus
	AdmissionYear *int
	AgeRange      *AgeRange
	Sort          DirectorySort
	Limit         int
}
