package models

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// DashboardSummary is the per-institution headline count card set.
type DashboardSummary struct {
	InstitutionID    int64 `json:"institution_id"`
	ECDELearners     int   `json:"ecde_learners"`
	VocationalPupils int   `json:"vocational_students"`
	TotalEnrolled    int   `json:"total_enrolled"`
	Transferred      int   `json:"transferred"`
	Deceased         int   `json:"deceased"`
}

// AdmissionReport summarises currently enrolled persons.
type AdmissionReport struct {
	TotalAdmissions  int          `json:"total_admissions"`
	ECDEAdmissions   int          `json:"ecde_admissions"`
	VocationalCount  int          `json:"vocational_admissions"`
	MaleCount        int          `json:"male_count"`
	FemaleCount      int          `json:"female_count"`
	AverageAge       float64      `json:"average_age"`
	RecentAdmissions []PersonView `json:"recent_admissions"`
}

// UPIRegisterFilter narrows the UPI register, which includes deceased persons.
type UPIRegisterFilter struct {
	SearchTerm  string
	ProgramType Program
	Status      PersonStatus
}
