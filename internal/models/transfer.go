package models

import "time"

// TransferStatus tracks whether a release has been received elsewhere.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusCompleted TransferStatus = "completed"
)

// TransferRecord links a release at one institution with the receive at another.
type TransferRecord struct {
	ID                string         `db:"id" json:"id"`
	PersonUPI         string         `db:"person_upi" json:"person_upi"`
	Program           Program        `db:"program" json:"program"`
	FromInstitutionID int64          `db:"from_institution_id" json:"from_institution_id"`
	ToInstitutionID   *int64         `db:"to_institution_id" json:"to_institution_id,omitempty"`
	Reason            string         `db:"reason" json:"reason"`
	EffectiveDate     time.Time      `db:"effective_date" json:"effective_date"`
	Notes             *string        `db:"notes" json:"notes,omitempty"`
	Status            TransferStatus `db:"status" json:"status"`
	CreatedBy         string         `db:"created_by" json:"created_by"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	CompletedAt       *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
}

// TransferDirection selects outgoing or incoming transfers of an institution.
type TransferDirection string

const (
	TransferDirectionOutgoing TransferDirection = "outgoing"
	TransferDirectionIncoming TransferDirection = "incoming"
)

// TransferFilter narrows transfer listings.
type TransferFilter struct {
	InstitutionID int64
	Direction     TransferDirection
	Status        TransferStatus
}
