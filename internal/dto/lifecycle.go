package dto

// ReleasePersonRequest transfers a person out of the caller's institution.
type ReleasePersonRequest struct {
	Reason                   string `json:"reason" validate:"required"`
	DestinationInstitutionID *int64 `json:"destinationInstitutionId" validate:"omitempty,gt=0"`
	EffectiveDate            *Date  `json:"effectiveDate"`
	Notes                    string `json:"notes"`
}

// ReceivePersonRequest admits a transferred person into the caller's institution.
type ReceivePersonRequest struct {
	UPI string `json:"upi" validate:"required"`
}

// RecordDeathRequest captures the metadata required to mark a person deceased.
type RecordDeathRequest struct {
	DateOfDeath  *Date  `json:"dateOfDeath" validate:"required"`
	CauseOfDeath string `json:"causeOfDeath" validate:"required"`
	Details      string `json:"details"`
}
