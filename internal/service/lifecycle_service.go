package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

type lifecycleStore interface {
	FindByID(ctx context.Context, program models.Program, id int64, scope *models.PersonScope) (*models.Person, error)
	FindByUPI(ctx context.Context, upi string, scope *models.PersonScope) (*models.Person, error)
	Update(ctx context.Context, program models.Program, id int64, scope *models.PersonScope, patch models.PersonPatch) (*models.Person, error)
}

type transferStore interface {
	Release(ctx context.Context, personID int64, transfer *models.TransferRecord) error
	Receive(ctx context.Context, program models.Program, personID int64, institutionID int64, transferID string) error
	LatestPending(ctx context.Context, upi string) (*models.TransferRecord, error)
	List(ctx context.Context, filter models.TransferFilter) ([]models.TransferRecord, error)
}

// LifecycleService applies release, receive and death transitions. A deceased
// record is terminal: every further transition is rejected.
type LifecycleService struct {
	persons   lifecycleStore
	transfers transferStore
	cache     *CacheService
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLifecycleService constructs a LifecycleService.
func NewLifecycleService(persons lifecycleStore, transfers transferStore, cache *CacheService, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *LifecycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		persons:   persons,
		transfers: transfers,
		cache:     cache,
		audit:     audit,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Release transfers an enrolled person out of the actor's institution and
// opens a pending transfer record.
func (s *LifecycleService) Release(ctx context.Context, actor *models.Actor, program models.Program, id int64, req dto.ReleasePersonRequest) (*models.TransferRecord, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid release payload")
	}
	if req.DestinationInstitutionID != nil && *req.DestinationInstitutionID == institutionID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "destination must differ from the current institution")
	}

	person, err := s.persons.FindByID(ctx, program, id, models.ScopeTo(institutionID))
	if err != nil {
		return nil, mapPersonLookupError(err)
	}
	if err := requireAlive(person); err != nil {
		return nil, err
	}
	if person.Status != models.PersonStatusEnrolled {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only enrolled persons can be released")
	}

	effective := req.EffectiveDate.Ptr()
	if effective == nil {
		today := truncateDay(s.now())
		effective = &today
	}
	transfer := &models.TransferRecord{
		PersonUPI:         person.UPI,
		Program:           program,
		FromInstitutionID: institutionID,
		ToInstitutionID:   req.DestinationInstitutionID,
		Reason:            strings.TrimSpace(req.Reason),
		EffectiveDate:     *effective,
		CreatedBy:         actor.UserID,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		transfer.Notes = &notes
	}

	if err := s.transfers.Release(ctx, person.ID, transfer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "person is no longer enrolled at this institution")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release person")
	}

	s.logger.Info("person released", zap.String("upi", person.UPI), zap.Int64("from_institution_id", institutionID), zap.String("transfer_id", transfer.ID))
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionPersonRelease, "person", person.UPI, transfer)
	s.invalidate(ctx, institutionID)
	return transfer, nil
}

// Receive admits a released person into the actor's institution. The UPI lookup
// is unscoped: until received, the person belongs to the releasing institution.
func (s *LifecycleService) Receive(ctx context.Context, actor *models.Actor, req dto.ReceivePersonRequest) (*models.Person, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid receive payload")
	}

	person, err := s.persons.FindByUPI(ctx, req.UPI, nil)
	if err != nil {
		return nil, mapPersonLookupError(err)
	}
	if err := requireAlive(person); err != nil {
		return nil, err
	}
	if person.Status != models.PersonStatusTransferred {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "person has not been released by their current institution")
	}

	var transferID string
	pending, err := s.transfers.LatestPending(ctx, person.UPI)
	switch {
	case err == nil:
		if pending.ToInstitutionID != nil && *pending.ToInstitutionID != institutionID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "transfer is addressed to another institution")
		}
		transferID = pending.ID
	case errors.Is(err, sql.ErrNoRows):
		s.logger.Debug("receiving person without a pending transfer record", zap.String("upi", person.UPI))
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transfer")
	}

	var previous int64
	if person.InstitutionID != nil {
		previous = *person.InstitutionID
	}
	if err := s.transfers.Receive(ctx, person.Program, person.ID, institutionID, transferID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "person is no longer awaiting transfer")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to receive person")
	}

	received, err := s.persons.FindByID(ctx, person.Program, person.ID, models.ScopeTo(institutionID))
	if err != nil {
		return nil, mapPersonLookupError(err)
	}

	s.logger.Info("person received", zap.String("upi", person.UPI), zap.Int64("from_institution_id", previous), zap.Int64("to_institution_id", institutionID))
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionPersonReceive, "person", person.UPI, map[string]interface{}{
		"from_institution_id": previous,
		"to_institution_id":   institutionID,
		"transfer_id":         transferID,
	})
	s.invalidate(ctx, institutionID, previous)
	return received, nil
}

// MarkDeceased records a death. Date and cause are required and the record is
// excluded from every active listing afterwards.
func (s *LifecycleService) MarkDeceased(ctx context.Context, actor *models.Actor, program models.Program, id int64, req dto.RecordDeathRequest) (*models.Person, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date of death and cause of death are required")
	}
	dateOfDeath := req.DateOfDeath.Ptr()
	cause := strings.TrimSpace(req.CauseOfDeath)
	if dateOfDeath == nil || cause == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date of death and cause of death are required")
	}
	if dateOfDeath.After(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date of death cannot be in the future")
	}

	person, err := s.persons.FindByID(ctx, program, id, models.ScopeTo(institutionID))
	if err != nil {
		return nil, mapPersonLookupError(err)
	}
	if err := requireAlive(person); err != nil {
		return nil, err
	}

	deceased := true
	status := models.PersonStatusDeceased
	patch := models.PersonPatch{
		Deceased:     &deceased,
		Status:       &status,
		DateOfDeath:  dateOfDeath,
		CauseOfDeath: &cause,
	}
	if details := strings.TrimSpace(req.Details); details != "" {
		patch.DeathDetails = &details
	}

	updated, err := s.persons.Update(ctx, program, id, models.ScopeTo(institutionID), patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record death")
	}

	s.logger.Info("death recorded", zap.String("upi", updated.UPI), zap.Int64("institution_id", institutionID))
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionPersonDeceased, "person", updated.UPI, patch)
	s.invalidate(ctx, institutionID)
	return updated, nil
}

// Transfers lists the actor institution's transfers in the given direction.
func (s *LifecycleService) Transfers(ctx context.Context, actor *models.Actor, direction models.TransferDirection, status models.TransferStatus) ([]models.TransferRecord, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	transfers, err := s.transfers.List(ctx, models.TransferFilter{InstitutionID: institutionID, Direction: direction, Status: status})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list transfers")
	}
	return transfers, nil
}

func (s *LifecycleService) invalidate(ctx context.Context, institutionIDs ...int64) {
	s.cache.EvictDashboards(ctx, institutionIDs...)
}

func requireAlive(person *models.Person) error {
	if person.Deceased || person.Status == models.PersonStatusDeceased {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "record is marked deceased")
	}
	return nil
}
