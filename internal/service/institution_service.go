package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

type institutionRepository interface {
	List(ctx context.Context, filter models.InstitutionFilter) ([]models.Institution, int, error)
	FindByID(ctx context.Context, id int64) (*models.Institution, error)
	Create(ctx context.Context, institution *models.Institution) error
	Update(ctx context.Context, institution *models.Institution) error
}

// InstitutionService manages institution bio data.
type InstitutionService struct {
	repo      institutionRepository
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstitutionService constructs an InstitutionService.
func NewInstitutionService(repo institutionRepository, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *InstitutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstitutionService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns institutions with pagination metadata.
func (s *InstitutionService) List(ctx context.Context, filter models.InstitutionFilter) ([]models.Institution, *models.Pagination, error) {
	institutions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list institutions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return institutions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an institution. Non super admins may only read their own.
func (s *InstitutionService) Get(ctx context.Context, actor *models.Actor, id int64) (*models.Institution, error) {
	if err := authorizeInstitution(actor, id); err != nil {
		return nil, err
	}
	institution, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}
	return institution, nil
}

// Create registers a new institution.
func (s *InstitutionService) Create(ctx context.Context, actor *models.Actor, req dto.InstitutionRequest) (*models.Institution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid institution payload")
	}
	institution := &models.Institution{}
	applyInstitutionRequest(institution, req)
	if err := s.repo.Create(ctx, institution); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create institution")
	}
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionInstitution, "institution", int64String(institution.ID), institution)
	return institution, nil
}

// Update overwrites an institution's bio data.
func (s *InstitutionService) Update(ctx context.Context, actor *models.Actor, id int64, req dto.InstitutionRequest) (*models.Institution, error) {
	if err := authorizeInstitution(actor, id); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid institution payload")
	}
	institution, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}
	applyInstitutionRequest(institution, req)
	if err := s.repo.Update(ctx, institution); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update institution")
	}
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionInstitution, "institution", int64String(id), institution)
	return institution, nil
}

func authorizeInstitution(actor *models.Actor, id int64) error {
	if actor.HasRole(models.RoleSuperAdmin) {
		return nil
	}
	own, ok := actor.Institution()
	if !ok || own != id {
		return appErrors.Clone(appErrors.ErrForbidden, "institution belongs to another account")
	}
	return nil
}

func applyInstitutionRequest(institution *models.Institution, req dto.InstitutionRequest) {
	institution.Name = strings.TrimSpace(req.Name)
	institution.Type = req.Type
	institution.Level = req.Level
	institution.Category = req.Category
	institution.Ownership = req.Ownership
	institution.OwnershipDoc = req.OwnershipDoc
	institution.EducationSystem = req.EducationSystem
	institution.UniqueCode = upperPtr(req.UniqueCode)
	institution.RegistrationNo = req.RegistrationNo
	institution.RegistrationDate = req.RegistrationDate.Ptr()
	institution.KRAPin = req.KRAPin
	institution.County = req.County
	institution.Subcounty = req.Subcounty
	institution.Ward = req.Ward
	institution.Zone = req.Zone
	institution.Location = req.Location
	institution.NearestTown = req.NearestTown
	institution.NearestPolice = req.NearestPolice
	institution.NearestHealth = req.NearestHealth
	institution.GeoLat = req.GeoLat
	institution.GeoLng = req.GeoLng
	institution.SBPCompliance = req.SBPCompliance
}

func upperPtr(v *string) *string {
	if v == nil {
		return nil
	}
	upper := strings.ToUpper(strings.TrimSpace(*v))
	return &upper
}
