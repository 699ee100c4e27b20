package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	"github.com/noah-isme/ecde-votmis-api/pkg/database"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

type personStore interface {
	FindByInstitution(ctx context.Context, program models.Program, institutionID int64, includeDeceased bool) ([]models.Person, error)
	FindByID(ctx context.Context, program models.Program, id int64, scope *models.PersonScope) (*models.Person, error)
	FindByUPI(ctx context.Context, upi string, scope *models.PersonScope) (*models.Person, error)
	Insert(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, program models.Program, id int64, scope *models.PersonScope, patch models.PersonPatch) (*models.Person, error)
}

type identifierIssuer interface {
	Issue(ctx context.Context, institutionID int64) (string, error)
}

type blobStore interface {
	SaveStream(objectPath string, r io.Reader) (string, error)
	Delete(objectPath string) error
}

type urlSigner interface {
	Generate(owner, objectPath string) (string, time.Time, error)
}

// UploadPolicy restricts accepted uploads.
type UploadPolicy struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	URLPrefix        string
}

func (p UploadPolicy) check(upload dto.PhotoUpload) error {
	if p.MaxFileSizeBytes > 0 && upload.Size > p.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes", p.MaxFileSizeBytes))
	}
	if len(p.AllowedMIMEs) == 0 {
		return nil
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(upload.ContentType, ";", 2)[0]))
	for _, allowed := range p.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported file type %q", upload.ContentType))
}

// PersonService registers and maintains learner and student records.
type PersonService struct {
	store     personStore
	issuer    identifierIssuer
	blobs     blobStore
	signer    urlSigner
	policy    UploadPolicy
	cache     *CacheService
	audit     auditWriter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPersonService constructs a PersonService.
func NewPersonService(store personStore, issuer identifierIssuer, blobs blobStore, signer urlSigner, policy UploadPolicy, cache *CacheService, audit auditWriter, validate *validator.Validate, logger *zap.Logger) *PersonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.URLPrefix == "" {
		policy.URLPrefix = "/files/"
	}
	return &PersonService{
		store:     store,
		issuer:    issuer,
		blobs:     blobs,
		signer:    signer,
		policy:    policy,
		cache:     cache,
		audit:     audit,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Register issues a UPI and stores a new enrolled person at the actor's institution.
// The request is never modified so a failed call can be resubmitted unchanged.
func (s *PersonService) Register(ctx context.Context, actor *models.Actor, req dto.RegisterPersonRequest, photo *dto.PhotoUpload, photoData io.Reader) (*models.Person, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "you must be assigned to an institution to register learners")
	}
	req = req.Normalized()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid person payload")
	}
	if photo != nil {
		if err := s.policy.check(*photo); err != nil {
			return nil, err
		}
	}

	upi, err := s.issuer.Issue(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	admission := req.AdmissionDate.Ptr()
	if admission == nil {
		today := truncateDay(s.now())
		admission = &today
	}
	person := &models.Person{
		Program:       req.Program,
		UPI:           upi,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Gender:        strings.ToLower(req.Gender),
		DOB:           req.DateOfBirth.Ptr(),
		AdmissionDate: admission,
		Status:        models.PersonStatusEnrolled,
		Deceased:      false,
		InstitutionID: &institutionID,
	}
	if other := strings.TrimSpace(req.OtherName); other != "" {
		person.OtherName = &other
	}

	if photo != nil && photoData != nil {
		objectPath, err := s.savePhoto(institutionID, upi, photo.Filename, photoData)
		if err != nil {
			return nil, err
		}
		person.Photo = &objectPath
	}

	if err := s.store.Insert(ctx, person); err != nil {
		if appErrors.Is(err, appErrors.ErrValidation) {
			return nil, err
		}
		if database.IsUniqueViolation(err, "") {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "upi "+upi+" is already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save person")
	}

	s.logger.Info("person registered",
		zap.String("upi", person.UPI),
		zap.String("program", string(person.Program)),
		zap.Int64("institution_id", institutionID),
	)
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionPersonRegister, "person", person.UPI, person)
	s.invalidate(ctx, institutionID)
	s.decorate(person)
	return person, nil
}

// Get loads a person owned by the actor's institution.
func (s *PersonService) Get(ctx context.Context, actor *models.Actor, program models.Program, id int64) (*models.Person, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	person, err := s.store.FindByID(ctx, program, id, models.ScopeTo(institutionID))
	if err != nil {
		return nil, mapPersonLookupError(err)
	}
	s.decorate(person)
	return person, nil
}

// FindByUPI looks a person up by identifier within the actor's institution.
func (s *PersonService) FindByUPI(ctx context.Context, actor *models.Actor, upi string) (*models.Person, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	person, err := s.store.FindByUPI(ctx, upi, models.ScopeTo(institutionID))
	if err != nil {
		return nil, mapPersonLookupError(err)
	}
	s.decorate(person)
	return person, nil
}

// Update patches the bio data of a person owned by the actor's institution.
func (s *PersonService) Update(ctx context.Context, actor *models.Actor, program models.Program, id int64, req dto.UpdatePersonRequest) (*models.Person, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	req = req.Normalized()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid person payload")
	}

	current, err := s.store.FindByID(ctx, program, id, models.ScopeTo(institutionID))
	if err != nil {
		return nil, mapPersonLookupError(err)
	}
	if current.Deceased {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "deceased records cannot be modified")
	}

	patch := models.PersonPatch{
		FirstName:     trimmedPtr(req.FirstName),
		LastName:      trimmedPtr(req.LastName),
		OtherName:     trimmedPtr(req.OtherName),
		Gender:        lowerPtr(req.Gender),
		DOB:           req.DateOfBirth.Ptr(),
		AdmissionDate: req.AdmissionDate.Ptr(),
		Status:        req.Status,
	}
	if req.Status != nil && current.Status == models.PersonStatusTransferred {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "transferred records change status through receive")
	}

	person, err := s.store.Update(ctx, program, id, models.ScopeTo(institutionID), patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update person")
	}
	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionPersonUpdate, "person", person.UPI, patch)
	s.invalidate(ctx, institutionID)
	s.decorate(person)
	return person, nil
}

// UploadPhoto stores a new photo for a person and records its path.
func (s *PersonService) UploadPhoto(ctx context.Context, actor *models.Actor, program models.Program, id int64, upload dto.PhotoUpload, data io.Reader) (*models.Person, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	if err := s.policy.check(upload); err != nil {
		return nil, err
	}
	current, err := s.store.FindByID(ctx, program, id, models.ScopeTo(institutionID))
	if err != nil {
		return nil, mapPersonLookupError(err)
	}

	var previous string
	if current.Photo != nil {
		previous = *current.Photo
	}
	objectPath, err := s.savePhoto(institutionID, current.UPI, upload.Filename, data)
	if err != nil {
		return nil, err
	}
	person, err := s.store.Update(ctx, program, id, models.ScopeTo(institutionID), models.PersonPatch{Photo: &objectPath})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record photo")
	}
	removeSuperseded(s.blobs, s.logger, previous, objectPath)
	s.decorate(person)
	return person, nil
}

// savePhoto writes the file under <institution>/<upi>.<ext>.
func (s *PersonService) savePhoto(institutionID int64, upi, filename string, data io.Reader) (string, error) {
	if s.blobs == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "photo storage is not configured")
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = "jpg"
	}
	objectPath := path.Join(strconv.FormatInt(institutionID, 10), upi+"."+ext)
	stored, err := s.blobs.SaveStream(objectPath, data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	return stored, nil
}

// removeSuperseded deletes the previous upload once its replacement has been
// recorded under a different path. Failures leave an orphan and are logged.
func removeSuperseded(blobs blobStore, logger *zap.Logger, previous, current string) {
	if previous == "" || previous == current {
		return
	}
	if err := blobs.Delete(previous); err != nil {
		logger.Warn("failed to remove superseded upload", zap.String("path", previous), zap.Error(err))
	}
}

// decorate attaches a signed download URL for the stored photo.
func (s *PersonService) decorate(person *models.Person) {
	if person == nil || person.Photo == nil || s.signer == nil {
		return
	}
	owner := ""
	if person.InstitutionID != nil {
		owner = strconv.FormatInt(*person.InstitutionID, 10)
	}
	token, _, err := s.signer.Generate(owner, *person.Photo)
	if err != nil {
		s.logger.Warn("failed to sign photo url", zap.String("upi", person.UPI), zap.Error(err))
		return
	}
	url := s.policy.URLPrefix + token
	person.PhotoURL = &url
}

func (s *PersonService) invalidate(ctx context.Context, institutionIDs ...int64) {
	s.cache.EvictDashboards(ctx, institutionIDs...)
}

func mapPersonLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "person not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load person")
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}

func lowerPtr(v *string) *string {
	if v == nil {
		return nil
	}
	lowered := strings.ToLower(strings.TrimSpace(*v))
	return &lowered
}
