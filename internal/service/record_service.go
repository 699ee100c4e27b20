package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

type recordRepository[T models.OwnedRecord] interface {
	List(ctx context.Context, institutionID int64) ([]T, error)
	FindByID(ctx context.Context, institutionID, id int64) (T, error)
	Create(ctx context.Context, record T) error
	Update(ctx context.Context, record T) error
	SetDocument(ctx context.Context, institutionID, id int64, objectPath string) error
}

// RecordService manages one kind of institution-owned record (bank accounts,
// books, infrastructure, emergencies, capitation receipts).
type RecordService[T models.OwnedRecord] struct {
	kind      string
	repo      recordRepository[T]
	blobs     blobStore
	signer    urlSigner
	policy    UploadPolicy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecordService constructs a RecordService. blobs and signer may be nil for
// kinds without documents.
func NewRecordService[T models.OwnedRecord](kind string, repo recordRepository[T], blobs blobStore, signer urlSigner, policy UploadPolicy, validate *validator.Validate, logger *zap.Logger) *RecordService[T] {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordService[T]{kind: kind, repo: repo, blobs: blobs, signer: signer, policy: policy, validator: validate, logger: logger}
}

// Kind names the record type, e.g. "bank_accounts".
func (s *RecordService[T]) Kind() string {
	return s.kind
}

// List returns the actor institution's records.
func (s *RecordService[T]) List(ctx context.Context, actor *models.Actor) ([]T, error) {
	institutionID, ok := actor.Institution()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	records, err := s.repo.List(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+s.kind)
	}
	for _, record := range records {
		s.decorate(record)
	}
	return records, nil
}

// Create stores record under the actor's institution, ignoring any client supplied owner.
func (s *RecordService[T]) Create(ctx context.Context, actor *models.Actor, record T) (T, error) {
	var zero T
	institutionID, ok := actor.Institution()
	if !ok {
		return zero, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	if err := s.validator.Struct(record); err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+s.kind+" payload")
	}
	record.Assign(0, institutionID)
	if err := s.repo.Create(ctx, record); err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create "+s.kind)
	}
	s.decorate(record)
	return record, nil
}

// Update overwrites record id of the actor's institution.
func (s *RecordService[T]) Update(ctx context.Context, actor *models.Actor, id int64, record T) (T, error) {
	var zero T
	institutionID, ok := actor.Institution()
	if !ok {
		return zero, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	if err := s.validator.Struct(record); err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+s.kind+" payload")
	}
	record.Assign(id, institutionID)
	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, appErrors.Clone(appErrors.ErrNotFound, strings.ReplaceAll(s.kind, "_", " ")+" not found")
		}
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update "+s.kind)
	}
	if _, ok := any(record).(models.DocumentHolder); ok {
		stored, err := s.repo.FindByID(ctx, institutionID, id)
		if err != nil {
			return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+s.kind)
		}
		record = stored
	}
	s.decorate(record)
	return record, nil
}

// AttachDocument uploads a supporting document for record id. Only kinds that
// hold documents accept uploads.
func (s *RecordService[T]) AttachDocument(ctx context.Context, actor *models.Actor, id int64, upload dto.PhotoUpload, data io.Reader) (T, error) {
	var zero T
	institutionID, ok := actor.Institution()
	if !ok {
		return zero, appErrors.Clone(appErrors.ErrForbidden, "no institution assigned")
	}
	if s.blobs == nil {
		return zero, appErrors.Clone(appErrors.ErrValidation, s.kind+" do not accept documents")
	}
	if err := s.policy.check(upload); err != nil {
		return zero, err
	}
	record, err := s.repo.FindByID(ctx, institutionID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, appErrors.Clone(appErrors.ErrNotFound, strings.ReplaceAll(s.kind, "_", " ")+" not found")
		}
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+s.kind)
	}
	holder, ok := any(record).(models.DocumentHolder)
	if !ok {
		return zero, appErrors.Clone(appErrors.ErrValidation, s.kind+" do not accept documents")
	}

	ext := strings.ToLower(path.Ext(upload.Filename))
	objectPath := path.Join(strconv.FormatInt(institutionID, 10), s.kind, strconv.FormatInt(id, 10)+ext)
	var previous string
	if current := holder.DocumentPath(); current != nil {
		previous = *current
	}
	stored, err := s.blobs.SaveStream(objectPath, data)
	if err != nil {
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}
	if err := s.repo.SetDocument(ctx, institutionID, id, stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, appErrors.Clone(appErrors.ErrNotFound, strings.ReplaceAll(s.kind, "_", " ")+" not found")
		}
		return zero, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document")
	}
	holder.AttachDocument(stored)
	removeSuperseded(s.blobs, s.logger, previous, stored)
	s.logger.Info("document attached", zap.String("kind", s.kind), zap.Int64("id", id), zap.String("path", stored))
	s.decorate(record)
	return record, nil
}

// decorate attaches a signed download URL to records holding a document.
func (s *RecordService[T]) decorate(record T) {
	holder, ok := any(record).(models.DocumentHolder)
	if !ok || s.signer == nil {
		return
	}
	objectPath := holder.DocumentPath()
	if objectPath == nil || *objectPath == "" {
		return
	}
	token, _, err := s.signer.Generate(int64String(holder.Owner()), *objectPath)
	if err != nil {
		s.logger.Warn("failed to sign document url", zap.String("kind", s.kind), zap.Int64("id", holder.RecordID()), zap.Error(err))
		return
	}
	holder.SetDocumentURL(s.policy.URLPrefix + token)
}

func int64String(v int64) string {
	return strconv.FormatInt(v, 10)
}
