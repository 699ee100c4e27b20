package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

type sequenceAllocator interface {
	Next(ctx context.Context, prefix string) (int64, error)
}

type upiRegistry interface {
	UPIExists(ctx context.Context, upi string) (bool, error)
}

type institutionFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Institution, error)
}

// UPIIssuerConfig controls the identifier layout.
type UPIIssuerConfig struct {
	JurisdictionCode       string
	DefaultInstitutionCode string
	SequenceWidth          int
	MaxAttempts            int
}

// UPIIssuer issues unique personal identifiers. Sequence numbers come from an
// atomic counter per prefix; numbers already held by a person (for example
// legacy identifiers) are skipped.
type UPIIssuer struct {
	sequences    sequenceAllocator
	registry     upiRegistry
	institutions institutionFinder
	cfg          UPIIssuerConfig
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewUPIIssuer constructs a UPIIssuer.
func NewUPIIssuer(sequences sequenceAllocator, registry upiRegistry, institutions institutionFinder, cfg UPIIssuerConfig, metrics *MetricsService, logger *zap.Logger) *UPIIssuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JurisdictionCode == "" {
		cfg.JurisdictionCode = "B"
	}
	if cfg.DefaultInstitutionCode == "" {
		cfg.DefaultInstitutionCode = "T"
	}
	if cfg.SequenceWidth <= 0 {
		cfg.SequenceWidth = 3
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &UPIIssuer{
		sequences:    sequences,
		registry:     registry,
		institutions: institutions,
		cfg:          cfg,
		metrics:      metrics,
		logger:       logger,
	}
}

// FormatFor resolves the identifier layout used for persons of institutionID.
func (s *UPIIssuer) FormatFor(ctx context.Context, institutionID int64) (models.UPIFormat, error) {
	institution, err := s.institutions.FindByID(ctx, institutionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UPIFormat{}, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return models.UPIFormat{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}
	return models.UPIFormat{
		Jurisdiction:    strings.ToUpper(s.cfg.JurisdictionCode),
		InstitutionCode: institutionCodeLetter(institution.UniqueCode, s.cfg.DefaultInstitutionCode),
		Width:           s.cfg.SequenceWidth,
	}, nil
}

// Issue reserves a UPI for a new person at institutionID.
func (s *UPIIssuer) Issue(ctx context.Context, institutionID int64) (string, error) {
	format, err := s.FormatFor(ctx, institutionID)
	if err != nil {
		return "", err
	}
	prefix := format.Prefix()
	capacity := format.Capacity()

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		seq, err := s.sequences.Next(ctx, prefix)
		if err != nil {
			s.metrics.RecordUPIFailure("store")
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reserve upi sequence")
		}
		if seq > capacity {
			s.metrics.RecordUPIFailure("exhausted")
			return "", appErrors.Clone(appErrors.ErrExhausted, fmt.Sprintf("no unused %d-digit sequence left for prefix %s", format.Width, prefix))
		}
		if seq < 1 {
			s.metrics.RecordUPIFailure("store")
			return "", appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("sequence store returned %d for %s", seq, prefix))
		}

		upi := format.Format(seq)
		taken, err := s.registry.UPIExists(ctx, upi)
		if err != nil {
			s.metrics.RecordUPIFailure("store")
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check upi")
		}
		if taken {
			s.logger.Debug("skipping upi already in use", zap.String("upi", upi), zap.Int("attempt", attempt))
			continue
		}

		s.metrics.RecordUPIIssued(prefix)
		return upi, nil
	}

	s.metrics.RecordUPIFailure("conflict")
	return "", appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("no free upi for %s after %d attempts", prefix, s.cfg.MaxAttempts))
}

// institutionCodeLetter takes the first letter of the configured unique code.
func institutionCodeLetter(uniqueCode *string, fallback string) string {
	if uniqueCode != nil {
		for _, r := range strings.TrimSpace(*uniqueCode) {
			if unicode.IsLetter(r) && r < unicode.MaxASCII {
				return strings.ToUpper(string(r))
			}
		}
	}
	return strings.ToUpper(fallback)
}
