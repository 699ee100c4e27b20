package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

func newTestIssuer(store *memPersonStore, sequences sequenceAllocator, cfg UPIIssuerConfig) *UPIIssuer {
	institutions := stubInstitutions{byID: map[int64]*models.Institution{
		42: {ID: 42, Name: "Bungoma Town ECDE"},
		7:  {ID: 7, Name: "Kimilili VTC", UniqueCode: strPtr("kvtc-01")},
	}}
	return NewUPIIssuer(sequences, store, institutions, cfg, nil, zap.NewNop())
}

func strPtr(v string) *string {
	return &v
}

func TestUPIIssuerIssuesDefaultFormat(t *testing.T) {
	issuer := newTestIssuer(newMemPersonStore(), newMemSequences(), UPIIssuerConfig{})

	upi, err := issuer.Issue(context.Background(), 42)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^BT\d{3}$`), upi)
	assert.Equal(t, "BT001", upi)
}

func TestUPIIssuerUsesInstitutionCode(t *testing.T) {
	issuer := newTestIssuer(newMemPersonStore(), newMemSequences(), UPIIssuerConfig{})

	upi, err := issuer.Issue(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "BK001", upi)
}

func TestUPIIssuerSkipsTakenIdentifiers(t *testing.T) {
	store := newMemPersonStore()
	store.seed(models.ProgramECDE, 1, "BT001", "Legacy", "One", nil)
	store.seed(models.ProgramVocational, 2, "BT002", "Legacy", "Two", nil)
	issuer := newTestIssuer(store, newMemSequences(), UPIIssuerConfig{})

	upi, err := issuer.Issue(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "BT003", upi)
}

func TestUPIIssuerConcurrentIssuanceIsUnique(t *testing.T) {
	store := newMemPersonStore()
	issuer := newTestIssuer(store, newMemSequences(), UPIIssuerConfig{})

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan string, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			upi, err := issuer.Issue(context.Background(), 42)
			if err != nil {
				errs <- err
				return
			}
			results <- upi
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for upi := range results {
		assert.False(t, seen[upi], "duplicate upi %s", upi)
		seen[upi] = true
	}
	assert.Len(t, seen, workers)
}

func TestUPIIssuerExhausted(t *testing.T) {
	sequences := newMemSequences()
	sequences.values["BT"] = 999
	issuer := newTestIssuer(newMemPersonStore(), sequences, UPIIssuerConfig{})

	_, err := issuer.Issue(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExhausted.Code, appErrors.FromError(err).Code)
}

func TestUPIIssuerConflictAfterMaxAttempts(t *testing.T) {
	store := newMemPersonStore()
	for _, upi := range []string{"BT001", "BT002", "BT003"} {
		store.seed(models.ProgramECDE, 1, upi, "Taken", upi, nil)
	}
	issuer := newTestIssuer(store, newMemSequences(), UPIIssuerConfig{MaxAttempts: 3})

	_, err := issuer.Issue(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUPIIssuerStoreFailure(t *testing.T) {
	sequences := newMemSequences()
	sequences.err = errors.New("connection refused")
	issuer := newTestIssuer(newMemPersonStore(), sequences, UPIIssuerConfig{})

	_, err := issuer.Issue(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestUPIIssuerUnknownInstitution(t *testing.T) {
	issuer := newTestIssuer(newMemPersonStore(), newMemSequences(), UPIIssuerConfig{})

	_, err := issuer.Issue(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestInstitutionCodeLetter(t *testing.T) {
	assert.Equal(t, "T", institutionCodeLetter(nil, "t"))
	assert.Equal(t, "K", institutionCodeLetter(strPtr("  kvtc"), "T"))
	assert.Equal(t, "A", institutionCodeLetter(strPtr("01a"), "T"))
	assert.Equal(t, "T", institutionCodeLetter(strPtr("123"), "T"))
}
