package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/dto"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

type memRecords[T models.OwnedRecord] struct {
	rows   []T
	nextID int64
}

func (m *memRecords[T]) List(ctx context.Context, institutionID int64) ([]T, error) {
	result := []T{}
	for _, row := range m.rows {
		if row.Owner() == institutionID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (m *memRecords[T]) FindByID(ctx context.Context, institutionID, id int64) (T, error) {
	var zero T
	for _, row := range m.rows {
		if row.RecordID() == id && row.Owner() == institutionID {
			return row, nil
		}
	}
	return zero, sql.ErrNoRows
}

func (m *memRecords[T]) Create(ctx context.Context, record T) error {
	m.nextID++
	record.Assign(m.nextID, record.Owner())
	m.rows = append(m.rows, record)
	return nil
}

func (m *memRecords[T]) Update(ctx context.Context, record T) error {
	for i, row := range m.rows {
		if row.RecordID() == record.RecordID() && row.Owner() == record.Owner() {
			if holder, ok := any(row).(models.DocumentHolder); ok && holder.DocumentPath() != nil {
				any(record).(models.DocumentHolder).AttachDocument(*holder.DocumentPath())
			}
			m.rows[i] = record
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *memRecords[T]) SetDocument(ctx context.Context, institutionID, id int64, objectPath string) error {
	row, err := m.FindByID(ctx, institutionID, id)
	if err != nil {
		return err
	}
	holder, ok := any(row).(models.DocumentHolder)
	if !ok {
		return errors.New("no document column")
	}
	holder.AttachDocument(objectPath)
	return nil
}

func newCapitationService() (*RecordService[*models.CapitationReceipt], *memRecords[*models.CapitationReceipt], *memBlobs) {
	repo := &memRecords[*models.CapitationReceipt]{}
	blobs := &memBlobs{}
	policy := UploadPolicy{MaxFileSizeBytes: 1024, AllowedMIMEs: []string{"application/pdf", "image/png"}, URLPrefix: "/api/v1/files/"}
	return NewRecordService[*models.CapitationReceipt]("capitation_receipts", repo, blobs, stubSigner{}, policy, nil, nil), repo, blobs
}

func TestRecordServiceCreateAssignsInstitution(t *testing.T) {
	repo := &memRecords[*models.BankAccount]{}
	svc := NewRecordService[*models.BankAccount]("bank_accounts", repo, nil, nil, UploadPolicy{}, validator.New(), zap.NewNop())

	account, err := svc.Create(context.Background(), actorAt(42), &models.BankAccount{
		InstitutionID: 99,
		BankName:      strPtr("KCB"),
		AccountNumber: strPtr("1100223344"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)
	assert.Equal(t, int64(42), account.InstitutionID)

	own, err := svc.List(context.Background(), actorAt(42))
	require.NoError(t, err)
	assert.Len(t, own, 1)

	other, err := svc.List(context.Background(), actorAt(99))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRecordServiceValidation(t *testing.T) {
	svc := NewRecordService[*models.Book]("books", &memRecords[*models.Book]{}, nil, nil, UploadPolicy{}, nil, nil)

	_, err := svc.Create(context.Background(), actorAt(42), &models.Book{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceUpdateForeignRecord(t *testing.T) {
	repo := &memRecords[*models.Emergency]{}
	svc := NewRecordService[*models.Emergency]("emergencies", repo, nil, nil, UploadPolicy{}, nil, nil)
	created, err := svc.Create(context.Background(), actorAt(1), &models.Emergency{CalamityName: strPtr("Flood")})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), actorAt(2), created.ID, &models.Emergency{CalamityName: strPtr("Fire")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	updated, err := svc.Update(context.Background(), actorAt(1), created.ID, &models.Emergency{CalamityName: strPtr("Flash flood")})
	require.NoError(t, err)
	assert.Equal(t, "Flash flood", *updated.CalamityName)
}

func TestRecordServiceAttachDocument(t *testing.T) {
	repo := &memRecords[*models.CapitationReceipt]{}
	blobs := &memBlobs{}
	policy := UploadPolicy{MaxFileSizeBytes: 1024, AllowedMIMEs: []string{"application/pdf"}}
	svc := NewRecordService[*models.CapitationReceipt]("capitation_receipts", repo, blobs, nil, policy, nil, nil)
	amount := 15000.0
	receipt, err := svc.Create(context.Background(), actorAt(42), &models.CapitationReceipt{ReceiptNo: strPtr("R-1"), Amount: &amount})
	require.NoError(t, err)

	attached, err := svc.AttachDocument(context.Background(), actorAt(42), receipt.ID,
		dto.PhotoUpload{Filename: "receipt.PDF", ContentType: "application/pdf", Size: 3}, strings.NewReader("pdf"))
	require.NoError(t, err)
	require.NotNil(t, attached.FilePath)
	assert.Equal(t, "42/capitation_receipts/1.pdf", *attached.FilePath)
	assert.Equal(t, []byte("pdf"), blobs.saved["42/capitation_receipts/1.pdf"])
}

func TestRecordServiceAttachDocumentUnsupportedKind(t *testing.T) {
	repo := &memRecords[*models.Book]{}
	svc := NewRecordService[*models.Book]("books", repo, &memBlobs{}, nil, UploadPolicy{}, nil, nil)
	book, err := svc.Create(context.Background(), actorAt(42), &models.Book{Title: "Kiswahili Mufti"})
	require.NoError(t, err)

	_, err = svc.AttachDocument(context.Background(), actorAt(42), book.ID, dto.PhotoUpload{Filename: "x.pdf", ContentType: "application/pdf"}, strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceRequiresInstitution(t *testing.T) {
	svc := NewRecordService[*models.Book]("books", &memRecords[*models.Book]{}, nil, nil, UploadPolicy{}, nil, nil)

	_, err := svc.List(context.Background(), &models.Actor{UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRecordServiceUpdateKeepsDocument(t *testing.T) {
	svc, _, _ := newCapitationService()
	amount := 15000.0
	receipt, err := svc.Create(context.Background(), actorAt(42), &models.CapitationReceipt{ReceiptNo: strPtr("R-1"), Amount: &amount})
	require.NoError(t, err)
	_, err = svc.AttachDocument(context.Background(), actorAt(42), receipt.ID,
		dto.PhotoUpload{Filename: "receipt.pdf", ContentType: "application/pdf", Size: 3}, strings.NewReader("pdf"))
	require.NoError(t, err)

	corrected := 16000.0
	updated, err := svc.Update(context.Background(), actorAt(42), receipt.ID, &models.CapitationReceipt{ReceiptNo: strPtr("R-1"), Amount: &corrected})
	require.NoError(t, err)
	assert.Equal(t, corrected, *updated.Amount)
	require.NotNil(t, updated.FilePath)
	assert.Equal(t, "42/capitation_receipts/1.pdf", *updated.FilePath)
	require.NotNil(t, updated.FileURL)
	assert.Equal(t, "/api/v1/files/signed-42-42_capitation_receipts_1.pdf", *updated.FileURL)
}

func TestRecordServiceAttachDocumentReplacesPrevious(t *testing.T) {
	svc, _, blobs := newCapitationService()
	amount := 500.0
	receipt, err := svc.Create(context.Background(), actorAt(42), &models.CapitationReceipt{ReceiptNo: strPtr("R-2"), Amount: &amount})
	require.NoError(t, err)

	_, err = svc.AttachDocument(context.Background(), actorAt(42), receipt.ID,
		dto.PhotoUpload{Filename: "scan.png", ContentType: "image/png", Size: 3}, strings.NewReader("png"))
	require.NoError(t, err)
	attached, err := svc.AttachDocument(context.Background(), actorAt(42), receipt.ID,
		dto.PhotoUpload{Filename: "scan.pdf", ContentType: "application/pdf", Size: 3}, strings.NewReader("pdf"))
	require.NoError(t, err)

	assert.Equal(t, "42/capitation_receipts/1.pdf", *attached.FilePath)
	assert.Equal(t, []string{"42/capitation_receipts/1.png"}, blobs.deleted)
	assert.NotContains(t, blobs.saved, "42/capitation_receipts/1.png")
}

func TestRecordServiceListSignsDocuments(t *testing.T) {
	svc, repo, _ := newCapitationService()
	stored := "42/capitation_receipts/9.pdf"
	repo.rows = append(repo.rows,
		&models.CapitationReceipt{ID: 9, InstitutionID: 42, FilePath: &stored},
		&models.CapitationReceipt{ID: 10, InstitutionID: 42},
	)

	receipts, err := svc.List(context.Background(), actorAt(42))
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	require.NotNil(t, receipts[0].FileURL)
	assert.Equal(t, "/api/v1/files/signed-42-42_capitation_receipts_9.pdf", *receipts[0].FileURL)
	assert.Nil(t, receipts[1].FileURL)
}

func TestCapitationReceiptIgnoresClientFilePath(t *testing.T) {
	var receipt models.CapitationReceipt
	require.NoError(t, json.Unmarshal([]byte(`{"receipt_no":"R-3","amount":10,"file_path":"../../etc/passwd"}`), &receipt))
	assert.Nil(t, receipt.FilePath)
}
