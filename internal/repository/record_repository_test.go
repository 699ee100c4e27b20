package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

func TestRecordRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBankAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, institution_id, bank_name, branch, account_number, created_at FROM bank_accounts WHERE institution_id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "institution_id", "bank_name", "branch", "account_number", "created_at"}).
			AddRow(1, 42, "KCB", "Busia", "1100223344", time.Now()))

	accounts, err := repo.List(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "KCB", *accounts[0].BankName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBookRepository(db)

	mock.ExpectQuery("INSERT INTO books").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(17))

	book := &models.Book{InstitutionID: 42, Title: "Kiswahili Mufti"}
	require.NoError(t, repo.Create(context.Background(), book))
	assert.Equal(t, int64(17), book.ID)
	assert.Equal(t, int64(42), book.InstitutionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryUpdateOtherInstitution(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewEmergencyRepository(db)

	mock.ExpectExec("UPDATE emergencies SET calamity_name").
		WillReturnResult(sqlmock.NewResult(0, 0))

	name := "Floods"
	err := repo.Update(context.Background(), &models.Emergency{ID: 3, InstitutionID: 7, CalamityName: &name})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRecordRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCapitationReceiptRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM capitation_receipts WHERE id = $1 AND institution_id = $2")).
		WithArgs(int64(4), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "institution_id", "receipt_no", "amount", "date_received", "file_path", "created_at"}))

	_, err := repo.FindByID(context.Background(), 42, 4)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRecordRepositoryUpdateLeavesDocumentColumn(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCapitationReceiptRepository(db)

	receiptNo := "R-7"
	amount := 12000.0
	stored := "42/capitation_receipts/5.pdf"
	mock.ExpectExec(`UPDATE capitation_receipts SET receipt_no = \S+, amount = \S+, date_received = \S+ WHERE id = \S+ AND institution_id = \S+$`).
		WithArgs(&receiptNo, &amount, nil, int64(5), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.CapitationReceipt{ID: 5, InstitutionID: 42, ReceiptNo: &receiptNo, Amount: &amount, FilePath: &stored})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositorySetDocument(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCapitationReceiptRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE capitation_receipts SET file_path = $1 WHERE id = $2 AND institution_id = $3")).
		WithArgs("42/capitation_receipts/5.pdf", int64(5), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetDocument(context.Background(), 42, 5, "42/capitation_receipts/5.pdf"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE capitation_receipts SET file_path = $1")).
		WithArgs("43/capitation_receipts/5.pdf", int64(5), int64(43)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetDocument(context.Background(), 43, 5, "43/capitation_receipts/5.pdf"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositorySetDocumentUnsupported(t *testing.T) {
	db, _, cleanup := newMockDB(t)
	defer cleanup()

	err := NewBookRepository(db).SetDocument(context.Background(), 42, 1, "42/books/1.pdf")
	assert.Error(t, err)
}
