package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

// recordTable describes an owned-record table. columns are written by Create
// and Update; documentColumn is only written by SetDocument.
type recordTable struct {
	name           string
	columns        []string
	documentColumn string
}

func (t recordTable) selectColumns() string {
	columns := "id, institution_id, " + strings.Join(t.columns, ", ")
	if t.documentColumn != "" {
		columns += ", " + t.documentColumn
	}
	return columns + ", created_at"
}

var (
	bankAccountsTable = recordTable{name: "bank_accounts", columns: []string{"bank_name", "branch", "account_number"}}
	booksTable        = recordTable{name: "books", columns: []string{
		"title", "author", "publisher", "isbn", "category", "subject", "level", "condition", "quantity", "unit_price", "year_published",
	}}
	infrastructureTable = recordTable{name: "infrastructure", columns: []string{
		"asset_name", "asset_type", "classification", "quantity", "cost", "year_of_acquisition",
	}}
	emergenciesTable        = recordTable{name: "emergencies", columns: []string{"calamity_name", "description", "reporting_date", "response", "status"}}
	capitationReceiptsTable = recordTable{name: "capitation_receipts", columns: []string{"receipt_no", "amount", "date_received"}, documentColumn: "file_path"}
)

// RecordRepository stores one kind of institution-owned record. Every query is
// bound to the owning institution.
type RecordRepository[T models.OwnedRecord] struct {
	db    *sqlx.DB
	table recordTable
}

// NewBankAccountRepository stores bank accounts.
func NewBankAccountRepository(db *sqlx.DB) *RecordRepository[*models.BankAccount] {
	return &RecordRepository[*models.BankAccount]{db: db, table: bankAccountsTable}
}

// NewBookRepository stores textbook inventory.
func NewBookRepository(db *sqlx.DB) *RecordRepository[*models.Book] {
	return &RecordRepository[*models.Book]{db: db, table: booksTable}
}

// NewInfrastructureRepository stores infrastructure assets.
func NewInfrastructureRepository(db *sqlx.DB) *RecordRepository[*models.InfrastructureAsset] {
	return &RecordRepository[*models.InfrastructureAsset]{db: db, table: infrastructureTable}
}

// NewEmergencyRepository stores emergency reports.
func NewEmergencyRepository(db *sqlx.DB) *RecordRepository[*models.Emergency] {
	return &RecordRepository[*models.Emergency]{db: db, table: emergenciesTable}
}

// NewCapitationReceiptRepository stores capitation receipts.
func NewCapitationReceiptRepository(db *sqlx.DB) *RecordRepository[*models.CapitationReceipt] {
	return &RecordRepository[*models.CapitationReceipt]{db: db, table: capitationReceiptsTable}
}

// List returns the institution's records newest first.
func (r *RecordRepository[T]) List(ctx context.Context, institutionID int64) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE institution_id = $1 ORDER BY created_at DESC, id DESC", r.table.selectColumns(), r.table.name)
	var records []T
	if err := r.db.SelectContext(ctx, &records, query, institutionID); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table.name, err)
	}
	return records, nil
}

// FindByID loads a record owned by institutionID.
func (r *RecordRepository[T]) FindByID(ctx context.Context, institutionID, id int64) (T, error) {
	var zero T
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND institution_id = $2", r.table.selectColumns(), r.table.name)
	records := []T{}
	if err := r.db.SelectContext(ctx, &records, query, id, institutionID); err != nil {
		return zero, fmt.Errorf("find %s: %w", r.table.name, err)
	}
	if len(records) == 0 {
		return zero, sql.ErrNoRows
	}
	return records[0], nil
}

// Create inserts record and assigns its ID.
func (r *RecordRepository[T]) Create(ctx context.Context, record T) error {
	columns := append([]string{"institution_id"}, r.table.columns...)
	params := make([]string, len(columns))
	for i, column := range columns {
		params[i] = ":" + column
	}
	query := fmt.Sprintf("INSERT INTO %s (%s, created_at) VALUES (%s, COALESCE(:created_at, now())) RETURNING id",
		r.table.name, strings.Join(columns, ", "), strings.Join(params, ", "))

	rows, err := r.db.NamedQueryContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("create %s: %w", r.table.name, err)
	}
	defer rows.Close()
	var id int64
	if rows.Next() {
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan %s id: %w", r.table.name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("create %s: %w", r.table.name, err)
	}
	record.Assign(id, record.Owner())
	return nil
}

// Update overwrites the mutable columns of record. sql.ErrNoRows is returned
// when the row does not belong to record's institution.
func (r *RecordRepository[T]) Update(ctx context.Context, record T) error {
	assignments := make([]string, len(r.table.columns))
	for i, column := range r.table.columns {
		assignments[i] = fmt.Sprintf("%s = :%s", column, column)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id AND institution_id = :institution_id", r.table.name, strings.Join(assignments, ", "))
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table.name, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetDocument records the storage path of an uploaded document on record id.
func (r *RecordRepository[T]) SetDocument(ctx context.Context, institutionID, id int64, objectPath string) error {
	if r.table.documentColumn == "" {
		return fmt.Errorf("%s has no document column", r.table.name)
	}
	query := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE id = $2 AND institution_id = $3", r.table.name, r.table.documentColumn)
	res, err := r.db.ExecContext(ctx, query, objectPath, id, institutionID)
	if err != nil {
		return fmt.Errorf("set %s document: %w", r.table.name, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
