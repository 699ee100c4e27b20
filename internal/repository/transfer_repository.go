package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

const transferColumns = `id, person_upi, program, from_institution_id, to_institution_id, reason, effective_date, notes, status, created_by, created_at, completed_at`

// TransferRepository persists transfer records together with the person rows they move.
type TransferRepository struct {
	db *sqlx.DB
}

// NewTransferRepository constructs a TransferRepository.
func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// Release marks the person transferred and opens a pending transfer in one
// transaction. The person must still be enrolled at transfer.FromInstitutionID.
func (r *TransferRepository) Release(ctx context.Context, personID int64, transfer *models.TransferRecord) (err error) {
	table, err := personTable(transfer.Program)
	if err != nil {
		return err
	}
	if transfer.ID == "" {
		transfer.ID = uuid.NewString()
	}
	transfer.Status = models.TransferStatusPending
	transfer.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin release: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	update := fmt.Sprintf(`UPDATE %s SET status = $1 WHERE id = $2 AND institution_id = $3
        AND COALESCE(status, 'enrolled') = $4 AND COALESCE(deceased, false) = false`, table)
	res, err := tx.ExecContext(ctx, update, models.PersonStatusTransferred, personID, transfer.FromInstitutionID, models.PersonStatusEnrolled)
	if err != nil {
		return fmt.Errorf("release person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release person rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	const insert = `INSERT INTO transfers (id, person_upi, program, from_institution_id, to_institution_id, reason, effective_date, notes, status, created_by, created_at)
        VALUES (:id, :person_upi, :program, :from_institution_id, :to_institution_id, :reason, :effective_date, :notes, :status, :created_by, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insert, transfer); err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit release: %w", err)
	}
	return nil
}

// Receive re-homes a transferred person to institutionID, re-enrols them and
// completes the pending transfer identified by transferID when one exists.
func (r *TransferRepository) Receive(ctx context.Context, program models.Program, personID int64, institutionID int64, transferID string) (err error) {
	table, err := personTable(program)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin receive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	update := fmt.Sprintf(`UPDATE %s SET status = $1, institution_id = $2 WHERE id = $3
        AND COALESCE(status, 'enrolled') = $4 AND COALESCE(deceased, false) = false`, table)
	res, err := tx.ExecContext(ctx, update, models.PersonStatusEnrolled, institutionID, personID, models.PersonStatusTransferred)
	if err != nil {
		return fmt.Errorf("receive person: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("receive person rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if transferID != "" {
		const complete = `UPDATE transfers SET status = $1, to_institution_id = $2, completed_at = $3 WHERE id = $4 AND status = $5`
		if _, err = tx.ExecContext(ctx, complete, models.TransferStatusCompleted, institutionID, time.Now().UTC(), transferID, models.TransferStatusPending); err != nil {
			return fmt.Errorf("complete transfer: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit receive: %w", err)
	}
	return nil
}

// LatestPending returns the most recent pending transfer for upi.
func (r *TransferRepository) LatestPending(ctx context.Context, upi string) (*models.TransferRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE person_upi = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1`, transferColumns)
	var transfer models.TransferRecord
	if err := r.db.GetContext(ctx, &transfer, query, upi, models.TransferStatusPending); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find pending transfer: %w", err)
	}
	return &transfer, nil
}

// List returns the transfers leaving or entering an institution, newest first.
func (r *TransferRepository) List(ctx context.Context, filter models.TransferFilter) ([]models.TransferRecord, error) {
	conditions := []string{}
	args := []interface{}{filter.InstitutionID}
	switch filter.Direction {
	case models.TransferDirectionIncoming:
		conditions = append(conditions, "to_institution_id = $1")
	case models.TransferDirectionOutgoing:
		conditions = append(conditions, "from_institution_id = $1")
	default:
		conditions = append(conditions, "(from_institution_id = $1 OR to_institution_id = $1)")
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	query := fmt.Sprintf("SELECT %s FROM transfers WHERE %s ORDER BY created_at DESC", transferColumns, strings.Join(conditions, " AND "))

	var transfers []models.TransferRecord
	if err := r.db.SelectContext(ctx, &transfers, query, args...); err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return transfers, nil
}
