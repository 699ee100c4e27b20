package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
	appErrors "github.com/noah-isme/ecde-votmis-api/pkg/errors"
)

const personColumns = `id, upi, COALESCE(first_name, '') AS first_name, COALESCE(last_name, '') AS last_name, other_name,
        COALESCE(gender, '') AS gender, dob, admission_date, photo, COALESCE(status, 'enrolled') AS status,
        COALESCE(deceased, false) AS deceased, date_of_death, cause_of_death, death_details, institution_id, created_at`

// personTable maps a program to the table that stores it.
func personTable(program models.Program) (string, error) {
	switch program {
	case models.ProgramECDE:
		return "learners", nil
	case models.ProgramVocational:
		return "students", nil
	default:
		return "", fmt.Errorf("unknown program %q", program)
	}
}

// PersonRepository stores ECDE learners and vocational students behind one API.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs a PersonRepository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// FindByInstitution returns the persons of one program owned by an institution
// in insertion order. Deceased persons are omitted unless includeDeceased is set.
func (r *PersonRepository) FindByInstitution(ctx context.Context, program models.Program, institutionID int64, includeDeceased bool) ([]models.Person, error) {
	table, err := personTable(program)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE institution_id = $1", personColumns, table)
	if !includeDeceased {
		query += " AND COALESCE(deceased, false) = false"
	}
	query += " ORDER BY id ASC"

	var persons []models.Person
	if err := r.db.SelectContext(ctx, &persons, query, institutionID); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	for i := range persons {
		persons[i].Program = program
	}
	return persons, nil
}

// FindByID loads a person by program and id, restricted to scope when given.
func (r *PersonRepository) FindByID(ctx context.Context, program models.Program, id int64, scope *models.PersonScope) (*models.Person, error) {
	table, err := personTable(program)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", personColumns, table)
	args := []interface{}{id}
	if scope != nil {
		query += " AND institution_id = $2"
		args = append(args, scope.InstitutionID)
	}

	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by id: %w", table, err)
	}
	person.Program = program
	return &person, nil
}

// FindByUPI searches both programs for upi. A non-nil scope only matches
// persons currently owned by that institution.
func (r *PersonRepository) FindByUPI(ctx context.Context, upi string, scope *models.PersonScope) (*models.Person, error) {
	upi = strings.ToUpper(strings.TrimSpace(upi))
	for _, program := range models.Programs {
		table, _ := personTable(program)
		query := fmt.Sprintf("SELECT %s FROM %s WHERE upi = $1", personColumns, table)
		args := []interface{}{upi}
		if scope != nil {
			query += " AND institution_id = $2"
			args = append(args, scope.InstitutionID)
		}
		query += " LIMIT 1"

		var person models.Person
		if err := r.db.GetContext(ctx, &person, query, args...); err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, fmt.Errorf("find %s by upi: %w", table, err)
		}
		person.Program = program
		return &person, nil
	}
	return nil, sql.ErrNoRows
}

// UPIExists reports whether upi is held by any learner or student.
func (r *PersonRepository) UPIExists(ctx context.Context, upi string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM learners WHERE upi = $1) OR EXISTS (SELECT 1 FROM students WHERE upi = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, upi); err != nil {
		return false, fmt.Errorf("check upi: %w", err)
	}
	return exists, nil
}

// Insert validates and stores a new person, filling ID and CreatedAt.
func (r *PersonRepository) Insert(ctx context.Context, person *models.Person) error {
	if missing := missingPersonFields(person); len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	table, err := personTable(person.Program)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if person.CreatedAt == nil {
		now := time.Now().UTC()
		person.CreatedAt = &now
	}

	query := fmt.Sprintf(`INSERT INTO %s (upi, first_name, last_name, other_name, gender, dob, admission_date, photo, status, deceased, institution_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`, table)
	row := r.db.QueryRowxContext(ctx, query,
		person.UPI, person.FirstName, person.LastName, person.OtherName, person.Gender, person.DOB,
		person.AdmissionDate, person.Photo, person.Status, person.Deceased, person.InstitutionID, person.CreatedAt)
	if err := row.Scan(&person.ID); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func missingPersonFields(person *models.Person) []string {
	var missing []string
	if person.InstitutionID == nil || *person.InstitutionID <= 0 {
		missing = append(missing, "institution_id")
	}
	if strings.TrimSpace(person.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(person.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(person.Gender) == "" {
		missing = append(missing, "gender")
	}
	if person.DOB == nil || person.DOB.IsZero() {
		missing = append(missing, "dob")
	}
	return missing
}

// Update applies patch to a person and returns the stored row. With a scope the
// row must belong to that institution; sql.ErrNoRows is returned otherwise.
func (r *PersonRepository) Update(ctx context.Context, program models.Program, id int64, scope *models.PersonScope, patch models.PersonPatch) (*models.Person, error) {
	table, err := personTable(program)
	if err != nil {
		return nil, err
	}
	assignments, args := personPatchAssignments(patch)
	if len(assignments) == 0 {
		return r.FindByID(ctx, program, id, scope)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(assignments, ", "), len(args))
	if scope != nil {
		args = append(args, scope.InstitutionID)
		query += fmt.Sprintf(" AND institution_id = $%d", len(args))
	}
	query += " RETURNING " + personColumns

	var person models.Person
	if err := r.db.GetContext(ctx, &person, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	person.Program = program
	return &person, nil
}

func personPatchAssignments(patch models.PersonPatch) ([]string, []interface{}) {
	var (
		assignments []string
		args        []interface{}
	)
	set := func(column string, value interface{}) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.OtherName != nil {
		set("other_name", *patch.OtherName)
	}
	if patch.Gender != nil {
		set("gender", *patch.Gender)
	}
	if patch.DOB != nil {
		set("dob", *patch.DOB)
	}
	if patch.AdmissionDate != nil {
		set("admission_date", *patch.AdmissionDate)
	}
	if patch.Photo != nil {
		set("photo", *patch.Photo)
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Deceased != nil {
		set("deceased", *patch.Deceased)
	}
	if patch.DateOfDeath != nil {
		set("date_of_death", *patch.DateOfDeath)
	}
	if patch.CauseOfDeath != nil {
		set("cause_of_death", *patch.CauseOfDeath)
	}
	if patch.DeathDetails != nil {
		set("death_details", *patch.DeathDetails)
	}
	if patch.InstitutionID != nil {
		set("institution_id", *patch.InstitutionID)
	}
	return assignments, args
}
