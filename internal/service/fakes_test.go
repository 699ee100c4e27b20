package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/ecde-votmis-api/internal/models"
)

// memPersonStore keeps both programs in memory and mirrors the repository
// guards used by the transactional release and receive paths.
type memPersonStore struct {
	mu        sync.Mutex
	persons   map[models.Program][]*models.Person
	transfers []*models.TransferRecord
	nextID    int64
	fetchErr  map[models.Program]error
	insertErr error
}

func newMemPersonStore() *memPersonStore {
	return &memPersonStore{persons: map[models.Program][]*models.Person{}, fetchErr: map[models.Program]error{}}
}

func (m *memPersonStore) seed(program models.Program, institutionID int64, upi, first, last string, mutate func(*models.Person)) *models.Person {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	inst := institutionID
	person := &models.Person{
		ID:            m.nextID,
		Program:       program,
		UPI:           upi,
		FirstName:     first,
		LastName:      last,
		Gender:        "female",
		Status:        models.PersonStatusEnrolled,
		InstitutionID: &inst,
	}
	if mutate != nil {
		mutate(person)
	}
	m.persons[program] = append(m.persons[program], person)
	return person
}

func inScope(person *models.Person, scope *models.PersonScope) bool {
	if scope == nil {
		return true
	}
	return person.InstitutionID != nil && *person.InstitutionID == scope.InstitutionID
}

func (m *memPersonStore) FindByInstitution(ctx context.Context, program models.Program, institutionID int64, includeDeceased bool) ([]models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fetchErr[program]; err != nil {
		return nil, err
	}
	result := []models.Person{}
	for _, person := range m.persons[program] {
		if person.InstitutionID == nil || *person.InstitutionID != institutionID {
			continue
		}
		if person.Deceased && !includeDeceased {
			continue
		}
		result = append(result, *person)
	}
	return result, nil
}

func (m *memPersonStore) find(program models.Program, id int64) *models.Person {
	for _, person := range m.persons[program] {
		if person.ID == id {
			return person
		}
	}
	return nil
}

func (m *memPersonStore) FindByID(ctx context.Context, program models.Program, id int64, scope *models.PersonScope) (*models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	person := m.find(program, id)
	if person == nil || !inScope(person, scope) {
		return nil, sql.ErrNoRows
	}
	clone := *person
	return &clone, nil
}

func (m *memPersonStore) FindByUPI(ctx context.Context, upi string, scope *models.PersonScope) (*models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	upi = strings.ToUpper(strings.TrimSpace(upi))
	for _, program := range models.Programs {
		for _, person := range m.persons[program] {
			if person.UPI == upi && inScope(person, scope) {
				clone := *person
				return &clone, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memPersonStore) UPIExists(ctx context.Context, upi string) (bool, error) {
	_, err := m.FindByUPI(ctx, upi, nil)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (m *memPersonStore) Insert(ctx context.Context, person *models.Person) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	person.ID = m.nextID
	created := time.Now()
	person.CreatedAt = &created
	clone := *person
	m.persons[person.Program] = append(m.persons[person.Program], &clone)
	return nil
}

func (m *memPersonStore) Update(ctx context.Context, program models.Program, id int64, scope *models.PersonScope, patch models.PersonPatch) (*models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	person := m.find(program, id)
	if person == nil || !inScope(person, scope) {
		return nil, sql.ErrNoRows
	}
	if patch.FirstName != nil {
		person.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		person.LastName = *patch.LastName
	}
	if patch.OtherName != nil {
		person.OtherName = patch.OtherName
	}
	if patch.Gender != nil {
		person.Gender = *patch.Gender
	}
	if patch.DOB != nil {
		person.DOB = patch.DOB
	}
	if patch.AdmissionDate != nil {
		person.AdmissionDate = patch.AdmissionDate
	}
	if patch.Photo != nil {
		person.Photo = patch.Photo
	}
	if patch.Status != nil {
		person.Status = *patch.Status
	}
	if patch.Deceased != nil {
		person.Deceased = *patch.Deceased
	}
	if patch.DateOfDeath != nil {
		person.DateOfDeath = patch.DateOfDeath
	}
	if patch.CauseOfDeath != nil {
		person.CauseOfDeath = patch.CauseOfDeath
	}
	if patch.DeathDetails != nil {
		person.DeathDetails = patch.DeathDetails
	}
	if patch.InstitutionID != nil {
		person.InstitutionID = patch.InstitutionID
	}
	clone := *person
	return &clone, nil
}

func (m *memPersonStore) Release(ctx context.Context, personID int64, transfer *models.TransferRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	person := m.find(transfer.Program, personID)
	if person == nil || person.Deceased || person.Status != models.PersonStatusEnrolled ||
		person.InstitutionID == nil || *person.InstitutionID != transfer.FromInstitutionID {
		return sql.ErrNoRows
	}
	person.Status = models.PersonStatusTransferred
	transfer.ID = fmt.Sprintf("transfer-%d", len(m.transfers)+1)
	transfer.Status = models.TransferStatusPending
	transfer.CreatedAt = time.Now()
	clone := *transfer
	m.transfers = append(m.transfers, &clone)
	return nil
}

func (m *memPersonStore) Receive(ctx context.Context, program models.Program, personID int64, institutionID int64, transferID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	person := m.find(program, personID)
	if person == nil || person.Deceased || person.Status != models.PersonStatusTransferred {
		return sql.ErrNoRows
	}
	inst := institutionID
	person.Status = models.PersonStatusEnrolled
	person.InstitutionID = &inst
	for _, transfer := range m.transfers {
		if transfer.ID == transferID {
			now := time.Now()
			transfer.Status = models.TransferStatusCompleted
			transfer.ToInstitutionID = &inst
			transfer.CompletedAt = &now
		}
	}
	return nil
}

func (m *memPersonStore) LatestPending(ctx context.Context, upi string) (*models.TransferRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.transfers) - 1; i >= 0; i-- {
		if m.transfers[i].PersonUPI == upi && m.transfers[i].Status == models.TransferStatusPending {
			clone := *m.transfers[i]
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memPersonStore) List(ctx context.Context, filter models.TransferFilter) ([]models.TransferRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []models.TransferRecord{}
	for _, transfer := range m.transfers {
		if filter.Status != "" && transfer.Status != filter.Status {
			continue
		}
		switch filter.Direction {
		case models.TransferDirectionIncoming:
			if transfer.ToInstitutionID == nil || *transfer.ToInstitutionID != filter.InstitutionID {
				continue
			}
		default:
			if transfer.FromInstitutionID != filter.InstitutionID {
				continue
			}
		}
		result = append(result, *transfer)
	}
	return result, nil
}

// memSequences is an atomic per-prefix counter.
type memSequences struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newMemSequences() *memSequences {
	return &memSequences{values: map[string]int64{}}
}

func (m *memSequences) Next(ctx context.Context, prefix string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[prefix]++
	return m.values[prefix], nil
}

type stubInstitutions struct {
	byID map[int64]*models.Institution
}

func (s stubInstitutions) FindByID(ctx context.Context, id int64) (*models.Institution, error) {
	if institution, ok := s.byID[id]; ok {
		return institution, nil
	}
	return nil, sql.ErrNoRows
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (r *recordingAudit) Create(ctx context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, log)
	return nil
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

type memBlobs struct {
	saved   map[string][]byte
	deleted []string
}

func (m *memBlobs) Delete(objectPath string) error {
	delete(m.saved, objectPath)
	m.deleted = append(m.deleted, objectPath)
	return nil
}

func (m *memBlobs) SaveStream(objectPath string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[objectPath] = data
	return objectPath, nil
}

type stubSigner struct{}

func (stubSigner) Generate(owner, objectPath string) (string, time.Time, error) {
	return "signed-" + owner + "-" + strings.ReplaceAll(objectPath, "/", "_"), time.Now().Add(time.Hour), nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

func actorAt(institutionID int64, roles ...models.Role) *models.Actor {
	if len(roles) == 0 {
		roles = []models.Role{models.RoleInstitutionAdmin}
	}
	return &models.Actor{UserID: fmt.Sprintf("user-%d", institutionID), InstitutionID: int64Ptr(institutionID), Roles: roles}
}

func dateAt(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
