package models

import "time"

// OwnedRecord is a row that belongs to exactly one institution.
type OwnedRecord interface {
	RecordID() int64
	Owner() int64
	Assign(id, institutionID int64)
}

// DocumentHolder is an OwnedRecord that can reference an uploaded document.
type DocumentHolder interface {
	OwnedRecord
	AttachDocument(path string)
	DocumentPath() *string
	SetDocumentURL(url string)
}

// BankAccount is an institution's bank account used for capitation transfers.
type BankAccount struct {
	ID            int64      `db:"id" json:"id"`
	InstitutionID int64      `db:"institution_id" json:"institution_id"`
	BankName      *string    `db:"bank_name" json:"bank_name,omitempty" validate:"required"`
	Branch        *string    `db:"branch" json:"branch,omitempty"`
	AccountNumber *string    `db:"account_number" json:"account_number,omitempty" validate:"required"`
	CreatedAt     *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Book is a textbook inventory line.
type Book struct {
	ID            int64      `db:"id" json:"id"`
	InstitutionID int64      `db:"institution_id" json:"institution_id"`
	Title         string     `db:"title" json:"title" validate:"required"`
	Author        *string    `db:"author" json:"author,omitempty"`
	Publisher     *string    `db:"publisher" json:"publisher,omitempty"`
	ISBN          *string    `db:"isbn" json:"isbn,omitempty"`
	Category      *string    `db:"category" json:"category,omitempty"`
	Subject       *string    `db:"subject" json:"subject,omitempty"`
	Level         *string    `db:"level" json:"level,omitempty"`
	Condition     *string    `db:"condition" json:"condition,omitempty"`
	Quantity      *int       `db:"quantity" json:"quantity,omitempty" validate:"omitempty,gte=0"`
	UnitPrice     *string    `db:"unit_price" json:"unit_price,omitempty"`
	YearPublished *int       `db:"year_published" json:"year_published,omitempty"`
	CreatedAt     *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// InfrastructureAsset is a building, facility or piece of equipment.
type InfrastructureAsset struct {
	ID                int64      `db:"id" json:"id"`
	InstitutionID     int64      `db:"institution_id" json:"institution_id"`
	AssetName         *string    `db:"asset_name" json:"asset_name,omitempty" validate:"required"`
	AssetType         *string    `db:"asset_type" json:"asset_type,omitempty"`
	Classification    *string    `db:"classification" json:"classification,omitempty"`
	Quantity          *int       `db:"quantity" json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Cost              *float64   `db:"cost" json:"cost,omitempty"`
	YearOfAcquisition *int       `db:"year_of_acquisition" json:"year_of_acquisition,omitempty"`
	CreatedAt         *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Emergency is a reported calamity affecting an institution.
type Emergency struct {
	ID            int64      `db:"id" json:"id"`
	InstitutionID int64      `db:"institution_id" json:"institution_id"`
	CalamityName  *string    `db:"calamity_name" json:"calamity_name,omitempty" validate:"required"`
	Description   *string    `db:"description" json:"description,omitempty"`
	ReportingDate *time.Time `db:"reporting_date" json:"reporting_date,omitempty"`
	Response      *string    `db:"response" json:"response,omitempty"`
	Status        *string    `db:"status" json:"status,omitempty"`
	CreatedAt     *time.Time `db:"created_at" json:"created_at,omitempty"`
}

// CapitationReceipt records government capitation received by an institution.
type CapitationReceipt struct {
	ID            int64      `db:"id" json:"id"`
	InstitutionID int64      `db:"institution_id" json:"institution_id"`
	ReceiptNo     *string    `db:"receipt_no" json:"receipt_no,omitempty" validate:"required"`
	Amount        *float64   `db:"amount" json:"amount,omitempty" validate:"required,gte=0"`
	DateReceived  *time.Time `db:"date_received" json:"date_received,omitempty"`
	FilePath      *string    `db:"file_path" json:"-"`
	FileURL       *string    `db:"-" json:"file_url,omitempty"`
	CreatedAt     *time.Time `db:"created_at" json:"created_at,omitempty"`
}

func (b *BankAccount) RecordID() int64 { return b.ID }
func (b *BankAccount) Owner() int64    { return b.InstitutionID }
func (b *BankAccount) Assign(id, institutionID int64) {
	b.ID, b.InstitutionID = id, institutionID
}

func (b *Book) RecordID() int64 { return b.ID }
func (b *Book) Owner() int64    { return b.InstitutionID }
func (b *Book) Assign(id, institutionID int64) {
	b.ID, b.InstitutionID = id, institutionID
}

func (a *InfrastructureAsset) RecordID() int64 { return a.ID }
func (a *InfrastructureAsset) Owner() int64    { return a.InstitutionID }
func (a *InfrastructureAsset) Assign(id, institutionID int64) {
	a.ID, a.InstitutionID = id, institutionID
}

func (e *Emergency) RecordID() int64 { return e.ID }
func (e *Emergency) Owner() int64    { return e.InstitutionID }
func (e *Emergency) Assign(id, institutionID int64) {
	e.ID, e.InstitutionID = id, institutionID
}

func (c *CapitationReceipt) RecordID() int64 { return c.ID }
func (c *CapitationReceipt) Owner() int64    { return c.InstitutionID }
func (c *CapitationReceipt) Assign(id, institutionID int64) {
	c.ID, c.InstitutionID = id, institutionID
}

// AttachDocument records the storage path of the scanned receipt.
func (c *CapitationReceipt) AttachDocument(path string) {
	c.FilePath = &path
}

// DocumentPath is the storage path of the scanned receipt, if any.
func (c *CapitationReceipt) DocumentPath() *string { return c.FilePath }

// SetDocumentURL exposes a signed download URL for the receipt.
func (c *CapitationReceipt) SetDocumentURL(url string) {
	c.FileURL = &url
}
