package model

import (
	"time"
)

// Transaction represents the database model for ledger entries. Rows are
// append-only; no column is ever updated after insert. Uniqueness of
// (provider, payment_id) on deposits is enforced by a partial index created
// in the database manager's migration step.
type Transaction struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	UserID      int64     `gorm:"not null;index"`
	Kind        string    `gorm:"not null;size:32"`
	AmountCents int64     `gorm:"not null"`
	Description string    `gorm:"type:text"`
	Provider    string    `gorm:"size:32"`
	PaymentID   string    `gorm:"size:255"`
	Method      string    `gorm:"size:32"`
	CreatedAt   time.Time `gorm:"not null;index"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
