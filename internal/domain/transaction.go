package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single recorded income or expense entry. The amount is
// always non-negative; whether it counts toward income or expense is derived
// from the category registry, never stored on the row.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	Date      time.Time       `json:"date"`
	Type      CategoryKey     `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *time.Time      `json:"deletedAt,omitempty"`
}

// Entry is the lean row shape the aggregation engine works on
type Entry struct {
	Date   time.Time
	Type   CategoryKey
	Amount decimal.Decimal
}

// CreateTransactionData holds the fields for inserting a transaction
type CreateTransactionData struct {
	Date   time.Time
	Type   CategoryKey
	Amount decimal.Decimal
	Notes  *string
}

// UpdateTransactionData holds the partial fields for updating a transaction.
// Nil fields are left unchanged.
type UpdateTransactionData struct {
	Date   *time.Time
	Type   *CategoryKey
	Amount *decimal.Decimal
	Notes  *string
}

// TransactionFilters narrows a transaction listing. Soft-deleted rows are
// excluded unless IncludeDeleted is set.
type TransactionFilters struct {
	StartDate      *time.Time
	EndDate        *time.Time
	Types          []CategoryKey
	Class          *CategoryClass
	Search         string
	Limit          int32
	Offset         int32
	IncludeDeleted bool
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// TransactionRepository is the persistence boundary for transactions
type TransactionRepository interface {
	Create(data *CreateTransactionData) (*Transaction, error)
	GetByID(id uuid.UUID) (*Transaction, error)
	Select(filters *TransactionFilters) ([]*Transaction, error)
	Update(id uuid.UUID, data *UpdateTransactionData) (*Transaction, error)
	// SoftDelete marks a row deleted. Deleting an already-deleted row is a
	// benign no-op and reports false.
	SoftDelete(id uuid.UUID) (bool, error)
	SoftDeleteBatch(ids []uuid.UUID) (int64, error)
	// Restore clears the delete marker; only currently-deleted rows match.
	Restore(id uuid.UUID) (*Transaction, error)
	// EntriesByDateRange returns non-deleted {date,type,amount} rows with
	// date in [start, end], for aggregation.
	EntriesByDateRange(start, end time.Time) ([]Entry, error)
	DistinctYears() ([]int, error)
}
