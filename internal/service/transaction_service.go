package service

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pitaka-app/pitaka-backend/internal/domain"
	"github.com/pitaka-app/pitaka-backend/internal/util"
	"github.com/shopspring/decimal"
)

// RecentTransactionsLimit is the default size of the dashboard recent list
const RecentTransactionsLimit = 15

// MonthQueryLimit bounds a single-month listing; a month never has anywhere
// near this many rows in practice
const MonthQueryLimit = 1000

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		now:             time.Now,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Date   *time.Time
	Type   domain.CategoryKey
	Amount decimal.Decimal
	Notes  *string
}

// CreateTransaction creates a new transaction with validation. The category
// key must resolve in the registry; bad keys are rejected at write time so
// aggregates never have to skip rows created through this path.
func (s *TransactionService) CreateTransaction(input CreateTransactionInput) (*domain.Transaction, error) {
	if !domain.IsValidCategory(input.Type) {
		return nil, domain.ErrUnknownCategory
	}

	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	date := s.now().UTC().Truncate(24 * time.Hour)
	if input.Date != nil {
		date = *input.Date
	}
	// Dates outside the supported window would fall outside every
	// aggregation fetch, so reject them here
	if date.Year() < domain.MinYear || date.Year() > domain.MaxYear {
		return nil, domain.ErrInvalidDate
	}

	notes, err := normalizeNotes(input.Notes)
	if err != nil {
		return nil, err
	}

	return s.transactionRepo.Create(&domain.CreateTransactionData{
		Date:   date,
		Type:   input.Type,
		Amount: input.Amount,
		Notes:  notes,
	})
}

// UpdateTransactionInput holds the partial input for updating a transaction
type UpdateTransactionInput struct {
	Date   *time.Time
	Type   *domain.CategoryKey
	Amount *decimal.Decimal
	Notes  *string
}

// UpdateTransaction updates a non-deleted transaction. Nil fields are left
// unchanged.
func (s *TransactionService) UpdateTransaction(id uuid.UUID, input UpdateTransactionInput) (*domain.Transaction, error) {
	if input.Type != nil && !domain.IsValidCategory(*input.Type) {
		return nil, domain.ErrUnknownCategory
	}

	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	if input.Date != nil && (input.Date.Year() < domain.MinYear || input.Date.Year() > domain.MaxYear) {
		return nil, domain.ErrInvalidDate
	}

	notes := input.Notes
	if notes != nil {
		normalized, err := normalizeNotes(notes)
		if err != nil {
			return nil, err
		}
		if normalized == nil {
			empty := ""
			normalized = &empty
		}
		notes = normalized
	}

	return s.transactionRepo.Update(id, &domain.UpdateTransactionData{
		Date:   input.Date,
		Type:   input.Type,
		Amount: input.Amount,
		Notes:  notes,
	})
}

// GetTransactions retrieves transactions matching the filters. A class
// filter expands to the registry keys of that class; an explicit type list
// takes precedence over it.
func (s *TransactionService) GetTransactions(filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if len(filters.Types) == 0 && filters.Class != nil {
		filters.Types = domain.KeysByClass(*filters.Class)
	}
	return s.transactionRepo.Select(filters)
}

// GetTransactionByID retrieves a non-deleted transaction by ID
func (s *TransactionService) GetTransactionByID(id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(id)
}

// GetRecentTransactions returns the most recent transactions for the
// dashboard view
func (s *TransactionService) GetRecentTransactions(limit int32) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = RecentTransactionsLimit
	}
	return s.transactionRepo.Select(&domain.TransactionFilters{Limit: limit})
}

// GetTransactionsByMonth returns all transactions in a calendar month
func (s *TransactionService) GetTransactionsByMonth(year, month int) ([]*domain.Transaction, error) {
	if year < domain.MinYear || year > domain.MaxYear {
		return nil, domain.ErrInvalidYear
	}
	if month < 1 || month > 12 {
		return nil, domain.ErrInvalidMonth
	}

	start, end := util.MonthRange(year, month)
	return s.transactionRepo.Select(&domain.TransactionFilters{
		StartDate: &start,
		EndDate:   &end,
		Limit:     MonthQueryLimit,
	})
}

// DeleteTransaction soft-deletes a transaction. Deleting an already-deleted
// transaction is a benign no-op and reports false.
func (s *TransactionService) DeleteTransaction(id uuid.UUID) (bool, error) {
	return s.transactionRepo.SoftDelete(id)
}

// DeleteBatch soft-deletes multiple transactions and returns how many rows
// were actually affected
func (s *TransactionService) DeleteBatch(ids []uuid.UUID) (int64, error) {
	return s.transactionRepo.SoftDeleteBatch(ids)
}

// RestoreTransaction clears the delete marker on a deleted transaction
func (s *TransactionService) RestoreTransaction(id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.Restore(id)
}

// AvailableYears returns the years selectable in the UI: every year with
// activity plus the current and next year, descending
func (s *TransactionService) AvailableYears() ([]int, error) {
	years, err := s.transactionRepo.DistinctYears()
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(years)+2)
	for _, y := range years {
		seen[y] = true
	}
	currentYear := s.now().Year()
	seen[currentYear] = true
	seen[currentYear+1] = true

	result := make([]int, 0, len(seen))
	for y := range seen {
		result = append(result, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(result)))
	return result, nil
}

func normalizeNotes(notes *string) (*string, error) {
	if notes == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > domain.MaxNotesLength {
		return nil, domain.ErrNotesTooLong
	}
	return &trimmed, nil
}
