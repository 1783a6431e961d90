package testutil

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pitaka-app/pitaka-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[uuid.UUID]*domain.Transaction
	Order        []uuid.UUID

	CreateFn             func(data *domain.CreateTransactionData) (*domain.Transaction, error)
	GetByIDFn            func(id uuid.UUID) (*domain.Transaction, error)
	SelectFn             func(filters *domain.TransactionFilters) ([]*domain.Transaction, error)
	UpdateFn             func(id uuid.UUID, data *domain.UpdateTransactionData) (*domain.Transaction, error)
	SoftDeleteFn         func(id uuid.UUID) (bool, error)
	SoftDeleteBatchFn    func(ids []uuid.UUID) (int64, error)
	RestoreFn            func(id uuid.UUID) (*domain.Transaction, error)
	EntriesByDateRangeFn func(start, end time.Time) ([]domain.Entry, error)
	DistinctYearsFn      func() ([]int, error)
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[uuid.UUID]*domain.Transaction),
	}
}

// Create inserts a new transaction
func (m *MockTransactionRepository) Create(data *domain.CreateTransactionData) (*domain.Transaction, error) {
	if m.CreateFn != nil {
		return m.CreateFn(data)
	}
	now := time.Now()
	transaction := &domain.Transaction{
		ID:        uuid.New(),
		Date:      data.Date,
		Type:      data.Type,
		Amount:    data.Amount,
		Notes:     data.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.Transactions[transaction.ID] = transaction
	m.Order = append(m.Order, transaction.ID)
	return transaction, nil
}

// GetByID retrieves a non-deleted transaction by ID
func (m *MockTransactionRepository) GetByID(id uuid.UUID) (*domain.Transaction, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(id)
	}
	transaction, ok := m.Transactions[id]
	if !ok || transaction.DeletedAt != nil {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

// Select lists transactions matching the filters
func (m *MockTransactionRepository) Select(filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	if m.SelectFn != nil {
		return m.SelectFn(filters)
	}

	var filtered []*domain.Transaction
	for _, id := range m.Order {
		t := m.Transactions[id]
		if t.DeletedAt != nil && (filters == nil || !filters.IncludeDeleted) {
			continue
		}
		if filters != nil {
			if filters.StartDate != nil && t.Date.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && t.Date.After(*filters.EndDate) {
				continue
			}
			if len(filters.Types) > 0 && !containsKey(filters.Types, t.Type) {
				continue
			}
		}
		filtered = append(filtered, t)
	}
	if filtered == nil {
		filtered = []*domain.Transaction{}
	}

	// Newest first, matching the SQL ordering
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.After(filtered[j].Date)
	})

	if filters != nil {
		if filters.Offset > 0 {
			if int(filters.Offset) >= len(filtered) {
				return []*domain.Transaction{}, nil
			}
			filtered = filtered[filters.Offset:]
		}
		if filters.Limit > 0 && int(filters.Limit) < len(filtered) {
			filtered = filtered[:filters.Limit]
		}
	}
	return filtered, nil
}

// Update applies a partial update to a non-deleted transaction
func (m *MockTransactionRepository) Update(id uuid.UUID, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(id, data)
	}
	transaction, ok := m.Transactions[id]
	if !ok || transaction.DeletedAt != nil {
		return nil, domain.ErrTransactionNotFound
	}
	if data.Date != nil {
		transaction.Date = *data.Date
	}
	if data.Type != nil {
		transaction.Type = *data.Type
	}
	if data.Amount != nil {
		transaction.Amount = *data.Amount
	}
	if data.Notes != nil {
		if *data.Notes == "" {
			transaction.Notes = nil
		} else {
			transaction.Notes = data.Notes
		}
	}
	transaction.UpdatedAt = time.Now()
	return transaction, nil
}

// SoftDelete marks a transaction deleted; false when already deleted or missing
func (m *MockTransactionRepository) SoftDelete(id uuid.UUID) (bool, error) {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(id)
	}
	transaction, ok := m.Transactions[id]
	if !ok || transaction.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	transaction.DeletedAt = &now
	return true, nil
}

// SoftDeleteBatch marks multiple transactions deleted, returning the count
func (m *MockTransactionRepository) SoftDeleteBatch(ids []uuid.UUID) (int64, error) {
	if m.SoftDeleteBatchFn != nil {
		return m.SoftDeleteBatchFn(ids)
	}
	var count int64
	for _, id := range ids {
		deleted, err := m.SoftDelete(id)
		if err != nil {
			return count, err
		}
		if deleted {
			count++
		}
	}
	return count, nil
}

// Restore clears the delete marker on a deleted transaction
func (m *MockTransactionRepository) Restore(id uuid.UUID) (*domain.Transaction, error) {
	if m.RestoreFn != nil {
		return m.RestoreFn(id)
	}
	transaction, ok := m.Transactions[id]
	if !ok || transaction.DeletedAt == nil {
		return nil, domain.ErrTransactionNotFound
	}
	transaction.DeletedAt = nil
	transaction.UpdatedAt = time.Now()
	return transaction, nil
}

// EntriesByDateRange returns non-deleted entries with date in [start, end]
func (m *MockTransactionRepository) EntriesByDateRange(start, end time.Time) ([]domain.Entry, error) {
	if m.EntriesByDateRangeFn != nil {
		return m.EntriesByDateRangeFn(start, end)
	}
	entries := []domain.Entry{}
	for _, id := range m.Order {
		t := m.Transactions[id]
		if t.DeletedAt != nil {
			continue
		}
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		entries = append(entries, domain.Entry{Date: t.Date, Type: t.Type, Amount: t.Amount})
	}
	return entries, nil
}

// DistinctYears returns the years with at least one non-deleted transaction,
// descending
func (m *MockTransactionRepository) DistinctYears() ([]int, error) {
	if m.DistinctYearsFn != nil {
		return m.DistinctYearsFn()
	}
	seen := make(map[int]bool)
	for _, t := range m.Transactions {
		if t.DeletedAt != nil {
			continue
		}
		seen[t.Date.Year()] = true
	}
	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	m.Transactions[transaction.ID] = transaction
	m.Order = append(m.Order, transaction.ID)
}

// AddEntry adds a minimal transaction with the given date, type and amount
// (helper for aggregation tests)
func (m *MockTransactionRepository) AddEntry(date time.Time, key domain.CategoryKey, amount string) *domain.Transaction {
	transaction := &domain.Transaction{
		ID:        uuid.New(),
		Date:      date,
		Type:      key,
		Amount:    decimal.RequireFromString(amount),
		CreatedAt: date,
		UpdatedAt: date,
	}
	m.AddTransaction(transaction)
	return transaction
}

func containsKey(keys []domain.CategoryKey, key domain.CategoryKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
