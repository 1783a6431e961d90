package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pitaka-app/pitaka-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// transactionColumns is the full column list, in scan order
const transactionColumns = "id, date, type, amount, notes, created_at, updated_at, deleted_at"

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new transaction row
func (r *TransactionRepository) Create(data *domain.CreateTransactionData) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var date pgtype.Date
	date.Time = data.Date
	date.Valid = true

	var notes pgtype.Text
	if data.Notes != nil {
		notes.String = *data.Notes
		notes.Valid = true
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (date, type, amount, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+transactionColumns,
		date, string(data.Type), amount, notes)

	return scanTransaction(row)
}

// GetByID retrieves a non-deleted transaction by ID
func (r *TransactionRepository) GetByID(id uuid.UUID) (*domain.Transaction, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND deleted_at IS NULL`, id)

	transaction, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// Select retrieves transactions matching the filters, ordered by date
// descending then creation time descending
func (r *TransactionRepository) Select(filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	ctx := context.Background()

	limit := int32(domain.DefaultListLimit)
	offset := int32(0)

	var conditions []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters != nil {
		if filters.Limit > 0 {
			limit = filters.Limit
			if limit > domain.MaxListLimit {
				limit = domain.MaxListLimit
			}
		}
		if filters.Offset > 0 {
			offset = filters.Offset
		}
		if !filters.IncludeDeleted {
			conditions = append(conditions, "deleted_at IS NULL")
		}
		if filters.StartDate != nil {
			conditions = append(conditions, "date >= "+arg(pgtype.Date{Time: *filters.StartDate, Valid: true}))
		}
		if filters.EndDate != nil {
			conditions = append(conditions, "date <= "+arg(pgtype.Date{Time: *filters.EndDate, Valid: true}))
		}
		if len(filters.Types) > 0 {
			keys := make([]string, len(filters.Types))
			for i, k := range filters.Types {
				keys[i] = string(k)
			}
			conditions = append(conditions, "type = ANY("+arg(keys)+")")
		}
		if filters.Search != "" {
			conditions = append(conditions, "notes ILIKE "+arg("%"+filters.Search+"%"))
		}
	} else {
		conditions = append(conditions, "deleted_at IS NULL")
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"
	query += " LIMIT " + arg(limit) + " OFFSET " + arg(offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, transaction)
	}
	return result, rows.Err()
}

// Update updates a non-deleted transaction. Nil fields are left unchanged.
func (r *TransactionRepository) Update(id uuid.UUID, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	ctx := context.Background()

	var sets []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if data.Date != nil {
		sets = append(sets, "date = "+arg(pgtype.Date{Time: *data.Date, Valid: true}))
	}
	if data.Type != nil {
		sets = append(sets, "type = "+arg(string(*data.Type)))
	}
	if data.Amount != nil {
		amount, err := decimalToPgNumeric(*data.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount: %w", err)
		}
		sets = append(sets, "amount = "+arg(amount))
	}
	if data.Notes != nil {
		sets = append(sets, "notes = "+arg(*data.Notes))
	}

	sets = append(sets, "updated_at = now()")

	query := "UPDATE transactions SET " + strings.Join(sets, ", ") +
		" WHERE id = " + arg(id) + " AND deleted_at IS NULL" +
		" RETURNING " + transactionColumns

	row := r.pool.QueryRow(ctx, query, args...)
	transaction, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// SoftDelete marks a transaction deleted. Matching zero rows (already
// deleted or unknown ID) is reported as false, not an error.
func (r *TransactionRepository) SoftDelete(id uuid.UUID) (bool, error) {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		UPDATE transactions
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SoftDeleteBatch marks multiple transactions deleted and returns the number
// of rows affected. Already-deleted rows are skipped.
func (r *TransactionRepository) SoftDeleteBatch(ids []uuid.UUID) (int64, error) {
	ctx := context.Background()

	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE transactions
		SET deleted_at = now(), updated_at = now()
		WHERE id = ANY($1) AND deleted_at IS NULL`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Restore clears the delete marker on a currently-deleted transaction
func (r *TransactionRepository) Restore(id uuid.UUID) (*domain.Transaction, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET deleted_at = NULL, updated_at = now()
		WHERE id = $1 AND deleted_at IS NOT NULL
		RETURNING `+transactionColumns, id)

	transaction, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// EntriesByDateRange returns lean non-deleted rows with date in [start, end]
// for the aggregation engine
func (r *TransactionRepository) EntriesByDateRange(start, end time.Time) ([]domain.Entry, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT date, type, amount
		FROM transactions
		WHERE deleted_at IS NULL AND date >= $1 AND date <= $2`,
		pgtype.Date{Time: start, Valid: true},
		pgtype.Date{Time: end, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var date pgtype.Date
		var categoryKey string
		var amount pgtype.Numeric
		if err := rows.Scan(&date, &categoryKey, &amount); err != nil {
			return nil, err
		}
		entries = append(entries, domain.Entry{
			Date:   date.Time,
			Type:   domain.CategoryKey(categoryKey),
			Amount: pgNumericToDecimal(amount),
		})
	}
	return entries, rows.Err()
}

// DistinctYears returns the years with non-deleted activity, descending
func (r *TransactionRepository) DistinctYears() ([]int, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT EXTRACT(YEAR FROM date)::int AS year
		FROM transactions
		WHERE deleted_at IS NULL
		ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, rows.Err()
}

// Helper functions

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		id        uuid.UUID
		date      pgtype.Date
		key       string
		amount    pgtype.Numeric
		notes     pgtype.Text
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
		deletedAt pgtype.Timestamptz
	)

	if err := row.Scan(&id, &date, &key, &amount, &notes, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		ID:        id,
		Date:      date.Time,
		Type:      domain.CategoryKey(key),
		Amount:    pgNumericToDecimal(amount),
		CreatedAt: createdAt.Time,
		UpdatedAt: updatedAt.Time,
	}
	if notes.Valid {
		transaction.Notes = &notes.String
	}
	if deletedAt.Valid {
		transaction.DeletedAt = &deletedAt.Time
	}
	return transaction, nil
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return n, err
	}
	return n, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
