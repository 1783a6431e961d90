package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pitaka-app/pitaka-backend/internal/domain"
	"github.com/pitaka-app/pitaka-backend/internal/service"
	"github.com/pitaka-app/pitaka-backend/internal/util"
	"github.com/pitaka-app/pitaka-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// dateLayout is the wire format for transaction dates
const dateLayout = "2006-01-02"

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	publisher          websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, publisher websocket.EventPublisher) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		publisher:          publisher,
	}
}

// CreateTransactionRequest represents the create transaction request body.
// Amount accepts a plain number or a quick-add arithmetic expression
// such as "500*0.8".
type CreateTransactionRequest struct {
	Date   *string `json:"date,omitempty"`
	Type   string  `json:"type"`
	Amount string  `json:"amount"`
	Notes  *string `json:"notes,omitempty"`
}

// UpdateTransactionRequest represents the update transaction request body.
// Omitted fields are left unchanged.
type UpdateTransactionRequest struct {
	Date   *string `json:"date,omitempty"`
	Type   *string `json:"type,omitempty"`
	Amount *string `json:"amount,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Type      string  `json:"type"`
	Amount    string  `json:"amount"`
	Notes     *string `json:"notes,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	DeletedAt *string `json:"deletedAt,omitempty"`
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Create a new income or expense transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body CreateTransactionRequest true "Transaction creation request"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a number or a valid arithmetic expression"},
		})
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = &parsed
	}

	input := service.CreateTransactionInput{
		Date:   date,
		Type:   domain.CategoryKey(req.Type),
		Amount: amount,
		Notes:  req.Notes,
	}

	transaction, err := h.transactionService.CreateTransaction(input)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCategory) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Unknown category key"},
			})
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be non-negative"},
			})
		}
		if errors.Is(err, domain.ErrNotesTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "notes", Message: "Notes must be 1000 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrInvalidDate) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "date", Message: "Date is outside the supported range"},
			})
		}
		log.Error().Err(err).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().Str("transaction_id", transaction.ID.String()).Str("type", string(transaction.Type)).Msg("Transaction created")
	h.publisher.Publish(websocket.TransactionCreated(toTransactionResponse(transaction)))

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions godoc
// @Summary List transactions
// @Description Get transactions with optional filters and limit/offset pagination
// @Tags transactions
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD), inclusive"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Param types query string false "Comma-separated category keys"
// @Param category query string false "Category class (income or expense)"
// @Param search query string false "Substring match in notes"
// @Param limit query int false "Max results" default(50)
// @Param offset query int false "Pagination offset" default(0)
// @Success 200 {array} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	filters := &domain.TransactionFilters{}

	if v := c.QueryParam("startDate"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return NewValidationError(c, "Invalid startDate", nil)
		}
		filters.StartDate = &parsed
	}
	if v := c.QueryParam("endDate"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return NewValidationError(c, "Invalid endDate", nil)
		}
		filters.EndDate = &parsed
	}
	if v := c.QueryParam("types"); v != "" {
		for _, key := range strings.Split(v, ",") {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if !domain.IsValidCategory(domain.CategoryKey(key)) {
				return NewValidationError(c, "Invalid types", []ValidationError{
					{Field: "types", Message: "Unknown category key: " + key},
				})
			}
			filters.Types = append(filters.Types, domain.CategoryKey(key))
		}
	}
	if v := c.QueryParam("category"); v != "" {
		class := domain.CategoryClass(v)
		if class != domain.ClassIncome && class != domain.ClassExpense {
			return NewValidationError(c, "Invalid category", []ValidationError{
				{Field: "category", Message: "Must be one of: income, expense"},
			})
		}
		filters.Class = &class
	}
	filters.Search = c.QueryParam("search")

	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 32)
		if err != nil || limit < 0 {
			return NewValidationError(c, "Invalid limit", nil)
		}
		filters.Limit = int32(limit)
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.ParseInt(v, 10, 32)
		if err != nil || offset < 0 {
			return NewValidationError(c, "Invalid offset", nil)
		}
		filters.Offset = int32(offset)
	}

	transactions, err := h.transactionService.GetTransactions(filters)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}

	return c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

// GetRecentTransactions godoc
// @Summary Recent transactions
// @Description Get the most recent transactions for the dashboard
// @Tags transactions
// @Produce json
// @Param limit query int false "Max results" default(15)
// @Success 200 {array} TransactionResponse
// @Router /transactions/recent [get]
func (h *TransactionHandler) GetRecentTransactions(c echo.Context) error {
	limit := int32(0)
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil || parsed < 0 {
			return NewValidationError(c, "Invalid limit", nil)
		}
		limit = int32(parsed)
	}

	transactions, err := h.transactionService.GetRecentTransactions(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list recent transactions")
		return NewInternalError(c, "Failed to list recent transactions")
	}

	return c.JSON(http.StatusOK, toTransactionResponses(transactions))
}

// GetAvailableYears godoc
// @Summary Available years
// @Description Get the years selectable in year pickers
// @Tags transactions
// @Produce json
// @Success 200 {array} int
// @Router /transactions/years [get]
func (h *TransactionHandler) GetAvailableYears(c echo.Context) error {
	years, err := h.transactionService.AvailableYears()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list available years")
		return NewInternalError(c, "Failed to list available years")
	}
	return c.JSON(http.StatusOK, years)
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransactionByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("transaction_id", id.String()).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Update fields of a non-deleted transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateTransactionInput{Notes: req.Notes}

	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		input.Date = &parsed
	}
	if req.Type != nil {
		key := domain.CategoryKey(*req.Type)
		input.Type = &key
	}
	if req.Amount != nil {
		amount, err := util.ParseAmount(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be a number or a valid arithmetic expression"},
			})
		}
		input.Amount = &amount
	}

	transaction, err := h.transactionService.UpdateTransaction(id, input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrUnknownCategory) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Unknown category key"},
			})
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be non-negative"},
			})
		}
		if errors.Is(err, domain.ErrNotesTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "notes", Message: "Notes must be 1000 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrInvalidDate) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "date", Message: "Date is outside the supported range"},
			})
		}
		log.Error().Err(err).Str("transaction_id", id.String()).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	log.Info().Str("transaction_id", transaction.ID.String()).Msg("Transaction updated")
	h.publisher.Publish(websocket.TransactionUpdated(toTransactionResponse(transaction)))

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransactionResponse reports the outcome of a soft delete
type DeleteTransactionResponse struct {
	Success bool `json:"success"`
	Deleted bool `json:"deleted"`
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Soft-delete a transaction. Deleting an already-deleted transaction is a no-op.
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} DeleteTransactionResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	deleted, err := h.transactionService.DeleteTransaction(id)
	if err != nil {
		log.Error().Err(err).Str("transaction_id", id.String()).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	if deleted {
		log.Info().Str("transaction_id", id.String()).Msg("Transaction deleted")
		h.publisher.Publish(websocket.TransactionDeleted(map[string]string{"id": id.String()}))
	}

	return c.JSON(http.StatusOK, DeleteTransactionResponse{Success: true, Deleted: deleted})
}

// BatchDeleteRequest represents the batch delete request body
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchDeleteResponse reports how many rows a batch delete affected
type BatchDeleteResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

// BatchDeleteTransactions godoc
// @Summary Batch delete transactions
// @Description Soft-delete multiple transactions; already-deleted rows are skipped
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body BatchDeleteRequest true "Transaction IDs"
// @Success 200 {object} BatchDeleteResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions/batch [delete]
func (h *TransactionHandler) BatchDeleteTransactions(c echo.Context) error {
	var req BatchDeleteRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if len(req.IDs) == 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "ids", Message: "At least one ID is required"},
		})
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "ids", Message: "Invalid transaction ID: " + raw},
			})
		}
		ids = append(ids, id)
	}

	count, err := h.transactionService.DeleteBatch(ids)
	if err != nil {
		log.Error().Err(err).Int("id_count", len(ids)).Msg("Failed to batch delete transactions")
		return NewInternalError(c, "Failed to batch delete transactions")
	}

	if count > 0 {
		log.Info().Int64("deleted_count", count).Msg("Transactions batch deleted")
		h.publisher.Publish(websocket.TransactionDeleted(map[string]interface{}{"ids": req.IDs}))
	}

	return c.JSON(http.StatusOK, BatchDeleteResponse{Success: true, DeletedCount: count})
}

// RestoreTransaction godoc
// @Summary Restore a transaction
// @Description Clear the delete marker on a soft-deleted transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id}/restore [post]
func (h *TransactionHandler) RestoreTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.RestoreTransaction(id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "No deleted transaction with that ID")
		}
		log.Error().Err(err).Str("transaction_id", id.String()).Msg("Failed to restore transaction")
		return NewInternalError(c, "Failed to restore transaction")
	}

	log.Info().Str("transaction_id", transaction.ID.String()).Msg("Transaction restored")
	h.publisher.Publish(websocket.TransactionRestored(toTransactionResponse(transaction)))

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// Helpers

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:        t.ID.String(),
		Date:      t.Date.Format(dateLayout),
		Type:      string(t.Type),
		Amount:    t.Amount.StringFixed(2),
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DeletedAt != nil {
		deletedAt := t.DeletedAt.Format(time.RFC3339)
		resp.DeletedAt = &deletedAt
	}
	return resp
}

func toTransactionResponses(transactions []*domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = toTransactionResponse(t)
	}
	return responses
}
