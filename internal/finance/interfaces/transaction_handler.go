package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const defaultTransactionsLimit = 20

type TransactionServiceInterface interface {
	CreateTransaction(ctx context.Context, transaction *domain.Transaction) error
	CreateTransactionsBulk(ctx context.Context, transactions []*domain.Transaction, userID string) error
	GetTransaction(ctx context.Context, transactionID int64, userID string) (*domain.Transaction, error)
	GetUserTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, transaction *domain.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID int64, userID string) error
	GetTransactionSummary(ctx context.Context, userID string, startDate, endDate time.Time) (map[int]application.TransactionSummary, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *TransactionHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	if respondJSON == nil {
		log.Fatal("RespondJSON function must not be nil")
		return nil
	}
	if respondError == nil {
		log.Fatal("RespondError function must not be nil")
		return nil
	}
	return &TransactionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type transactionRequest struct {
	CategoryID int64           `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type"`
	Date       string          `json:"date"`
	Note       string          `json:"note"`
}

func (req transactionRequest) toTransaction(userID string) (*domain.Transaction, error) {
	transaction := &domain.Transaction{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Type:       req.Type,
		Note:       req.Note,
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			return nil, financeErrors.NewValidationError("Invalid date format, expected YYYY-MM-DD")
		}
		transaction.Date = date
	}
	return transaction, nil
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction, err := req.toTransaction(userID)
	if err == nil {
		err = h.service.CreateTransaction(r.Context(), transaction)
	}
	if err != nil {
		h.handleError(w, err, "Failed to create transaction")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully created.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) CreateTransactionsBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		Transactions []transactionRequest `json:"transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Transactions) == 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid request body - no transactions provided")
		return
	}

	validationErrors := &financeErrors.ValidationErrors{}
	transactions := make([]*domain.Transaction, 0, len(req.Transactions))
	for i, item := range req.Transactions {
		transaction, err := item.toTransaction(userID)
		if err != nil {
			validationErrors.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
			continue
		}
		transactions = append(transactions, transaction)
	}

	var err error
	if len(validationErrors.Errors) > 0 {
		err = validationErrors
	} else {
		err = h.service.CreateTransactionsBulk(r.Context(), transactions, userID)
	}
	if err != nil {
		var errs *financeErrors.ValidationErrors
		if errors.As(err, &errs) {
			errorMessages := make([]string, len(errs.Errors))
			for i, vErr := range errs.Errors {
				errorMessages[i] = vErr.Error()
			}
			h.respondError(w, http.StatusBadRequest, "Validation errors occurred", errorMessages)
			return
		}
		h.handleError(w, err, "Failed to create transactions")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transactions successfully created.",
		"data":    transactions,
	})
}

func (h *TransactionHandler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := domain.TransactionFilter{UserID: userID}

	filter.Type = r.URL.Query().Get("type")
	if filter.Type != "" && !domain.IsValidTransactionType(filter.Type) {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction type")
		return
	}

	if categoryIDStr := r.URL.Query().Get("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.ParseInt(categoryIDStr, 10, 64)
		if err != nil || categoryID <= 0 {
			h.respondError(w, http.StatusBadRequest, "Invalid category_id value")
			return
		}
		filter.CategoryID = &categoryID
	}

	var err error
	if filter.From, err = parseOptionalDate(r, "start_date"); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid start date format")
		return
	}
	if filter.To, err = parseOptionalDate(r, "end_date"); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid end date format")
		return
	}
	if filter.Limit, err = parsePositiveInt(r, "limit", defaultTransactionsLimit); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid limit value")
		return
	}
	if filter.Page, err = parsePositiveInt(r, "page", 1); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid page value")
		return
	}

	transactions, err := h.service.GetUserTransactions(r.Context(), filter)
	if err != nil {
		h.handleError(w, err, "Failed to retrieve transactions")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions retrieved successfully.",
		"data":    transactions,
	})
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, ok := pathID(r, "transactionID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), transactionID, userID)
	if err != nil {
		h.handleError(w, err, "Failed to retrieve transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction retrieved successfully.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, ok := pathID(r, "transactionID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	transaction, err := req.toTransaction(userID)
	if err == nil {
		transaction.ID = transactionID
		err = h.service.UpdateTransaction(r.Context(), transaction)
	}
	if err != nil {
		h.handleError(w, err, "Failed to update transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully updated.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID, ok := pathID(r, "transactionID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), transactionID, userID); err != nil {
		h.handleError(w, err, "Failed to delete transaction")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully deleted.",
	})
}

func (h *TransactionHandler) GetTransactionSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	now := time.Now().UTC()
	startDate := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	endDate := domain.TruncateToDay(now)

	from, err := parseOptionalDate(r, "start_date")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid start date format")
		return
	}
	if from != nil {
		startDate = *from
	}
	to, err := parseOptionalDate(r, "end_date")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid end date format")
		return
	}
	if to != nil {
		endDate = *to
	}

	summary, err := h.service.GetTransactionSummary(r.Context(), userID, startDate, endDate)
	if err != nil {
		log.Printf("[Transaction] failed to build summary: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve transaction summary")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions summary retrieved successfully.",
		"data":    summary,
	})
}

func (h *TransactionHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, financeErrors.ErrTransactionNotFound):
		h.respondError(w, http.StatusNotFound, "Transaction not found")
	default:
		log.Printf("[Transaction] %s: %v", fallback, err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
