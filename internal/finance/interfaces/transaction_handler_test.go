package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
	Errors  []string `json:"errors"`
}

func withUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), "userID", userID))
}

func newTransactionHandler() (*TransactionHandler, *infrastructure.MockTransactionRepository) {
	repo := &infrastructure.MockTransactionRepository{}
	categories := application.NewCategoryService(&infrastructure.MockCategoryRepository{
		Categories: []domain.Category{
			{ID: 1, Name: "Food", Type: domain.TypeExpense},
			{ID: 2, Name: "Salary", Type: domain.TypeIncome},
		},
	})
	service := application.NewTransactionService(repo, categories)
	return NewTransactionHandler(service, respondJSON, respondError), repo
}

func TestCreateTransactionsBulk_WithValidationError(t *testing.T) {
	handler, repo := newTransactionHandler()

	body := `{"transactions": [
		{"amount": -10, "note": "Invalid transaction", "type": "expense", "category_id": 1, "date": "2024-01-01"},
		{"amount": 50, "note": "Invalid category", "type": "income", "category_id": 99, "date": "2024-01-01"},
		{"amount": 20, "note": "Test 3", "type": "income", "date": "2024-01-01"},
		{"amount": 20, "note": "Without Type", "category_id": 1, "date": "2024-01-01"}
	]}`

	req := httptest.NewRequest(http.MethodPost, "/transactions/bulk", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.CreateTransactionsBulk(w, withUser(req, "user-1"))

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var response errorResponse
	err := json.NewDecoder(res.Body).Decode(&response)
	assert.NoError(t, err)

	expectedErrors := []string{
		"Validation error at transaction 1: Amount must not be negative",
		"Validation error at transaction 2: Invalid category",
		"Validation error at transaction 3: Category ID must be provided",
		"Validation error at transaction 4: Type must be 'income' or 'expense'",
	}
	assert.Equal(t, expectedErrors, response.Errors)
	assert.Empty(t, repo.Transactions)
}

func TestCreateTransactionsBulk_InvalidRequestBody(t *testing.T) {
	handler, _ := newTransactionHandler()

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "not json", body: "invalid body", message: "Invalid request body"},
		{name: "wrong key", body: `{"wrongKey": [{"amount": 100, "type": "income"}]}`, message: "Invalid request body - no transactions provided"},
		{name: "not an array", body: `{"transactions": "this should be an array, not a string"}`, message: "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transactions/bulk", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateTransactionsBulk(w, withUser(req, "user-1"))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)

			var response errorResponse
			require.NoError(t, json.NewDecoder(res.Body).Decode(&response))
			assert.Equal(t, "error", response.Status)
			assert.Equal(t, tt.message, response.Message)
			assert.Equal(t, http.StatusBadRequest, response.Code)
		})
	}
}

func TestCreateTransactionsBulk_Success(t *testing.T) {
	handler, repo := newTransactionHandler()

	body := `{"transactions": [
		{"amount": "12.50", "type": "expense", "category_id": 1, "date": "2024-02-01"},
		{"amount": 1000, "type": "income", "category_id": 2, "date": "2024-02-01"}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/transactions/bulk", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	handler.CreateTransactionsBulk(w, withUser(req, "user-1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, repo.Transactions, 2)
}

func TestCreateTransaction(t *testing.T) {
	handler, repo := newTransactionHandler()

	body := `{"amount": "19.999", "type": "expense", "category_id": 1, "date": "2024-03-15", "note": "lunch"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	handler.CreateTransaction(w, withUser(req, "user-1"))

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.Transactions, 1)
	stored := repo.Transactions[0]
	assert.Equal(t, "user-1", stored.UserID)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), stored.Date)
}

func TestCreateTransaction_BadDateAndUnauthorized(t *testing.T) {
	handler, _ := newTransactionHandler()

	body := `{"amount": 5, "type": "expense", "category_id": 1, "date": "15/03/2024"}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	handler.CreateTransaction(w, withUser(req, "user-1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body))
	w = httptest.NewRecorder()
	handler.CreateTransaction(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetUserTransactions_Filters(t *testing.T) {
	handler, repo := newTransactionHandler()
	repo.Transactions = []domain.Transaction{
		{ID: 1, UserID: "user-1", CategoryID: 1, Type: domain.TypeExpense, Amount: decimal.NewFromInt(5), Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{ID: 2, UserID: "user-1", CategoryID: 2, Type: domain.TypeIncome, Amount: decimal.NewFromInt(50), Date: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)},
		{ID: 3, UserID: "user-2", CategoryID: 1, Type: domain.TypeExpense, Amount: decimal.NewFromInt(7), Date: time.Date(2024, 2, 6, 0, 0, 0, 0, time.UTC)},
	}

	req := httptest.NewRequest(http.MethodGet, "/transactions?type=expense&start_date=2024-01-01&end_date=2024-12-31", nil)
	w := httptest.NewRecorder()
	handler.GetUserTransactions(w, withUser(req, "user-1"))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []domain.Transaction `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, int64(1), response.Data[0].ID)

	for _, query := range []string{"?type=bogus", "?limit=0", "?page=-1", "?start_date=yesterday", "?category_id=x"} {
		req = httptest.NewRequest(http.MethodGet, "/transactions"+query, nil)
		w = httptest.NewRecorder()
		handler.GetUserTransactions(w, withUser(req, "user-1"))
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestUpdateAndDeleteTransaction_OwnerOnly(t *testing.T) {
	handler, repo := newTransactionHandler()
	repo.Transactions = []domain.Transaction{
		{ID: 1, UserID: "owner", CategoryID: 1, Type: domain.TypeExpense, Amount: decimal.NewFromInt(5), Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
	}

	body := `{"amount": 8, "type": "expense", "category_id": 1, "date": "2024-01-06"}`
	req := httptest.NewRequest(http.MethodPut, "/transactions/1", bytes.NewBufferString(body))
	req.SetPathValue("transactionID", "1")
	w := httptest.NewRecorder()
	handler.UpdateTransaction(w, withUser(req, "intruder"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodPut, "/transactions/1", bytes.NewBufferString(body))
	req.SetPathValue("transactionID", "1")
	w = httptest.NewRecorder()
	handler.UpdateTransaction(w, withUser(req, "owner"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.Transactions[0].Amount.Equal(decimal.NewFromInt(8)))

	req = httptest.NewRequest(http.MethodDelete, "/transactions/1", nil)
	req.SetPathValue("transactionID", "1")
	w = httptest.NewRecorder()
	handler.DeleteTransaction(w, withUser(req, "intruder"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/transactions/1", nil)
	req.SetPathValue("transactionID", "1")
	w = httptest.NewRecorder()
	handler.DeleteTransaction(w, withUser(req, "owner"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.Transactions)
}

func TestGetTransactionSummary(t *testing.T) {
	handler, repo := newTransactionHandler()
	repo.Transactions = []domain.Transaction{
		{ID: 1, UserID: "user-1", CategoryID: 1, Type: domain.TypeExpense, Amount: decimal.RequireFromString("5.25"), Date: time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)},
		{ID: 2, UserID: "user-1", CategoryID: 2, Type: domain.TypeIncome, Amount: decimal.RequireFromString("100"), Date: time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC)},
	}

	req := httptest.NewRequest(http.MethodGet, "/transactions/summary?start_date=2023-01-01&end_date=2023-12-31", nil)
	w := httptest.NewRecorder()
	handler.GetTransactionSummary(w, withUser(req, "user-1"))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data map[string]application.TransactionSummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	year := response.Data["2023"]
	assert.True(t, year.IncomeTotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, year.ExpenseTotal.Equal(decimal.RequireFromString("5.25")))
	assert.Len(t, year.Months["January"].Weeks, 1)
}
