package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/shopspring/decimal"
)

type BudgetServiceInterface interface {
	CreateBudget(ctx context.Context, budget *domain.Budget) error
	GetUserBudgets(ctx context.Context, userID string) ([]domain.Budget, error)
	GetBudget(ctx context.Context, budgetID int64, userID string) (*domain.Budget, error)
	UpdateBudget(ctx context.Context, budget *domain.Budget) error
	DeleteBudget(ctx context.Context, budgetID int64, userID string) error
}

type BudgetHandler struct {
	service      BudgetServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewBudgetHandler(
	service BudgetServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *BudgetHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &BudgetHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type budgetRequest struct {
	CategoryID  int64           `json:"category_id"`
	LimitAmount decimal.Decimal `json:"limit_amount"`
	Period      string          `json:"period"`
}

func (h *BudgetHandler) GetBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	budgets, err := h.service.GetUserBudgets(r.Context(), userID)
	if err != nil {
		h.handleError(w, err, "Failed to retrieve budgets")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budgets retrieved successfully.",
		"data":    budgets,
	})
}

func (h *BudgetHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	budgetID, ok := pathID(r, "budgetID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Budget not found")
		return
	}

	budget, err := h.service.GetBudget(r.Context(), budgetID, userID)
	if err != nil {
		h.handleError(w, err, "Failed to retrieve budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget retrieved successfully.",
		"data":    budget,
	})
}

func (h *BudgetHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	budget := domain.Budget{UserID: userID, CategoryID: req.CategoryID, LimitAmount: req.LimitAmount, Period: req.Period}
	if err := h.service.CreateBudget(r.Context(), &budget); err != nil {
		h.handleError(w, err, "Failed to create budget")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Budget successfully created.",
		"data":    budget,
	})
}

func (h *BudgetHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	budgetID, ok := pathID(r, "budgetID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Budget not found")
		return
	}
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	budget := domain.Budget{ID: budgetID, UserID: userID, CategoryID: req.CategoryID, LimitAmount: req.LimitAmount, Period: req.Period}
	if err := h.service.UpdateBudget(r.Context(), &budget); err != nil {
		h.handleError(w, err, "Failed to update budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget successfully updated.",
		"data":    budget,
	})
}

func (h *BudgetHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	budgetID, ok := pathID(r, "budgetID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Budget not found")
		return
	}

	if err := h.service.DeleteBudget(r.Context(), budgetID, userID); err != nil {
		h.handleError(w, err, "Failed to delete budget")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Budget successfully deleted.",
	})
}

func (h *BudgetHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, financeErrors.ErrBudgetNotFound):
		h.respondError(w, http.StatusNotFound, "Budget not found")
	default:
		log.Printf("[Budget] %s: %v", fallback, err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
