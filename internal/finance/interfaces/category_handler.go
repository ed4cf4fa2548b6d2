package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type CategoryServiceInterface interface {
	GetAllCategories(ctx context.Context, categoryType string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	UpdateCategory(ctx context.Context, category domain.Category) error
	DeleteCategory(ctx context.Context, categoryID int64) error
}

type CategoryHandler struct {
	service      CategoryServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewCategoryHandler(
	service CategoryServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *CategoryHandler {
	if service == nil || respondJSON == nil || respondError == nil {
		panic("Service and response functions must not be nil")
	}
	return &CategoryHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type categoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categoryType := r.URL.Query().Get("type")
	if categoryType != "" && !domain.IsValidTransactionType(categoryType) {
		h.respondError(w, http.StatusBadRequest, "Invalid category type")
		return
	}

	categories, err := h.service.GetAllCategories(r.Context(), categoryType)
	if err != nil {
		log.Printf("[Category] failed to list categories: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Categories retrieved successfully.",
		"data":    categories,
	})
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category := domain.Category{Name: req.Name, Type: req.Type}
	if err := h.service.CreateCategory(r.Context(), &category); err != nil {
		h.handleError(w, err, "Failed to create category")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully created.",
		"data":    category,
	})
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(r, "categoryID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category := domain.Category{ID: categoryID, Name: req.Name, Type: req.Type}
	if err := h.service.UpdateCategory(r.Context(), category); err != nil {
		h.handleError(w, err, "Failed to update category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully updated.",
		"data":    category,
	})
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(r, "categoryID")
	if !ok {
		h.respondError(w, http.StatusNotFound, "Category not found")
		return
	}

	if err := h.service.DeleteCategory(r.Context(), categoryID); err != nil {
		h.handleError(w, err, "Failed to delete category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully deleted.",
	})
}

func (h *CategoryHandler) handleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, financeErrors.ErrCategoryNotFound):
		h.respondError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, financeErrors.ErrCategoryInUse):
		h.respondError(w, http.StatusConflict, "Category is used by existing transactions and cannot be deleted")
	default:
		log.Printf("[Category] %s: %v", fallback, err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
