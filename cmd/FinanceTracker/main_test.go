package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceTracker/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceTracker/internal/insight"
	"github.com/sebuszqo/FinanceTracker/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	status string
}

func (f fakeDB) Health(context.Context) map[string]string {
	return map[string]string{"status": f.status}
}

func newTestServer(db HealthChecker) *Server {
	userService := user.NewUserService(&user.MockRepository{})
	jwtManager := auth.NewJWTManager("test-secret", time.Minute, time.Hour)
	authService := auth.NewAuthService(userService, jwtManager)

	categoryService := application.NewCategoryService(&infrastructure.MockCategoryRepository{})
	transactionRepo := &infrastructure.MockTransactionRepository{}
	budgetRepo := &infrastructure.MockBudgetRepository{}
	insightRepo := &insight.MockRepository{}
	generator := insight.NewGenerator(transactionRepo, budgetRepo, insightRepo, "")

	server := &Server{
		db:                 db,
		authHandler:        auth.NewHandler(authService, jwtManager.RefreshTTL()),
		userHandler:        user.NewHandler(userService),
		authService:        authService,
		categoryHandler:    interfaces.NewCategoryHandler(categoryService, respondJSON, respondError),
		transactionHandler: interfaces.NewTransactionHandler(application.NewTransactionService(transactionRepo, categoryService), respondJSON, respondError),
		budgetHandler:      interfaces.NewBudgetHandler(application.NewBudgetService(budgetRepo, categoryService), respondJSON, respondError),
		insightHandler:     insight.NewHandler(generator, insightRepo, respondJSON, respondError),
	}
	server.RegisterRoutes()
	return server
}

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func TestServer_EndToEnd(t *testing.T) {
	server := newTestServer(fakeDB{status: "up"})
	c := &client{t: t, router: server.router}

	w := c.do(http.MethodPost, "/api/register", map[string]string{
		"email": "ama@example.com", "username": "ama", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/protected/insights", nil).Code)

	w = c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email_or_login": "ama", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&login))
	c.token = login.Data["access_token"]

	w = c.do(http.MethodPost, "/api/protected/categories", map[string]string{"name": "Food", "type": "expense"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&category))

	today := time.Now().UTC().Format("2006-01-02")
	for i := 0; i < 5; i++ {
		w = c.do(http.MethodPost, "/api/protected/transactions", map[string]interface{}{
			"category_id": category.Data.ID, "amount": "20.00", "type": "expense", "date": today,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = c.do(http.MethodPost, "/api/protected/budgets", map[string]interface{}{
		"category_id": category.Data.ID, "limit_amount": "100", "period": "weekly",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/protected/insights", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var dashboard struct {
		Data struct {
			Predictions []insight.Insight `json:"predictions"`
			Alerts      []insight.Insight `json:"alerts"`
			UnreadCount int               `json:"unread_count"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dashboard))
	require.Len(t, dashboard.Data.Predictions, 1)
	require.Len(t, dashboard.Data.Alerts, 1)
	assert.Equal(t, "CRITICAL: Food Budget Alert", dashboard.Data.Alerts[0].Title)
	assert.Equal(t, 2, dashboard.Data.UnreadCount)

	alertID := dashboard.Data.Alerts[0].ID
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, fmt.Sprintf("/api/protected/insights/%d/read", alertID), nil).Code)
	w = c.do(http.MethodGet, "/api/protected/insights/list?unread=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var unread struct {
		Data []insight.Insight `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&unread))
	assert.Len(t, unread.Data, 1)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/protected/transactions/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, "/api/protected/categories/999", nil).Code)
}

func TestServer_PublicRoutes(t *testing.T) {
	c := &client{t: t, router: newTestServer(fakeDB{status: "down"}).router}

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/ready", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, c.do(http.MethodGet, "/api/health", nil).Code)

	w := c.do(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var response Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Path not found", response.Message)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPut, "/api/refresh/token", nil).Code)

	healthy := &client{t: t, router: newTestServer(fakeDB{status: "up"}).router}
	assert.Equal(t, http.StatusOK, healthy.do(http.MethodGet, "/api/health", nil).Code)
}
