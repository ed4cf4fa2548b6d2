package insight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}
	respondJSON(w, status, payload)
}

func withUser(req *http.Request, id string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), "userID", id))
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (*Report, error) {
	return nil, errors.New("database is down")
}

func TestHandleDashboard_GroupsByKind(t *testing.T) {
	f := newFixture()
	f.add(domain.TypeIncome, 2, "400", 1)
	f.budget(1, "Food", "10", domain.PeriodMonthly)
	f.add(domain.TypeExpense, 1, "9.50", 0)
	f.insights.Insights = []Insight{
		{ID: 100, UserID: userID, Kind: KindTip, Title: "Track daily", CreatedAt: fixedNow.Add(-time.Hour), IsRead: true},
	}
	handler := NewHandler(f.generator, f.insights, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodGet, "/api/protected/insights", nil)
	w := httptest.NewRecorder()
	handler.HandleDashboard(w, withUser(req, userID))
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Status string            `json:"status"`
		Data   dashboardResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "success", response.Status)
	assert.Len(t, response.Data.Predictions, 0)
	assert.Len(t, response.Data.Alerts, 1)
	assert.Len(t, response.Data.Recommendations, 1)
	assert.Len(t, response.Data.Tips, 1)
	assert.Equal(t, 3, response.Data.TotalInsights)
	assert.Equal(t, 2, response.Data.UnreadCount)
	assert.Equal(t, "WARNING: Food Budget Alert", response.Data.Alerts[0].Title)
}

func TestHandleDashboard_GenerationFailure(t *testing.T) {
	handler := NewHandler(failingGenerator{}, &MockRepository{}, respondJSON, respondError)

	req := httptest.NewRequest(http.MethodGet, "/api/protected/insights", nil)
	w := httptest.NewRecorder()
	handler.HandleDashboard(w, withUser(req, userID))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/protected/insights", nil)
	w = httptest.NewRecorder()
	handler.HandleDashboard(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleList_Filters(t *testing.T) {
	repo := &MockRepository{Insights: []Insight{
		{ID: 1, UserID: userID, Kind: KindAlert, Title: "a", CreatedAt: fixedNow.Add(-2 * time.Hour)},
		{ID: 2, UserID: userID, Kind: KindAlert, Title: "b", CreatedAt: fixedNow.Add(-time.Hour), IsRead: true},
		{ID: 3, UserID: userID, Kind: KindPrediction, Title: "c", CreatedAt: fixedNow},
		{ID: 4, UserID: "user-2", Kind: KindAlert, Title: "d", CreatedAt: fixedNow},
	}}
	handler := NewHandler(failingGenerator{}, repo, respondJSON, respondError)

	list := func(query string) (int, []Insight) {
		req := httptest.NewRequest(http.MethodGet, "/api/protected/insights/list"+query, nil)
		w := httptest.NewRecorder()
		handler.HandleList(w, withUser(req, userID))
		var response struct {
			Data []Insight `json:"data"`
		}
		_ = json.NewDecoder(w.Body).Decode(&response)
		return w.Code, response.Data
	}

	code, insights := list("")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, insights, 3)
	assert.Equal(t, int64(3), insights[0].ID)
	assert.Equal(t, int64(1), insights[2].ID)

	code, insights = list("?kind=alert")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, insights, 2)

	code, insights = list("?kind=alert&unread=true")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, insights, 1)
	assert.Equal(t, int64(1), insights[0].ID)

	code, _ = list("?kind=gossip")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = list("?unread=maybe")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandleMarkReadAndDelete_OwnerOnly(t *testing.T) {
	repo := &MockRepository{Insights: []Insight{
		{ID: 1, UserID: "owner", Kind: KindAlert, Title: "a", CreatedAt: fixedNow},
	}}
	handler := NewHandler(failingGenerator{}, repo, respondJSON, respondError)

	call := func(h http.HandlerFunc, method, id, user string) int {
		req := httptest.NewRequest(method, "/api/protected/insights/"+id, nil)
		req.SetPathValue("insightID", id)
		w := httptest.NewRecorder()
		h(w, withUser(req, user))
		return w.Code
	}

	assert.Equal(t, http.StatusNotFound, call(handler.HandleMarkRead, http.MethodPost, "1", "intruder"))
	assert.False(t, repo.Insights[0].IsRead)
	assert.Equal(t, http.StatusOK, call(handler.HandleMarkRead, http.MethodPost, "1", "owner"))
	assert.True(t, repo.Insights[0].IsRead)

	assert.Equal(t, http.StatusNotFound, call(handler.HandleDelete, http.MethodDelete, "abc", "owner"))
	assert.Equal(t, http.StatusNotFound, call(handler.HandleDelete, http.MethodDelete, "1", "intruder"))
	assert.Equal(t, http.StatusOK, call(handler.HandleDelete, http.MethodDelete, "1", "owner"))
	assert.Empty(t, repo.Insights)
}
