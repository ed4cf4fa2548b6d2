package insight

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
)

type Service interface {
	Generate(ctx context.Context, userID string) (*Report, error)
}

type Handler struct {
	generator    Service
	insights     Repository
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string)
}

func NewHandler(
	generator Service,
	insights Repository,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *Handler {
	if generator == nil || insights == nil || respondJSON == nil || respondError == nil {
		panic("Insight handler dependencies must not be nil")
	}
	return &Handler{
		generator:    generator,
		insights:     insights,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type dashboardResponse struct {
	Predictions     []Insight `json:"predictions"`
	Alerts          []Insight `json:"alerts"`
	Recommendations []Insight `json:"recommendations"`
	Tips            []Insight `json:"tips"`
	TotalInsights   int       `json:"total_insights"`
	UnreadCount     int       `json:"unread_count"`
}

func newDashboard(insights []Insight) dashboardResponse {
	dashboard := dashboardResponse{
		Predictions:     []Insight{},
		Alerts:          []Insight{},
		Recommendations: []Insight{},
		Tips:            []Insight{},
		TotalInsights:   len(insights),
	}
	for _, insight := range insights {
		switch insight.Kind {
		case KindPrediction:
			dashboard.Predictions = append(dashboard.Predictions, insight)
		case KindAlert:
			dashboard.Alerts = append(dashboard.Alerts, insight)
		case KindRecommendation:
			dashboard.Recommendations = append(dashboard.Recommendations, insight)
		case KindTip:
			dashboard.Tips = append(dashboard.Tips, insight)
		}
		if !insight.IsRead {
			dashboard.UnreadCount++
		}
	}
	return dashboard
}

// HandleDashboard regenerates the user's insights and returns all of them grouped by kind.
// A failed generation fails the whole request.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if _, err := h.generator.Generate(r.Context(), userID); err != nil {
		log.Printf("[Insight] generation failed for user %s: %v", userID, err)
		h.respondError(w, http.StatusInternalServerError, "Failed to generate insights")
		return
	}

	insights, err := h.insights.List(r.Context(), userID, Filter{})
	if err != nil {
		log.Printf("[Insight] failed to list insights for user %s: %v", userID, err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve insights")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Insights retrieved successfully.",
		"data":    newDashboard(insights),
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter := Filter{Kind: r.URL.Query().Get("kind")}
	if filter.Kind != "" && !IsValidKind(filter.Kind) {
		h.respondError(w, http.StatusBadRequest, "Invalid insight kind")
		return
	}
	if unread := r.URL.Query().Get("unread"); unread != "" {
		unreadOnly, err := strconv.ParseBool(unread)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid unread value")
			return
		}
		filter.UnreadOnly = unreadOnly
	}

	insights, err := h.insights.List(r.Context(), userID, filter)
	if err != nil {
		log.Printf("[Insight] failed to list insights for user %s: %v", userID, err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve insights")
		return
	}
	if insights == nil {
		insights = []Insight{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Insights retrieved successfully.",
		"data":    insights,
	})
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, insightID, ok := h.ownedInsight(w, r)
	if !ok {
		return
	}

	if err := h.insights.MarkRead(r.Context(), insightID, userID); err != nil {
		h.handleError(w, err, "Failed to mark insight as read")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Insight marked as read.",
	})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, insightID, ok := h.ownedInsight(w, r)
	if !ok {
		return
	}

	if err := h.insights.Delete(r.Context(), insightID, userID); err != nil {
		h.handleError(w, err, "Failed to delete insight")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Insight deleted successfully.",
	})
}

func (h *Handler) ownedInsight(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", 0, false
	}
	insightID, err := strconv.ParseInt(r.PathValue("insightID"), 10, 64)
	if err != nil || insightID <= 0 {
		h.respondError(w, http.StatusNotFound, "Insight not found")
		return "", 0, false
	}
	return userID, insightID, true
}

func (h *Handler) handleError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, ErrInsightNotFound) {
		h.respondError(w, http.StatusNotFound, "Insight not found")
		return
	}
	log.Printf("[Insight] %s: %v", fallback, err)
	h.respondError(w, http.StatusInternalServerError, fallback)
}
