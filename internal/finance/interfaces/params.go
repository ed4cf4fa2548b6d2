package interfaces

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

// ValidateIDPathParamMiddleware parses the named numeric path parameter and stores it in the
// request context under the same key. Malformed IDs are answered with notFoundMessage.
func ValidateIDPathParamMiddleware(
	next http.Handler,
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
	param, notFoundMessage string,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paramValue := r.PathValue(param)
		if paramValue == "" {
			log.Printf("[Finance_Middleware] %s is empty", param)
			respondError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", param))
			return
		}

		id, err := strconv.ParseInt(paramValue, 10, 64)
		if err != nil || id <= 0 {
			log.Printf("[Finance_Middleware] %s is invalid: %q", param, paramValue)
			respondError(w, http.StatusNotFound, notFoundMessage)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), param, id)))
	})
}

func pathID(r *http.Request, param string) (int64, bool) {
	if id, ok := r.Context().Value(param).(int64); ok {
		return id, true
	}
	id, err := strconv.ParseInt(r.PathValue(param), 10, 64)
	return id, err == nil && id > 0
}

// parseDate accepts a plain calendar date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func parseOptionalDate(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parsePositiveInt(r *http.Request, key string, fallback int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s value", key)
	}
	return n, nil
}
