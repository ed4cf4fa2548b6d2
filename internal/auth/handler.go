package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

const refreshCookiePath = "/api/refresh/token"

type Handler struct {
	authService Service
	refreshTTL  time.Duration
}

func NewHandler(authService Service, refreshTTL time.Duration) *Handler {
	return &Handler{
		authService: authService,
		refreshTTL:  refreshTTL,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func (s *Handler) setRefreshCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
		Path:     refreshCookiePath,
		MaxAge:   int(s.refreshTTL.Seconds()),
	})
}

func (s *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmailOrLogin string `json:"email_or_login"`
		Password     string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password == "" || req.EmailOrLogin == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existingUser, accessToken, refreshToken, err := s.authService.Login(r.Context(), req.EmailOrLogin, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.setRefreshCookie(w, refreshToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"user_id":      existingUser.ID,
			"access_token": accessToken,
		},
	})
}

func (s *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Logout successful",
	})
}

func (s *Handler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrUserNotFound.Error())
		return
	}

	accessToken, newRefreshToken, err := s.authService.RefreshAccessToken(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, ErrUserNotFound.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, ErrInternalError.Error())
		return
	}

	s.setRefreshCookie(w, newRefreshToken)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]string{
			"access_token": accessToken,
		},
	})
}
