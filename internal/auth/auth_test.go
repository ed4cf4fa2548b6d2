package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestStack(t *testing.T) (user.Service, *user.User, *JWTManager, Service) {
	t.Helper()
	users := user.NewUserService(&user.MockRepository{})
	u, err := users.Register(context.Background(), "ama@example.com", "ama", "s3cret-pass")
	require.NoError(t, err)
	jwtManager := NewJWTManager(testSecret, time.Minute, time.Hour)
	return users, u, jwtManager, NewAuthService(users, jwtManager)
}

func TestJWTManager_AccessToken(t *testing.T) {
	jwtManager := NewJWTManager(testSecret, time.Minute, time.Hour)

	token, err := jwtManager.GenerateAccessJWT("user-1")
	require.NoError(t, err)
	userID, err := jwtManager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	other := NewJWTManager("another-secret", time.Minute, time.Hour)
	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidJWTToken)

	jwtManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := jwtManager.GenerateAccessJWT("user-1")
	require.NoError(t, err)
	_, err = jwtManager.ValidateAccessToken(expired)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestJWTManager_RefreshTokenBoundToHashToken(t *testing.T) {
	jwtManager := NewJWTManager(testSecret, 0, 0)
	assert.Equal(t, defaultJWTRefreshDuration, jwtManager.RefreshTTL())

	token, err := jwtManager.GenerateRefreshJWT("user-1", "hash-a")
	require.NoError(t, err)

	userID, err := jwtManager.ExtractUserIDFromRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	assert.NoError(t, jwtManager.ValidateRefreshToken(token, "hash-a"))
	assert.ErrorIs(t, jwtManager.ValidateRefreshToken(token, "hash-b"), ErrInvalidJWTRefreshToken)
}

func TestAccessMiddleware(t *testing.T) {
	_, u, jwtManager, svc := newTestStack(t)

	var seen string
	protected := svc.JWTAccessTokenMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context().Value("userID").(string)
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/protected/profile", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)
		return w.Code
	}

	token, err := jwtManager.GenerateAccessJWT(u.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, call("Bearer "+token))
	assert.Equal(t, u.ID, seen)

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call(token))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer garbage"))

	notUUID, err := jwtManager.GenerateAccessJWT("not-a-uuid")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+notUUID))

	unknown, err := jwtManager.GenerateAccessJWT("7d3f2c0e-6f0b-4d4b-9a53-3c1b2f0f9b11")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+unknown))
}

func TestLoginRefreshLogout(t *testing.T) {
	users, u, jwtManager, svc := newTestStack(t)
	handler := NewHandler(svc, jwtManager.RefreshTTL())

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		handler.HandleLogin(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, login(`{"email_or_login":"ama","password":"wrong-pass"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, login(`{"email_or_login":"nobody","password":"s3cret-pass"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(`{"email_or_login":"ama"}`).Code)

	w := login(`{"email_or_login":"ama@example.com","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, u.ID, response.Data["user_id"])
	userID, err := jwtManager.ValidateAccessToken(response.Data["access_token"])
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	refreshCookie := cookies[0]
	assert.Equal(t, refreshCookieName, refreshCookie.Name)
	assert.True(t, refreshCookie.HttpOnly)
	assert.Equal(t, refreshCookiePath, refreshCookie.Path)

	refresh := func(cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, refreshCookiePath, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		svc.JWTRefreshTokenMiddleware()(http.HandlerFunc(handler.RefreshAccessToken)).ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, refresh(refreshCookie).Code)
	assert.Equal(t, http.StatusUnauthorized, refresh(nil).Code)

	// Changing the password rotates the hash token and revokes the refresh token.
	require.NoError(t, users.ChangePasswordWithOldPassword(context.Background(), u.ID, "s3cret-pass", "new-s3cret"))
	assert.Equal(t, http.StatusUnauthorized, refresh(refreshCookie).Code)

	w = httptest.NewRecorder()
	handler.HandleLogout(w, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.True(t, cleared[0].MaxAge < 0)
}
