package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidJWTToken        = errors.New("JWT token is invalid")
	ErrExpiredJWTToken        = errors.New("JWT token is expired")
	ErrInvalidJWTRefreshToken = errors.New("JWT Refresh token is invalid")
)

const defaultJWTRefreshDuration = 720 * time.Hour
const defaultJWTDuration = 10 * time.Minute

type JWTManagerInterface interface {
	GenerateAccessJWT(userID string) (string, error)
	ValidateAccessToken(tokenString string) (string, error)
	GenerateRefreshJWT(userID, tokenHash string) (string, error)
	ValidateRefreshToken(tokenString, tokenHash string) error
	ExtractUserIDFromRefreshToken(tokenString string) (string, error)
	RefreshTTL() time.Duration
}

type AccessTokenCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

// RefreshTokenCustomClaims binds the token to the user's current hash token through
// CusKey, so rotating the hash token revokes the refresh token.
type RefreshTokenCustomClaims struct {
	UserID string `json:"user_id"`
	CusKey string `json:"cus_key"`
	jwt.StandardClaims
}

type JWTManager struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	if accessTTL <= 0 {
		accessTTL = defaultJWTDuration
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultJWTRefreshDuration
	}
	return &JWTManager{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (j *JWTManager) RefreshTTL() time.Duration {
	return j.refreshTTL
}

func (j *JWTManager) generateCustomKey(userID string, tokenHash string) string {
	h := hmac.New(sha256.New, []byte(tokenHash))
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

func (j *JWTManager) standardClaims(userID string, duration time.Duration) jwt.StandardClaims {
	now := j.now()
	return jwt.StandardClaims{
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(duration).Unix(),
	}
}

func (j *JWTManager) GenerateRefreshJWT(userID, tokenHash string) (string, error) {
	claims := &RefreshTokenCustomClaims{
		UserID:         userID,
		CusKey:         j.generateCustomKey(userID, tokenHash),
		StandardClaims: j.standardClaims(userID, j.refreshTTL),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

func (j *JWTManager) GenerateAccessJWT(userID string) (string, error) {
	claims := &AccessTokenCustomClaims{
		UserID:         userID,
		StandardClaims: j.standardClaims(userID, j.accessTTL),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

func (j *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidJWTToken
	}
	return []byte(j.secret), nil
}

func parseError(err error) error {
	var validationErr *jwt.ValidationError
	if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
		return ErrExpiredJWTToken
	}
	return ErrInvalidJWTToken
}

func (j *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenCustomClaims{}, j.keyFunc)
	if err != nil {
		return "", parseError(err)
	}

	claims, ok := token.Claims.(*AccessTokenCustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidJWTToken
	}
	return claims.UserID, nil
}

func (j *JWTManager) parseRefresh(tokenString string) (*RefreshTokenCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshTokenCustomClaims{}, j.keyFunc)
	if err != nil {
		return nil, parseError(err)
	}

	claims, ok := token.Claims.(*RefreshTokenCustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}

func (j *JWTManager) ExtractUserIDFromRefreshToken(tokenString string) (string, error) {
	claims, err := j.parseRefresh(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (j *JWTManager) ValidateRefreshToken(tokenString, tokenHash string) error {
	claims, err := j.parseRefresh(tokenString)
	if err != nil {
		return err
	}

	expected := j.generateCustomKey(claims.UserID, tokenHash)
	if !hmac.Equal([]byte(claims.CusKey), []byte(expected)) {
		return ErrInvalidJWTRefreshToken
	}
	return nil
}
