package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/user"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInternalError      = errors.New("internal Server Error")
)

// UserService is the part of user.Service that authentication depends on.
type UserService interface {
	GetUserByID(ctx context.Context, userID string) (*user.User, error)
	GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*user.User, error)
}

type Service interface {
	Login(ctx context.Context, emailOrLogin, password string) (*user.User, string, string, error)
	RefreshAccessToken(ctx context.Context, userID string) (string, string, error)
	JWTRefreshTokenMiddleware() func(http.Handler) http.Handler
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	userService UserService
	jwtManager  JWTManagerInterface
}

func NewAuthService(userService UserService, jwtManager JWTManagerInterface) Service {
	return &service{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

func (s *service) lookupUser(ctx context.Context, userID string) (*user.User, error) {
	existingUser, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		log.Printf("[Auth] user lookup failed: %v", err)
		return nil, ErrInternalError
	}
	return existingUser, nil
}

func (s *service) Login(ctx context.Context, emailOrLogin, password string) (*user.User, string, string, error) {
	existingUser, err := s.userService.GetUserByLoginOrEmail(ctx, emailOrLogin)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		log.Printf("[Auth] error when getting user from database: %v", err)
		return nil, "", "", ErrInternalError
	}

	if !user.DoPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokens(existingUser)
	if err != nil {
		return nil, "", "", err
	}
	return existingUser, accessToken, refreshToken, nil
}

func (s *service) RefreshAccessToken(ctx context.Context, userID string) (string, string, error) {
	existingUser, err := s.lookupUser(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return s.issueTokens(existingUser)
}

func (s *service) issueTokens(u *user.User) (string, string, error) {
	accessToken, err := s.jwtManager.GenerateAccessJWT(u.ID)
	if err != nil {
		log.Printf("[Auth] access token generation failed: %v", err)
		return "", "", ErrInternalError
	}
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(u.ID, u.HashToken)
	if err != nil {
		log.Printf("[Auth] refresh token generation failed: %v", err)
		return "", "", ErrInternalError
	}
	return accessToken, refreshToken, nil
}
