package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxEmailLength    = 254
	minEmailLength    = 3
	maxUsernameLength = 150
	minUsernameLength = 3
	minPasswordLength = 8
	bcryptCost        = 12
)

var (
	ErrInvalidEmail          = fmt.Errorf("email address is not valid")
	ErrEmailLength           = fmt.Errorf("email address is too long or too short, max length: %d, min length: %d", maxEmailLength, minEmailLength)
	ErrUsernameLength        = fmt.Errorf("username is too long or too short, max length: %d, min length: %d", maxUsernameLength, minUsernameLength)
	ErrPasswordTooShort      = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInternalError         = errors.New("internal Server Error")
	ErrInvalidOldPassword    = errors.New("invalid old password")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	HashToken    string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Service interface {
	Register(ctx context.Context, email, username, password string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error)
	ChangePasswordWithOldPassword(ctx context.Context, userID, oldPassword, newPassword string) error
	UpsertAdmin(ctx context.Context, username, email, password string) (*User, bool, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

type service struct {
	repo Repository
}

func NewUserService(repo Repository) Service {
	return &service{repo: repo}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

// generateHashToken returns the per-user secret mixed into refresh tokens;
// rotating it invalidates every refresh token issued before.
func generateHashToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("could not generate hash token: %w", err)
	}
	return hex.EncodeToString(token), nil
}

func validateEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}
	if len(email) > maxEmailLength || len(email) <= minEmailLength {
		return ErrEmailLength
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *service) Register(ctx context.Context, email, username, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = strings.Split(email, "@")[0]
	}
	if len(username) > maxUsernameLength || len(username) < minUsernameLength {
		return nil, ErrUsernameLength
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	existingUser, err := s.repo.userExistsByLoginOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		log.Printf("[User] lookup before register failed: %v", err)
		return nil, ErrInternalError
	}
	if existingUser != nil {
		if existingUser.Username == username {
			return nil, ErrUsernameAlreadyExists
		}
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		log.Printf("[User] hashing password failed: %v", err)
		return nil, ErrInternalError
	}
	hashToken, err := generateHashToken()
	if err != nil {
		log.Printf("[User] %v", err)
		return nil, ErrInternalError
	}

	user := &User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		HashToken:    hashToken,
	}
	if err := s.repo.createUser(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameAlreadyExists) || errors.Is(err, ErrEmailAlreadyExists) {
			return nil, err
		}
		log.Printf("[User] creating user failed: %v", err)
		return nil, ErrInternalError
	}
	return user, nil
}

func (s *service) ChangePasswordWithOldPassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.getUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if !DoPasswordsMatch(user.PasswordHash, oldPassword) {
		return ErrInvalidOldPassword
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	return s.changePassword(ctx, userID, newPassword)
}

func (s *service) changePassword(ctx context.Context, userID, newPassword string) error {
	newPasswordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}
	newHashToken, err := generateHashToken()
	if err != nil {
		return err
	}
	if err := s.repo.updateUserPasswordAndHashToken(ctx, userID, newPasswordHash, newHashToken); err != nil {
		return fmt.Errorf("could not update user password: %w", err)
	}
	return nil
}

// UpsertAdmin creates the admin account or resets its email and password when the
// username is already taken. The boolean reports whether a new row was inserted.
func (s *service) UpsertAdmin(ctx context.Context, username, email, password string) (*User, bool, error) {
	if err := validateEmailAddress(email); err != nil {
		return nil, false, err
	}
	if len(username) > maxUsernameLength || len(username) < minUsernameLength {
		return nil, false, ErrUsernameLength
	}
	if err := validatePassword(password); err != nil {
		return nil, false, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("could not hash password: %w", err)
	}
	hashToken, err := generateHashToken()
	if err != nil {
		return nil, false, err
	}

	admin := &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		HashToken:    hashToken,
		IsAdmin:      true,
	}
	created, err := s.repo.saveAdmin(ctx, admin)
	if err != nil {
		return nil, false, err
	}
	return admin, created, nil
}

func (s *service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.getUserByID(ctx, userID)
}

func (s *service) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (*User, error) {
	return s.repo.getUserByLoginOrEmail(ctx, loginOrEmail)
}

func (s *service) ListUserIDs(ctx context.Context) ([]string, error) {
	return s.repo.listUserIDs(ctx)
}

func DoPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(currPassword))
	return err == nil
}
