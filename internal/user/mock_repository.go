package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockRepository keeps users in memory and enforces unique usernames and emails.
type MockRepository struct {
	mu    sync.Mutex
	Users []*User
}

func (m *MockRepository) find(match func(*User) bool) (*User, error) {
	for _, u := range m.Users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) createUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Username == user.Username {
			return ErrUsernameAlreadyExists
		}
		if u.Email == user.Email {
			return ErrEmailAlreadyExists
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.Users = append(m.Users, &copied)
	return nil
}

func (m *MockRepository) saveAdmin(_ context.Context, user *User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.Users {
		if u.Username == user.Username {
			u.Email = user.Email
			u.PasswordHash = user.PasswordHash
			u.HashToken = user.HashToken
			u.IsAdmin = true
			u.UpdatedAt = time.Now().UTC()
			user.ID = u.ID
			user.CreatedAt = u.CreatedAt
			user.UpdatedAt = u.UpdatedAt
			return false, nil
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.Users = append(m.Users, &copied)
	return true, nil
}

func (m *MockRepository) userExistsByLoginOrEmail(_ context.Context, username, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u *User) bool { return u.Username == username || u.Email == email })
}

func (m *MockRepository) getUserByLoginOrEmail(_ context.Context, loginOrEmail string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u *User) bool { return u.Username == loginOrEmail || u.Email == loginOrEmail })
}

func (m *MockRepository) getUserByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(u *User) bool { return u.ID == id })
}

func (m *MockRepository) updateUserPasswordAndHashToken(_ context.Context, userID, newPasswordHash, newHashToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.ID == userID {
			u.PasswordHash = newPasswordHash
			u.HashToken = newHashToken
			u.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrUserNotFound
}

func (m *MockRepository) listUserIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*User, len(m.Users))
	copy(users, m.Users)
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}
