package directory

import (
	"context"
	"crypto/subtle"
	"sort"
	"strings"
	"sync"
	"time"
)

type mockAccount struct {
	user     User
	password string
}

// Mock 是内存中的模拟目录，用于开发环境
type Mock struct {
	mu       sync.RWMutex
	accounts map[string]*mockAccount
}

func NewMock() *Mock {
	m := &Mock{accounts: make(map[string]*mockAccount)}

	lastLogon := time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second)
	pwdSet := time.Now().AddDate(0, -1, 0).UTC().Truncate(time.Second)

	m.Add(User{
		Username:        "jdoe",
		DisplayName:     "John Doe",
		Email:           "john.doe@example.local",
		Department:      "IT",
		Title:           "System Administrator",
		DN:              "CN=John Doe,OU=IT,DC=example,DC=local",
		Groups:          []string{"Domain Users", "IT Admins"},
		Enabled:         true,
		LastLogon:       &lastLogon,
		PasswordLastSet: &pwdSet,
	}, "password123")
	m.Add(User{
		Username:    "asmith",
		DisplayName: "Alice Smith",
		Email:       "alice.smith@example.local",
		Department:  "Engineering",
		Title:       "Developer",
		DN:          "CN=Alice Smith,OU=Engineering,DC=example,DC=local",
		Groups:      []string{"Domain Users", "Developers"},
		Enabled:     true,
	}, "password123")
	m.Add(User{
		Username:    "bwilson",
		DisplayName: "Bob Wilson",
		Email:       "bob.wilson@example.local",
		Department:  "Sales",
		Title:       "Account Manager",
		DN:          "CN=Bob Wilson,OU=Sales,DC=example,DC=local",
		Groups:      []string{"Domain Users"},
		Enabled:     false,
	}, "password123")

	return m
}

// Add 添加或替换一个账户
func (m *Mock) Add(user User, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts[strings.ToLower(user.Username)] = &mockAccount{user: user, password: password}
}

func (m *Mock) Search(ctx context.Context, query string) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	users := []User{}
	for _, acc := range m.accounts {
		u := acc.user
		if q == "" ||
			strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.DisplayName), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			users = append(users, u)
		}
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (m *Mock) GetUser(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, ErrNotFound
	}
	u := acc.user
	return &u, nil
}

func (m *Mock) Authenticate(ctx context.Context, username string, password string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok || password == "" || subtle.ConstantTimeCompare([]byte(acc.password), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if !acc.user.Enabled {
		return nil, ErrDisabled
	}
	u := acc.user
	return &u, nil
}
