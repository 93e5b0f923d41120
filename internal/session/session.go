package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fileconsole/internal/model"
)

// Manager holds the current session explicitly: read persisted state at
// Init, clear it at Logout. Login fabricates the session locally — any
// non-empty credentials succeed and the role is derived solely from the
// username. This is a demo credential model; the token is a well-formed
// HS256 JWT signed with a local, non-secret key, and nothing verifies the
// caller's identity.
type Manager struct {
	mu        sync.RWMutex
	statePath string
	secret    []byte
	ttl       time.Duration
	state     *model.SessionState
}

func NewManager(statePath string, secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		statePath: statePath,
		secret:    []byte(secret),
		ttl:       ttl,
	}
}

// Init loads persisted session state. A missing or unreadable state file
// just means logged out, never an error.
func (m *Manager) Init() {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		return
	}

	var state model.SessionState
	if err := json.Unmarshal(data, &state); err != nil || state.Token == "" {
		return
	}

	m.mu.Lock()
	m.state = &state
	m.mu.Unlock()
}

// Login accepts any non-empty credentials, mints a bearer token and user
// record, persists both, and returns them. Username "admin" (case
// insensitive) gets the admin role; everyone else is a regular user.
func (m *Manager) Login(username string, password string) (model.SessionState, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return model.SessionState{}, model.ErrEmptyCredentials
	}

	role := model.RoleUser
	if strings.EqualFold(username, "admin") {
		role = model.RoleAdmin
	}

	user := model.User{
		ID:       "user-" + uuid.NewString(),
		Username: username,
		Role:     role,
	}

	token, err := m.signToken(user)
	if err != nil {
		return model.SessionState{}, err
	}

	state := model.SessionState{Token: token, User: user}

	m.mu.Lock()
	m.state = &state
	m.mu.Unlock()

	if err := m.persist(state); err != nil {
		return model.SessionState{}, err
	}
	return state, nil
}

// Logout clears the in-memory session and removes the state file.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.state = nil
	m.mu.Unlock()

	if err := os.Remove(m.statePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Token returns the persisted bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == nil {
		return ""
	}
	return m.state.Token
}

// Current returns the logged-in user, if any.
func (m *Manager) Current() (model.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state == nil {
		return model.User{}, false
	}
	return m.state.User, true
}

// IsAuthenticated is true iff a token is present.
func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// IsAdmin reflects the persisted role.
func (m *Manager) IsAdmin() bool {
	user, ok := m.Current()
	return ok && user.Role == model.RoleAdmin
}

func (m *Manager) signToken(user model.User) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    user.Username,
		"userId": user.ID,
		"role":   user.Role,
		"iat":    now.Unix(),
		"exp":    now.Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

func (m *Manager) persist(state model.SessionState) error {
	if err := os.MkdirAll(filepath.Dir(m.statePath), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.statePath, data, 0o600)
}
