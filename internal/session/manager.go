package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/resto-dashboard/internal/models"
)

const bearerPrefix = "Bearer "

// Session is the authenticated user's token and profile.
type Session struct {
	Token string       `json:"-"`
	User  *models.User `json:"user,omitempty"`
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Manager owns the process-wide session and its persisted token slot.
type Manager interface {
	Restore(ctx context.Context) (Session, error)
	Login(ctx context.Context, token string, user *models.User) error
	Logout(ctx context.Context) error
	Current() Session
	Token() string
	Authenticated() bool
	Subscribe(fn func(Session)) (unsubscribe func())
}

type manager struct {
	storage Storage
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	current  Session
	restored bool

	listenersMu sync.Mutex
	listeners   map[int]func(Session)
	nextID      int
}

// NewManager builds a session manager persisting the token in storage.
func NewManager(storage Storage, logger zerolog.Logger) Manager {
	return &manager{
		storage:   storage,
		logger:    logger.With().Str("component", "session_manager").Logger(),
		now:       time.Now,
		listeners: map[int]func(Session){},
	}
}

// Restore reads the persisted token once. Expired JWTs are discarded.
func (m *manager) Restore(ctx context.Context) (Session, error) {
	m.mu.Lock()
	if m.restored {
		current := m.current
		m.mu.Unlock()
		return current, nil
	}
	m.restored = true
	m.mu.Unlock()

	token, err := m.storage.Load(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("restore session: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, nil
	}

	if tokenExpired(token, m.now()) {
		m.logger.Info().Msg("persisted token expired, clearing slot")
		if err := m.storage.Clear(ctx); err != nil {
			return Session{}, fmt.Errorf("clear expired session: %w", err)
		}
		return Session{}, nil
	}

	restored := Session{Token: token}
	m.set(restored)
	m.logger.Info().Msg("session restored from storage")
	return restored, nil
}

func (m *manager) Login(ctx context.Context, token string, user *models.User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("login: empty token")
	}
	if err := m.storage.Save(ctx, token); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	m.set(Session{Token: token, User: user})
	event := m.logger.Info()
	if user != nil {
		event = event.Str("email", user.Email)
	}
	event.Msg("session started")
	return nil
}

// Logout clears the session and then the slot. Calling it on an empty session is
// a no-op apart from clearing the slot again. The in-memory session ends even
// when the slot cannot be cleared.
func (m *manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	wasActive := m.current.Authenticated()
	m.current = Session{}
	m.mu.Unlock()

	if wasActive {
		m.logger.Info().Msg("session cleared")
		m.notify(Session{})
	}

	if err := m.storage.Clear(ctx); err != nil {
		m.logger.Error().Err(err).Msg("failed to clear session slot")
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (m *manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *manager) Token() string {
	return m.Current().Token
}

func (m *manager) Authenticated() bool {
	return m.Current().Authenticated()
}

func (m *manager) Subscribe(fn func(Session)) func() {
	m.listenersMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.listenersMu.Unlock()

	return func() {
		m.listenersMu.Lock()
		delete(m.listeners, id)
		m.listenersMu.Unlock()
	}
}

func (m *manager) set(s Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	m.notify(s)
}

func (m *manager) notify(s Session) {
	m.listenersMu.Lock()
	fns := make([]func(Session), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenersMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// tokenExpired reports whether token is a JWT whose exp claim lies before now.
// Opaque tokens never expire client-side.
func tokenExpired(token string, now time.Time) bool {
	token = strings.TrimPrefix(token, bearerPrefix)

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
