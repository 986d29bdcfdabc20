package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

var _ port.CredentialSource = (*Session)(nil)

// Session holds the signed-in admin and the bearer credential.
//
// It is passed explicitly to the API client; there is no global session.
type Session struct {
	mu            sync.RWMutex
	state         domain.SessionState
	vault         port.SessionVault
	now           func() time.Time
	onAuthFailure []func()
}

type SessionOpt func(*Session) error

func VaultOpt(v port.SessionVault) SessionOpt {
	return func(s *Session) error {
		if v == nil {
			return errors.New("session vault is nil")
		}
		s.vault = v
		return nil
	}
}

func SessionClockOpt(now func() time.Time) SessionOpt {
	return func(s *Session) error {
		if now == nil {
			return errors.New("now func is nil")
		}
		s.now = now
		return nil
	}
}

func NewSession(opts ...SessionOpt) (*Session, error) {
	const op = "NewSession"

	s := &Session{now: time.Now}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return s, nil
}

// Restore loads the session persisted by a previous process.
func (s *Session) Restore() error {
	const op = "Session.Restore"

	if s.vault == nil {
		return nil
	}
	state, err := s.vault.Load()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// Set stores a new session and persists it.
func (s *Session) Set(state domain.SessionState) error {
	const op = "Session.Set"

	if state.ExpiresAt.IsZero() {
		state.ExpiresAt = tokenExpiry(state.Tokens.AccessToken)
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	if s.vault == nil {
		return nil
	}
	if err := s.vault.Save(state); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Session) SetAdmin(a domain.Admin) {
	s.mu.Lock()
	s.state.Admin = a
	s.mu.Unlock()
}

func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) AdminName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Admin.Username != "" {
		return s.state.Admin.Username
	}
	return s.state.Admin.Email
}

// Token returns the bearer credential or domain.ErrUnauthorized when
// there is none or it has expired.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Empty() || s.state.Expired(s.now()) {
		return "", domain.ErrUnauthorized
	}
	return s.state.Tokens.AccessToken, nil
}

// Clear wipes the session, persisted copy included.
func (s *Session) Clear() {
	const op = "Session.Clear"

	s.mu.Lock()
	s.state = domain.SessionState{}
	s.mu.Unlock()

	if s.vault == nil {
		return
	}
	if err := s.vault.Delete(); err != nil {
		slog.Warn("failed to delete stored session", "op", op, "err", err)
	}
}

// OnAuthFailure registers fn to run when the API rejects the credential.
// The dashboard uses it to redirect to login.
func (s *Session) OnAuthFailure(fn func()) {
	s.mu.Lock()
	s.onAuthFailure = append(s.onAuthFailure, fn)
	s.mu.Unlock()
}

func (s *Session) Invalidate() {
	s.Clear()

	s.mu.RLock()
	handlers := append([]func(){}, s.onAuthFailure...)
	s.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}

// tokenExpiry reads the exp claim without verifying the signature.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Auth runs the sign-in flows against the API and keeps the session.
type Auth struct {
	session *Session
	client  port.AuthClient
}

func NewAuth(session *Session, client port.AuthClient) *Auth {
	return &Auth{session: session, client: client}
}

func (a *Auth) Login(ctx context.Context, creds domain.Credentials) error {
	const op = "Auth.Login"

	creds.Email = strings.TrimSpace(creds.Email)
	fe := domain.FieldErrors{}
	if creds.Email == "" {
		fe["email"] = "is required"
	}
	if creds.Password == "" {
		fe["password"] = "is required"
	}
	if len(fe) != 0 {
		return fmt.Errorf("%s: %w", op, &domain.ValidationError{Fields: fe})
	}

	state, err := a.client.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if state.Empty() {
		return fmt.Errorf("%s: %w", op, domain.ErrUnauthorized)
	}
	if err := a.session.Set(state); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *Auth) Logout() {
	a.session.Clear()
}

// Profile loads the signed-in admin and refreshes the cached copy.
func (a *Auth) Profile(ctx context.Context) (domain.Admin, error) {
	const op = "Auth.Profile"

	admin, err := a.client.Profile(ctx)
	if err != nil {
		return domain.Admin{}, fmt.Errorf("%s: %w", op, err)
	}
	a.session.SetAdmin(admin)
	return admin, nil
}

func (a *Auth) ChangePassword(ctx context.Context, current, next string) error {
	const op = "Auth.ChangePassword"

	fe := domain.FieldErrors{}
	if current == "" {
		fe["currentPassword"] = "is required"
	}
	if len(next) < domain.PasswordMinLength {
		fe["newPassword"] = fmt.Sprintf(
			"must be at least %d characters", domain.PasswordMinLength,
		)
	}
	if len(fe) != 0 {
		return fmt.Errorf("%s: %w", op, &domain.ValidationError{Fields: fe})
	}

	if err := a.client.ChangePassword(ctx, current, next); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
