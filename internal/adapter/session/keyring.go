package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
	"github.com/zalando/go-keyring"
)

var _ port.SessionVault = (*KeyringVault)(nil)

const (
	DefaultService = "ecom-admin"
	DefaultUser    = "session"
)

// storedSession is the keyring record. It is versioned so that a layout
// change drops old records instead of failing to load them.
type storedSession struct {
	Version      int       `json:"v"`
	AdminID      string    `json:"adminId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitzero"`
}

const storedVersion = 1

// KeyringVault keeps the session in the OS credential store.
type KeyringVault struct {
	service string
	user    string
}

func NewKeyringVault(service, user string) KeyringVault {
	if service == "" {
		service = DefaultService
	}
	if user == "" {
		user = DefaultUser
	}
	return KeyringVault{service: service, user: user}
}

// Load returns an empty state when nothing is stored.
func (v KeyringVault) Load() (domain.SessionState, error) {
	const op = "KeyringVault.Load"
	log := slog.With("op", op)

	secret, err := keyring.Get(v.service, v.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return domain.SessionState{}, nil
	}
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("%s: %w", op, err)
	}

	var rec storedSession
	if err := json.Unmarshal([]byte(secret), &rec); err != nil || rec.Version != storedVersion {
		log.Warn("dropping unreadable session record", "err", err)
		return domain.SessionState{}, v.Delete()
	}

	return domain.SessionState{
		Admin: domain.Admin{
			ID:       rec.AdminID,
			Username: rec.Username,
			Email:    rec.Email,
			Role:     rec.Role,
		},
		Tokens: domain.Tokens{
			AccessToken:  rec.AccessToken,
			RefreshToken: rec.RefreshToken,
		},
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (v KeyringVault) Save(s domain.SessionState) error {
	const op = "KeyringVault.Save"

	data, err := json.Marshal(storedSession{
		Version:      storedVersion,
		AdminID:      s.Admin.ID,
		Username:     s.Admin.Username,
		Email:        s.Admin.Email,
		Role:         s.Admin.Role,
		AccessToken:  s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := keyring.Set(v.service, v.user, string(data)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (v KeyringVault) Delete() error {
	const op = "KeyringVault.Delete"

	err := keyring.Delete(v.service, v.user)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
