package domain

import "time"

type (
	Credentials struct {
		Email    string
		Password string
	}

	Admin struct {
		ID        string
		Username  string
		Email     string
		Role      string
		IsActive  bool
		LastLogin *time.Time
		CreatedAt time.Time
	}

	Tokens struct {
		AccessToken  string
		RefreshToken string
	}

	// SessionState is what survives a process restart.
	SessionState struct {
		Admin     Admin
		Tokens    Tokens
		ExpiresAt time.Time
	}
)

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"

	PasswordMinLength = 6
)

func (a Admin) EntityID() string { return a.ID }

func (a Admin) IsSuperAdmin() bool { return a.Role == RoleSuperAdmin }

func (s SessionState) Empty() bool {
	return s.Tokens.AccessToken == ""
}

// Expired reports whether the access token is past its expiry.
// A zero ExpiresAt never expires locally.
func (s SessionState) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
