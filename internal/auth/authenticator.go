package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/oplab/lab400/internal/database/repository"
)

// ErrBadCredentials is returned for any unknown-user or wrong-password
// combination. The message is deliberately identical for both cases.
var ErrBadCredentials = errors.New("user ID or password not valid")

// ErrDisabled is returned when the profile exists but is *DISABLED.
var ErrDisabled = errors.New("user profile is disabled")

// Authenticator verifies credentials against stored user profiles.
type Authenticator struct {
	users *repository.UserRepo
}

func NewAuthenticator(users *repository.UserRepo) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate verifies the credentials and returns the matching profile.
// Failed attempts are counted on the profile; successful sign-on resets
// the counter and stamps last_signon.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*repository.UserProfile, error) {
	username = strings.ToUpper(strings.TrimSpace(username))
	if username == "" {
		return nil, ErrBadCredentials
	}
	u, err := a.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrBadCredentials
	}
	if u.Status == "*DISABLED" {
		return nil, ErrDisabled
	}
	if !VerifyPassword(password, u.Salt, u.PasswordHash) {
		_ = a.users.RecordFailedSignon(ctx, username)
		return nil, ErrBadCredentials
	}
	if err := a.users.RecordSignon(ctx, username); err != nil {
		return nil, err
	}
	return u, nil
}
