package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oplab/lab400/internal/auth"
	"github.com/oplab/lab400/internal/database"
	"github.com/oplab/lab400/internal/database/repository"
)

func newAuthenticator(t *testing.T) (*auth.Authenticator, *repository.UserRepo) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedDefaults(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	users := repository.NewUserRepo(db)
	return auth.NewAuthenticator(users), users
}

func TestAuthenticateSeededUser(t *testing.T) {
	a, users := newAuthenticator(t)
	ctx := context.Background()

	u, err := a.Authenticate(ctx, "qsecofr", "QSECOFR")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Username != "QSECOFR" || u.UserClass != "*SECOFR" {
		t.Fatalf("profile = %+v", u)
	}

	stored, _ := users.Get(ctx, "QSECOFR")
	if stored.LastSignon == nil {
		t.Fatal("last signon not stamped")
	}
}

func TestAuthenticateWrongPasswordCountsAttempt(t *testing.T) {
	a, users := newAuthenticator(t)
	ctx := context.Background()

	_, err := a.Authenticate(ctx, "QUSER", "WRONG")
	if !errors.Is(err, auth.ErrBadCredentials) {
		t.Fatalf("err = %v, want ErrBadCredentials", err)
	}
	u, _ := users.Get(ctx, "QUSER")
	if u.SignonAttempts != 1 {
		t.Fatalf("attempts = %d, want 1", u.SignonAttempts)
	}

	// Success resets the counter.
	if _, err := a.Authenticate(ctx, "QUSER", "QUSER"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	u, _ = users.Get(ctx, "QUSER")
	if u.SignonAttempts != 0 {
		t.Fatalf("attempts after success = %d, want 0", u.SignonAttempts)
	}
}

func TestAuthenticateUnknownUserSameError(t *testing.T) {
	a, _ := newAuthenticator(t)

	_, err := a.Authenticate(context.Background(), "NOBODY", "X")
	if !errors.Is(err, auth.ErrBadCredentials) {
		t.Fatalf("err = %v, want ErrBadCredentials", err)
	}
}

func TestAuthenticateDisabledProfile(t *testing.T) {
	a, users := newAuthenticator(t)
	ctx := context.Background()

	if err := users.SetStatus(ctx, "QUSER", "*DISABLED"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	_, err := a.Authenticate(ctx, "QUSER", "QUSER")
	if !errors.Is(err, auth.ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}

func TestPasswordCaseInsensitive(t *testing.T) {
	salt, err := auth.NewSalt()
	if err != nil {
		t.Fatalf("salt: %v", err)
	}
	hash := auth.HashPassword("Secret99", salt)
	if !auth.VerifyPassword("SECRET99", salt, hash) {
		t.Fatal("upper-cased password rejected")
	}
	if !auth.VerifyPassword("secret99", salt, hash) {
		t.Fatal("lower-cased password rejected")
	}
	if auth.VerifyPassword("other", salt, hash) {
		t.Fatal("wrong password accepted")
	}
}
