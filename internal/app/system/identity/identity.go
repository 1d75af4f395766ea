// Package identity is the boundary to the authentication provider. Profiles
// live in the users collection; identities (email + credential) live with
// the provider and are linked to profiles by uid.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailAlreadyExists  = errors.New("this email is already registered")
	ErrRequiresRecentLogin = errors.New("for security, sign in again before changing your password")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
)

// MinPasswordLength matches the provider's own floor.
const MinPasswordLength = 6

// Identity is an authenticated principal as the provider knows it.
type Identity struct {
	UID   string
	Email string
}

// Provider signs identities in and manages their credentials.
type Provider interface {
	// SignIn verifies email and password.
	SignIn(ctx context.Context, email, password string) (Identity, error)
	// CreateIdentity registers a new identity without signing it in.
	CreateIdentity(ctx context.Context, email, password string) (Identity, error)
	// ChangePassword replaces the credential of uid.
	ChangePassword(ctx context.Context, uid, newPassword string) error
	// DeleteIdentity removes uid. Deleting an unknown uid is not an error.
	DeleteIdentity(ctx context.Context, uid string) error
}

// CheckPassword enforces the provider-independent password floor.
func CheckPassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func normEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
