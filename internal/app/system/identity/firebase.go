package identity

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// FirebaseConfig locates the Firebase project.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string // service-account JSON; empty uses application default credentials
	APIKey          string // web API key, required for password sign-in
}

// Firebase is a Provider backed by Firebase Authentication. Account
// management goes through the Admin SDK; password sign-in goes through the
// Identity Toolkit REST API, which the Admin SDK does not expose.
type Firebase struct {
	auth    *auth.Client
	toolkit *identitytoolkit.Service
}

// NewFirebase connects the Admin SDK and the Identity Toolkit client.
func NewFirebase(ctx context.Context, cfg FirebaseConfig) (*Firebase, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read firebase credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("parse firebase credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	} else if creds, _ := google.FindDefaultCredentials(ctx, cloudPlatformScope); creds != nil {
		opts = append(opts, option.WithCredentials(creds))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firebase auth client: %w", err)
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create identity toolkit client: %w", err)
	}
	return &Firebase{auth: client, toolkit: toolkit}, nil
}

func (p *Firebase) SignIn(ctx context.Context, email, password string) (Identity, error) {
	resp, err := p.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             normEmail(email),
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return Identity{}, mapToolkitError(err)
	}
	return Identity{UID: resp.LocalId, Email: resp.Email}, nil
}

func (p *Firebase) CreateIdentity(ctx context.Context, email, password string) (Identity, error) {
	if err := CheckPassword(password); err != nil {
		return Identity{}, err
	}
	params := (&auth.UserToCreate{}).Email(normEmail(email)).Password(password)
	rec, err := p.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return Identity{}, ErrEmailAlreadyExists
		}
		return Identity{}, err
	}
	return Identity{UID: rec.UID, Email: rec.Email}, nil
}

func (p *Firebase) ChangePassword(ctx context.Context, uid, newPassword string) error {
	if err := CheckPassword(newPassword); err != nil {
		return err
	}
	_, err := p.auth.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Password(newPassword))
	return err
}

func (p *Firebase) DeleteIdentity(ctx context.Context, uid string) error {
	err := p.auth.DeleteUser(ctx, uid)
	if err != nil && auth.IsUserNotFound(err) {
		return nil
	}
	return err
}

// mapToolkitError turns Identity Toolkit error codes into package errors.
// Anything unrecognised passes through with the provider's message.
func mapToolkitError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Message {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "MISSING_PASSWORD":
		return ErrInvalidCredentials
	case "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		return ErrRequiresRecentLogin
	}
	return err
}
