// internal/app/system/profiles/profiles.go
//
// Package profiles turns an authenticated identity into an application
// profile. It also repairs a missing master profile for the bootstrap email
// and keeps the seed communities in place.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	communitystore "github.com/dalemusser/pastoralhub/internal/app/store/communities"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/app/system/auditlog"
	"github.com/dalemusser/pastoralhub/internal/app/system/identity"
	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrNoProfile is returned when an identity has no profile and is not the
// bootstrap identity. Callers treat it as unauthenticated.
var ErrNoProfile = errors.New("authenticated identity has no profile")

// Manager resolves profiles for identities.
type Manager struct {
	Users          *userstore.Store
	Communities    *communitystore.Store
	Audit          *auditlog.Logger
	Log            *zap.Logger
	BootstrapEmail string
	BootstrapName  string
}

// NewManager builds a Manager. bootstrapName defaults to "Master".
func NewManager(users *userstore.Store, communities *communitystore.Store, audit *auditlog.Logger, logger *zap.Logger, bootstrapEmail, bootstrapName string) *Manager {
	if bootstrapName == "" {
		bootstrapName = "Master"
	}
	return &Manager{
		Users:          users,
		Communities:    communities,
		Audit:          audit,
		Log:            logger,
		BootstrapEmail: strings.ToLower(strings.TrimSpace(bootstrapEmail)),
		BootstrapName:  bootstrapName,
	}
}

// IsBootstrap reports whether email is the designated bootstrap email.
func (m *Manager) IsBootstrap(email string) bool {
	return m.BootstrapEmail != "" && strings.EqualFold(strings.TrimSpace(email), m.BootstrapEmail)
}

// Resolve returns the profile keyed by id.UID.
//
// A missing profile for the bootstrap email is synthesised as the master
// profile; one left under an earlier uid is moved to id.UID. Any other missing profile yields ErrNoProfile. Admin and master
// profiles (and the bootstrap identity) also verify the seed communities.
func (m *Manager) Resolve(ctx context.Context, id identity.Identity) (models.User, error) {
	u, err := m.Users.GetByID(ctx, id.UID)
	switch {
	case err == nil:
		if u.IsAdmin || u.IsMaster || m.IsBootstrap(id.Email) {
			m.seedLogged(ctx, u.ID)
		}
		return u, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return models.User{}, fmt.Errorf("load profile: %w", err)
	}

	if !m.IsBootstrap(id.Email) {
		m.Log.Error("identity authenticated without a profile",
			zap.String("uid", id.UID), zap.String("email", id.Email))
		return models.User{}, ErrNoProfile
	}

	master := models.User{
		ID:             id.UID,
		Username:       id.Email,
		Name:           m.BootstrapName,
		CommunityID:    models.CoordinationCommunityID,
		IsAdmin:        true,
		IsMaster:       true,
		AllowedModules: append([]models.Module(nil), models.AllModules...),
		Status:         models.StatusActive,
	}

	// The bootstrap identity may have been recreated with a new uid. The
	// profile still held under the old uid owns the username, so it is
	// moved to the new uid instead of being written twice.
	old, err := m.Users.GetByUsername(ctx, id.Email)
	switch {
	case err == nil:
		m.Log.Warn("master profile held by a previous uid; re-keying",
			zap.String("old_uid", old.ID), zap.String("uid", id.UID))
		master.Name = old.Name
		master.CreatedAt = old.CreatedAt
		if _, err := m.Users.Delete(ctx, old.ID); err != nil {
			return models.User{}, fmt.Errorf("remove master profile under old uid %s: %w", old.ID, err)
		}
	case errors.Is(err, mongo.ErrNoDocuments):
		m.Log.Warn("master profile missing; recreating", zap.String("uid", id.UID))
	default:
		return models.User{}, fmt.Errorf("look up master profile by username: %w", err)
	}

	u, err = m.Users.Set(ctx, master)
	if err != nil {
		return models.User{}, fmt.Errorf("write master profile: %w", err)
	}
	m.Audit.MasterBootstrapped(ctx, u.ID, u.Username)
	m.seedLogged(ctx, u.ID)
	return u, nil
}

func (m *Manager) seedLogged(ctx context.Context, actorID string) {
	if _, err := m.EnsureSeedCommunities(ctx, actorID); err != nil {
		m.Log.Warn("seed community check failed", zap.Error(err))
	}
}

// EnsureSeedCommunities creates the seed communities that are missing and
// returns how many were created. Existing documents are never modified.
func (m *Manager) EnsureSeedCommunities(ctx context.Context, actorID string) (int, error) {
	existing, err := m.Communities.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list communities: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.ID] = true
	}

	created := 0
	for _, c := range SeedCommunities {
		if have[c.ID] {
			continue
		}
		ok, err := m.Communities.InsertIfAbsent(ctx, c)
		if err != nil {
			return created, fmt.Errorf("seed community %s: %w", c.ID, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		m.Log.Info("seed communities created", zap.Int("count", created))
		m.Audit.CommunitiesSeeded(ctx, actorID, created)
	}
	return created, nil
}
