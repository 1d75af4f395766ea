package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/pastoralhub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	uidKey      = "uid"
	emailKey    = "email"
	authTimeKey = "auth_time"
	moduleKey   = "module"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in user injected into r.Context().
// Profile is re-read from the store on every request.
type SessionUser struct {
	ID       string
	Email    string
	Profile  models.User
	Module   models.Module
	AuthTime time.Time
}

// SignedInWithin reports whether the identity sign-in happened within d.
func (u *SessionUser) SignedInWithin(d time.Duration) bool {
	return !u.AuthTime.IsZero() && time.Since(u.AuthTime) <= d
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context, bypassing the cookie.
// Intended for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// UserFetcher loads the current profile for an identity uid.
// It returns nil when no profile exists.
type UserFetcher interface {
	FetchUser(ctx context.Context, uid string) *models.User
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the per-request profile refresh.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds the cookie store.
//
// In production (secure=true), cookies are Secure + SameSite=None.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))

	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher installs the profile loader used by LoadSessionUser.
func (m *SessionManager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// SignIn starts a session for the identity and stores the active module.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, uid, email string, module models.Module) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[uidKey] = uid
	sess.Values[emailKey] = email
	sess.Values[authTimeKey] = time.Now().Unix()
	sess.Values[moduleKey] = string(module)
	return sess.Save(r, w)
}

// SetModule switches the active module of the current session.
func (m *SessionManager) SetModule(w http.ResponseWriter, r *http.Request, module models.Module) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[moduleKey] = string(module)
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are signed in and
// still have a profile. The active module is re-validated against the fresh
// profile on every request; when it is no longer allowed the session falls
// back to the first allowed module.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r, m.name)
		if err != nil {
			// A tampered or stale-key cookie decodes to an empty session.
			if cerr, ok := err.(securecookie.Error); ok && cerr.IsDecode() {
				m.log.Debug("ignoring undecodable session cookie", zap.Error(err))
			} else {
				m.log.Warn("session load failed", zap.Error(err))
			}
		}
		uid := getString(sess, uidKey)
		if uid == "" || m.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		profile := m.fetcher.FetchUser(r.Context(), uid)
		if profile == nil {
			m.log.Warn("session without profile; treating as signed out", zap.String("uid", uid))
			next.ServeHTTP(w, r)
			return
		}

		module := models.Module(getString(sess, moduleKey))
		if !profile.HasModule(module) {
			module = profile.DefaultModule()
			sess.Values[moduleKey] = string(module)
			if err := sess.Save(r, w); err != nil {
				m.log.Warn("session module fallback not saved", zap.Error(err))
			}
		}

		u := &SessionUser{
			ID:       uid,
			Email:    getString(sess, emailKey),
			Profile:  *profile,
			Module:   module,
			AuthTime: getUnix(sess, authTimeKey),
		}
		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn answers 401 unless LoadSessionUser found a user.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return RequireSignedIn(next)
}

// RequireSignedIn answers 401 unless a user is in context.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "sign in required"})
	})
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

// getUnix reads a unix-seconds value.
func getUnix(s *sessions.Session, key string) time.Time {
	if v, ok := s.Values[key].(int64); ok {
		return time.Unix(v, 0)
	}
	return time.Time{}
}
