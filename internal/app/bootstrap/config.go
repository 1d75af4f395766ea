// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/system/suggest"
	"github.com/dalemusser/pastoralhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for PastoralHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: PASTORAL_MONGO_URI, PASTORAL_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "pastoral_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "pastoralhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},

	// Identity
	{Name: "identity_provider", Default: ProviderLocal, Desc: "Identity provider: 'local' or 'firebase'"},
	{Name: "firebase_project_id", Default: "", Desc: "Firebase project ID"},
	{Name: "firebase_credentials_file", Default: "", Desc: "Service-account JSON (blank uses application default credentials)"},
	{Name: "firebase_api_key", Default: "", Desc: "Firebase web API key for password sign-in"},

	// Master bootstrap
	{Name: "bootstrap_email", Default: "", Desc: "Email that becomes the master account on first sign-in"},
	{Name: "bootstrap_name", Default: "Coordenação", Desc: "Display name given to the master account"},

	// Suggestions
	{Name: "gemini_api_key", Default: "", Desc: "Gemini API key (blank disables suggestions)"},
	{Name: "gemini_model", Default: suggest.DefaultModel, Desc: "Gemini model name"},
	{Name: "suggest_rate_per_minute", Default: 6, Desc: "Suggestion requests allowed per user per minute (0 disables the limit)"},

	// Confirmations
	{Name: "redis_addr", Default: "", Desc: "Redis address for pending confirmations (blank keeps them in memory)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "confirm_ttl", Default: "5m", Desc: "How long a deletion confirmation stays valid"},

	{Name: "recent_login_window", Default: "5m", Desc: "How recent a sign-in must be to change the password"},
	{Name: "feed_poll_interval", Default: "30s", Desc: "Snapshot reload interval when change streams are unavailable"},
	{Name: "login_rate_limit", Default: 20, Desc: "Login attempts allowed per IP per minute"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "Age after which audit events are purged (0 keeps them)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, PASTORAL_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PASTORAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),

		IdentityProvider:        strings.ToLower(strings.TrimSpace(appValues.String("identity_provider"))),
		FirebaseProjectID:       appValues.String("firebase_project_id"),
		FirebaseCredentialsFile: appValues.String("firebase_credentials_file"),
		FirebaseAPIKey:          appValues.String("firebase_api_key"),

		BootstrapEmail: strings.TrimSpace(appValues.String("bootstrap_email")),
		BootstrapName:  appValues.String("bootstrap_name"),

		GeminiAPIKey:         appValues.String("gemini_api_key"),
		GeminiModel:          appValues.String("gemini_model"),
		SuggestRatePerMinute: appValues.Int("suggest_rate_per_minute"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		ConfirmTTL:    appValues.Duration("confirm_ttl", 5*time.Minute),

		RecentLoginWindow: appValues.Duration("recent_login_window", 5*time.Minute),
		FeedPollInterval:  appValues.Duration("feed_poll_interval", 30*time.Second),
		LoginRateLimit:    appValues.Int("login_rate_limit"),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),
	}

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("operation timeouts overridden from environment", zap.Int("count", n))
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It rejects a malformed MongoDB URI, an unknown identity provider, a
// Firebase provider without its project or API key, and a missing bootstrap
// email (without one nobody could ever become the master).
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.IdentityProvider {
	case ProviderLocal:
	case ProviderFirebase:
		if appCfg.FirebaseProjectID == "" {
			return errors.New("identity_provider firebase requires firebase_project_id")
		}
		if appCfg.FirebaseAPIKey == "" {
			return errors.New("identity_provider firebase requires firebase_api_key")
		}
	default:
		return fmt.Errorf("unknown identity_provider %q (want %q or %q)", appCfg.IdentityProvider, ProviderLocal, ProviderFirebase)
	}

	if appCfg.BootstrapEmail == "" {
		return errors.New("bootstrap_email is required")
	}

	if coreCfg != nil && coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		logger.Warn("running in prod with the development session key")
	}
	return nil
}
