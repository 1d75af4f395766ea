// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Identity provider names accepted by identity_provider.
const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging, CORS and body limits.
// Everything the parish portal itself needs lives here and is passed to
// every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookies
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration

	// Identity provider: "local" (bcrypt accounts in Mongo) or "firebase".
	IdentityProvider        string
	FirebaseProjectID       string
	FirebaseCredentialsFile string // blank uses application default credentials
	FirebaseAPIKey          string

	// The account that becomes the master on its first sign-in.
	BootstrapEmail string
	BootstrapName  string

	// Song suggestions
	GeminiAPIKey         string // blank disables suggestions (502 on use)
	GeminiModel          string
	SuggestRatePerMinute int

	// Redis keeps pending confirmations across restarts and instances.
	// Blank address keeps them in process memory.
	RedisAddr     string
	RedisPassword string

	ConfirmTTL        time.Duration
	RecentLoginWindow time.Duration
	FeedPollInterval  time.Duration
	LoginRateLimit    int // attempts per IP per minute

	// Audit logging: "all", "db", "log" or "off".
	AuditLogAuth   string
	AuditLogAdmin  string
	AuditRetention time.Duration // zero keeps events forever
}
