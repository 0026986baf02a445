// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds DexterHub's app-level configuration, loaded in LoadConfig
// from env vars (DEXTERHUB_*), config files, or flags. WAFFLE's CoreConfig
// covers the framework side: ports, TLS, logging, CORS and body limits.
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string // HS256 signing secret; at least 32 chars in prod
	JWTIssuer string
	TokenTTL  time.Duration

	// Browser cookie carrying the token
	SessionKey    string // generated per process outside prod when blank
	SessionName   string
	SessionDomain string // blank means current host

	// Audit mirroring: "all" (db + zap) or "db"
	AuditLogMirror string

	// Login throttling
	LoginRateLimit   int // attempts per email per window
	LoginRateLimitIP int // attempts per client IP per window
	LoginRateWindow  time.Duration

	// Handler deadlines; zero keeps the defaults in system/timeouts
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// Super-admin bootstrap
	SuperAdminEmail    string // promoted or created on startup when set
	SuperAdminPassword string // used only when the account is created
}
