// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minProdSecret is the shortest JWT secret accepted in prod.
const minProdSecret = 32

// appConfigKeys defines the configuration keys for DexterHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: DEXTERHUB_MONGO_URI, DEXTERHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "dexterhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "jwt_secret", Default: "dev-only-jwt-secret-change-me-0123456789", Desc: "HS256 token signing secret (32+ chars in prod)"},
	{Name: "jwt_issuer", Default: "dexterhub", Desc: "Token issuer claim"},
	{Name: "token_ttl", Default: "24h", Desc: "Token lifetime (e.g., 24h, 90m)"},

	{Name: "session_key", Default: "", Desc: "Cookie signing key; generated per process outside prod when blank"},
	{Name: "session_name", Default: "dexterhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "audit_log_mirror", Default: auditlog.MirrorAll, Desc: "Audit logging: 'all' (db+log) or 'db'"},

	{Name: "login_rate_limit", Default: 5, Desc: "Login attempts per email per window"},
	{Name: "login_rate_limit_ip", Default: 20, Desc: "Login attempts per client IP per window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Login rate limit window"},

	{Name: "timeout_ping", Default: "", Desc: "Health check deadline (blank keeps default)"},
	{Name: "timeout_short", Default: "", Desc: "Single-read deadline (blank keeps default)"},
	{Name: "timeout_medium", Default: "", Desc: "List and single-write deadline (blank keeps default)"},
	{Name: "timeout_long", Default: "", Desc: "Review and multi-collection write deadline (blank keeps default)"},

	{Name: "superadmin_email", Default: "", Desc: "Email of the super-admin (promotes/creates on startup)"},
	{Name: "superadmin_password", Default: "", Desc: "Initial super-admin password, used only on creation"},
}

// LoadConfig loads WAFFLE core config and DexterHub's app config.
//
// Precedence is flags > env > files > defaults. Outside prod a blank
// session key is replaced with a random one, so cookies do not survive a
// restart.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, v, err := config.LoadWithAppConfig(logger, "DEXTERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         v.String("mongo_uri"),
		MongoDatabase:    v.String("mongo_database"),
		MongoMaxPoolSize: uint64(v.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(v.Int("mongo_min_pool_size")),

		JWTSecret: v.String("jwt_secret"),
		JWTIssuer: v.String("jwt_issuer"),
		TokenTTL:  v.Duration("token_ttl", 24*time.Hour),

		SessionKey:    v.String("session_key"),
		SessionName:   v.String("session_name"),
		SessionDomain: v.String("session_domain"),

		AuditLogMirror: strings.ToLower(strings.TrimSpace(v.String("audit_log_mirror"))),

		LoginRateLimit:   v.Int("login_rate_limit"),
		LoginRateLimitIP: v.Int("login_rate_limit_ip"),
		LoginRateWindow:  v.Duration("login_rate_window", time.Minute),

		TimeoutPing:   v.Duration("timeout_ping", 0),
		TimeoutShort:  v.Duration("timeout_short", 0),
		TimeoutMedium: v.Duration("timeout_medium", 0),
		TimeoutLong:   v.Duration("timeout_long", 0),

		SuperAdminEmail:    v.String("superadmin_email"),
		SuperAdminPassword: v.String("superadmin_password"),
	}

	if appCfg.SessionKey == "" && coreCfg.Env != "prod" {
		appCfg.SessionKey = auth.GenerateDevKey()
		logger.Warn("session_key not set; generated a per-process dev key")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configs that would fail later or run insecurely.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.JWTSecret) == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if coreCfg.Env == "prod" {
		if len(appCfg.JWTSecret) < minProdSecret {
			return fmt.Errorf("jwt_secret must be at least %d characters in prod", minProdSecret)
		}
		if appCfg.SessionKey == "" {
			return fmt.Errorf("session_key is required in prod")
		}
	}
	switch appCfg.AuditLogMirror {
	case auditlog.MirrorAll, auditlog.MirrorDB:
	default:
		return fmt.Errorf("audit_log_mirror must be %q or %q, got %q", auditlog.MirrorAll, auditlog.MirrorDB, appCfg.AuditLogMirror)
	}
	if appCfg.LoginRateLimit <= 0 || appCfg.LoginRateLimitIP <= 0 || appCfg.LoginRateWindow <= 0 {
		return fmt.Errorf("login rate limits and window must be positive")
	}
	if appCfg.SuperAdminPassword != "" && len(appCfg.SuperAdminPassword) < 8 {
		return fmt.Errorf("superadmin_password must be at least 8 characters")
	}
	return nil
}
