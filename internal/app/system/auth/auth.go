// Package auth issues bearer tokens, loads the signed-in actor, and gates
// routes by role.
//
// A request is authenticated by an "Authorization: Bearer <jwt>" header or,
// for browser clients, by the same token carried in a session cookie. The
// token only names the user; the user record is re-read on every request so
// role and status changes take effect immediately.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/dexterhub/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const tokenKey = "token"

// UserLoader fetches a user by id, returning mongo.ErrNoDocuments when the
// user does not exist.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Config configures a Manager.
type Config struct {
	JWTSecret     string
	Issuer        string
	TokenTTL      time.Duration
	SessionKey    string
	SessionName   string
	SessionDomain string
	Secure        bool
}

// Manager issues and verifies tokens and owns the browser session cookie.
type Manager struct {
	secret      []byte
	issuer      string
	ttl         time.Duration
	cookies     *sessions.CookieStore
	sessionName string
	users       UserLoader
	log         *zap.Logger
	now         func() time.Time
}

// Claims are the JWT claims DexterHub issues. Subject is the user id hex.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// NewManager validates cfg and builds a Manager.
func NewManager(cfg Config, users UserLoader, logger *zap.Logger) (*Manager, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if cfg.SessionKey == "" {
		return nil, errors.New("session key is empty; provide 32+ random chars")
	}
	if len(cfg.SessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(cfg.SessionKey)))
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.SessionName == "" {
		cfg.SessionName = "dexterhub-session"
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.Options = &sessions.Options{
		Domain:   cfg.SessionDomain,
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		secret:      []byte(cfg.JWTSecret),
		issuer:      cfg.Issuer,
		ttl:         cfg.TokenTTL,
		cookies:     store,
		sessionName: cfg.SessionName,
		users:       users,
		log:         logger,
		now:         time.Now,
	}, nil
}

// IssueToken signs a token for u and returns it with its expiry.
func (m *Manager) IssueToken(u models.User) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.Hex(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: u.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// ParseToken verifies signature, issuer and expiry and returns the claims.
func (m *Manager) ParseToken(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	claims := &Claims{}
	parsed, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("subject claim required")
	}
	return claims, nil
}

// SetCookie stores token in the session cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := m.cookies.Get(r, m.sessionName)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.cookies.Get(r, m.sessionName)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (m *Manager) cookieToken(r *http.Request) string {
	sess, err := m.cookies.Get(r, m.sessionName)
	if err != nil {
		return ""
	}
	tok, _ := sess.Values[tokenKey].(string)
	return tok
}

// SetClock replaces the time source. Tests only.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
