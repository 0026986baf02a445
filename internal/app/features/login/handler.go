// internal/app/features/login/handler.go
package login

import (
	"net/http"
	"sync"
	"time"

	uierrors "github.com/dalemusser/dexterhub/internal/app/features/errors"
	userstore "github.com/dalemusser/dexterhub/internal/app/store/users"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/ratelimit"
	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler signs users in and registers new learners.
type Handler struct {
	Users   *userstore.Store
	Auth    *auth.Manager
	Limiter *ratelimit.LoginLimiter
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

// NewHandler constructs a login Handler. limiter may be nil to disable
// attempt limiting.
func NewHandler(db *mongo.Database, mgr *auth.Manager, limiter *ratelimit.LoginLimiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   userstore.New(db),
		Auth:    mgr,
		Limiter: limiter,
		Log:     logger,
		ErrLog:  errLog,
	}
}

// tokenResponse is returned by login and registration.
type tokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// signIn issues a token for u, stores it in the session cookie and writes
// the response with status.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u models.User, status int) {
	token, exp, err := h.Auth.IssueToken(u)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "issue token failed", err, "Could not sign you in.")
		return
	}
	if err := h.Auth.SetCookie(w, r, token); err != nil {
		// The bearer token still works without the cookie.
		h.Log.Warn("save session cookie failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}
	respond.JSON(w, status, tokenResponse{Token: token, ExpiresAt: exp, User: u})
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// burnCompare runs one bcrypt comparison so unknown emails take as long as
// wrong passwords.
func burnCompare(plain string) {
	dummyOnce.Do(func() {
		dummyHash, _ = auth.HashPassword("dexterhub-unknown-user")
	})
	auth.CheckPassword(dummyHash, plain)
}
