package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/dexterhub/internal/app/system/respond"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// LoadActor resolves the request's actor from the bearer header or the
// session cookie. A malformed or invalid bearer header is rejected with 401;
// a stale cookie is ignored. Disabled or deleted users are treated as
// anonymous.
func (m *Manager) LoadActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		fromHeader := false
		if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
			tok, ok := bearerToken(h)
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "invalid credentials", nil)
				return
			}
			token, fromHeader = tok, true
		} else {
			token = m.cookieToken(r)
		}
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.ParseToken(token)
		if err != nil {
			if fromHeader {
				respond.Error(w, http.StatusUnauthorized, "invalid credentials", nil)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		uid, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		u, err := m.users.GetByID(r.Context(), uid)
		if errors.Is(err, mongo.ErrNoDocuments) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			m.log.Error("load actor failed", zap.Error(err), zap.String("user_id", claims.Subject))
			respond.Error(w, http.StatusInternalServerError, "internal error", nil)
			return
		}
		if !u.IsActive() {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, WithRequestActor(r, ActorFromUser(*u)))
	})
}

// RequireSignedIn rejects anonymous requests with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentActor(r); !ok {
			respond.Error(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and actors outside roles
// with 403. "admin" admits super-admins.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := CurrentActor(r)
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "authentication required", nil)
				return
			}
			if !a.HasRole(roles...) {
				respond.Error(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
