package auth

import (
	"context"
	"net/http"

	"github.com/dalemusser/dexterhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated user of a request.
type Actor struct {
	ID    primitive.ObjectID
	Name  string
	Email string
	Role  string
}

// ActorFromUser projects a stored user.
func ActorFromUser(u models.User) Actor {
	return Actor{ID: u.ID, Name: u.FullName, Email: u.Email, Role: u.Role}
}

// IsAdmin reports admin or super-admin.
func (a Actor) IsAdmin() bool { return models.IsAdminRole(a.Role) }

// IsSuperAdmin reports super-admin.
func (a Actor) IsSuperAdmin() bool { return a.Role == models.RoleSuperAdmin }

// HasRole reports whether the actor holds one of roles. RoleAdmin in roles
// also admits super-admins.
func (a Actor) HasRole(roles ...string) bool {
	for _, want := range roles {
		if a.Role == want {
			return true
		}
		if want == models.RoleAdmin && a.Role == models.RoleSuperAdmin {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithActor returns ctx carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ActorFrom returns the actor stored in ctx.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok && !a.ID.IsZero()
}

// CurrentActor returns the request's actor.
func CurrentActor(r *http.Request) (Actor, bool) {
	return ActorFrom(r.Context())
}

// WithRequestActor attaches a to r.
func WithRequestActor(r *http.Request, a Actor) *http.Request {
	return r.WithContext(WithActor(r.Context(), a))
}
