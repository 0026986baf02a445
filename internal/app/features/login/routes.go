// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes mounts POST / for signing in (typically at "/auth/login").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleLogin)
	return r
}

// RegisterRoutes mounts POST / for self-registration (typically at
// "/auth/register").
func RegisterRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleRegister)
	return r
}
