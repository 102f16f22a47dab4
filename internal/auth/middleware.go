package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"roombooking/internal/entities"
	apperrors "roombooking/internal/errors"
)

type contextKey struct{}

// RoleSource resolves the role a user holds right now.
type RoleSource interface {
	CurrentRole(ctx context.Context, userID string) (string, error)
}

// Authenticator validates bearer tokens and gates routes by role.
type Authenticator struct {
	secret []byte
	roles  RoleSource
}

// NewAuthenticator trusts the role claim of the token when roles is nil.
// Otherwise the role is reloaded on every request, so a role change takes
// effect before old tokens expire.
func NewAuthenticator(secret string, roles RoleSource) *Authenticator {
	return &Authenticator{secret: []byte(secret), roles: roles}
}

// Middleware rejects requests without a valid token. Browsers cannot set
// headers on WebSocket upgrades, so the access_token query parameter is
// accepted as well.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			unauthorized(w, "missing bearer token")
			return
		}
		actor, err := ParseToken(a.secret, raw)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}
		if a.roles != nil {
			role, err := a.roles.CurrentRole(r.Context(), actor.UserID)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				unauthorized(w, "unknown user")
				return
			case err != nil:
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			actor.Role = role
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireRole must run after Middleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			if !actor.HasRole(roles...) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithActor(ctx context.Context, actor entities.Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

func ActorFrom(ctx context.Context) (entities.Actor, bool) {
	actor, ok := ctx.Value(contextKey{}).(entities.Actor)
	return actor, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("access_token")
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="roombooking"`)
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
