package auth

import (
	"context"
	"net/http"
	"strings"
)

type principalKey struct{}

// bearerToken takes the token from the Authorization header. Browsers cannot set
// headers on a websocket handshake, so a token query parameter is accepted too.
func bearerToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || scheme != "Bearer" || token == "" {
			return "", false
		}
		return token, true
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t, true
	}
	return "", false
}

// RequireScope rejects requests unless they carry a valid token granting scope.
func (s *Service) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing or malformed bearer token")
				return
			}
			p, err := s.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if !p.Can(scope) {
				writeError(w, http.StatusForbidden, "token lacks the "+scope+" scope")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// OptionalAuth attaches the author when a valid token is present and lets
// anonymous viewers through otherwise.
func (s *Service) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if p, err := s.Verify(token); err == nil {
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// AuthorIDFromContext returns the signed-in author, or "" for anonymous requests.
func AuthorIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.AuthorID
}
