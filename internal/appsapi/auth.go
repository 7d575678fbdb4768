package appsapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwt"

	"graphgate/pkg/store"
)

type authCtxKey struct{}

// resolverAuth is the edge's own context for turning presented API keys into
// tokens. Resolution itself is an application-scoped read.
var resolverAuth = store.Authentication{
	Subject:     "edge:resolver",
	Authorities: []store.Authority{store.AuthorityApplication},
}

var errUnauthenticated = errors.New("unauthenticated")

// withAuth resolves the caller's credential into an Authentication carrying
// its granted authorities and threads it through the request context. The
// domain service receives authority explicitly per call; nothing downstream
// re-reads headers.
func (a *App) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth, err := a.authenticate(r)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), authCtxKey{}, auth)))
	}
}

// AuthFrom extracts the resolved caller context.
func AuthFrom(ctx context.Context) store.Authentication {
	if v := ctx.Value(authCtxKey{}); v != nil {
		return v.(store.Authentication)
	}
	return store.Authentication{}
}

func (a *App) authenticate(r *http.Request) (store.Authentication, error) {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		tok, err := a.svc.ResolveToken(r.Context(), key, resolverAuth)
		if err != nil {
			return store.Authentication{}, err
		}
		return store.Authentication{
			Subject:     "application:" + tok.Application.Key,
			Authorities: []store.Authority{store.AuthorityApplication},
		}, nil
	}

	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return store.Authentication{}, errUnauthenticated
	}
	raw := strings.TrimSpace(authz[len("Bearer "):])

	if a.cfg.AdminAPIKey != "" && raw == a.cfg.AdminAPIKey {
		return store.Authentication{
			Subject:     "admin:key",
			Authorities: []store.Authority{store.AuthoritySystem},
		}, nil
	}
	if a.adminJWKS != nil {
		jt, err := jwt.Parse([]byte(raw),
			jwt.WithKeySet(a.adminJWKS),
			jwt.WithIssuer(a.cfg.AdminIssuer),
			jwt.WithAudience(a.cfg.AdminAudience),
			jwt.WithValidate(true),
		)
		if err != nil {
			return store.Authentication{}, errUnauthenticated
		}
		return store.Authentication{
			Subject:     "admin:" + jt.Subject(),
			Authorities: []store.Authority{store.AuthoritySystem},
		}, nil
	}
	return store.Authentication{}, errUnauthenticated
}
