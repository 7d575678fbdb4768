// Package appsapi is the HTTP edge for application and token administration.
package appsapi

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"go.uber.org/zap"

	"graphgate/internal/apps"
)

// Config holds edge-specific configuration.
type Config struct {
	HTTPAddr      string
	AdminIssuer   string
	AdminAudience string
	AdminJWKSURL  string
	AdminAPIKey   string
}

// App is the edge application container: shared deps and config only,
// request-scoped work goes through context.
type App struct {
	log       *zap.SugaredLogger
	svc       *apps.Service
	cfg       Config
	adminJWKS jwk.Set
}

func New(log *zap.SugaredLogger, svc *apps.Service, cfg Config) *App {
	a := &App{log: log, svc: svc, cfg: cfg}
	if cfg.AdminJWKSURL != "" {
		a.adminJWKS = mustJWKS(cfg.AdminJWKSURL, log)
	}
	return a
}

func mustJWKS(url string, log *zap.SugaredLogger) jwk.Set {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		log.Fatalf("fetch admin jwks: %v", err)
	}
	return set
}
