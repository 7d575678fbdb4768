// cmd/apps-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"graphgate/internal/apps"
	"graphgate/internal/appsapi"
	"graphgate/pkg/config"
	"graphgate/pkg/db"
	"graphgate/pkg/events"
	"graphgate/pkg/export"
	"graphgate/pkg/logger"
	"graphgate/pkg/store"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	var gw store.Gateway
	switch {
	case cfg.StoreQueryURL != "":
		gw = store.NewRemoteGateway(cfg.StoreQueryURL, cfg.StoreUpdateURL, log)
		log.Infow("using remote graph store", "query", cfg.StoreQueryURL)
	case cfg.DatabaseURL != "":
		pool := db.MustConnect(cfg, log)
		if err := store.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		gw = store.NewPostgresGateway(pool, log)
	default:
		log.Warnw("no store configured, using in-memory graph")
		mem := store.NewMemoryGateway(log)
		if cfg.StoreSeedFile != "" {
			if err := mem.LoadSeed(cfg.StoreSeedFile); err != nil {
				log.Warnw("seed", "err", err)
			}
		}
		gw = mem
	}

	var emitter events.Emitter = events.NopEmitter{}
	if rdb := db.MustRedis(cfg, log); rdb != nil {
		emitter = events.NewRedisEmitter(rdb, cfg.EventsChannel, log)
	} else {
		bus := events.NewBus(64, log)
		bus.Subscribe(func(ev events.Event) { log.Infow("event", "kind", ev.Kind()) })
		defer bus.Close()
		emitter = bus
	}

	sink := export.NewS3Sink(cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, log)
	svc := apps.NewService(gw, emitter, sink, log)

	app := appsapi.New(log, svc, appsapi.Config{
		HTTPAddr:      cfg.HTTPAddr,
		AdminIssuer:   cfg.AdminIssuer,
		AdminAudience: cfg.AdminAudience,
		AdminJWKSURL:  cfg.AdminJWKSURL,
		AdminAPIKey:   cfg.AdminAPIKey,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: app.Handler()}
	go func() {
		log.Infow("apps-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("apps-service stopped")
}
