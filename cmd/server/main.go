// @title        SOS Alert API
// @version      1.0
// @description  JSON endpoints of the SOS alert service. Pages are served as HTML and are not listed.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sosalert/sos-service/internal/api"
	"github.com/sosalert/sos-service/internal/api/handler"
	"github.com/sosalert/sos-service/internal/api/session"
	"github.com/sosalert/sos-service/internal/core/ports"
	"github.com/sosalert/sos-service/internal/core/service"
	"github.com/sosalert/sos-service/internal/infrastructure/config"
	mongostore "github.com/sosalert/sos-service/internal/infrastructure/db/mongo"
	redisstore "github.com/sosalert/sos-service/internal/infrastructure/db/redis"
	"github.com/sosalert/sos-service/internal/infrastructure/db/sqlite"
	"github.com/sosalert/sos-service/internal/infrastructure/sms"
	"github.com/sosalert/sos-service/pkg/logger"
	"github.com/sosalert/sos-service/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "sos-service",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	accounts, checks, closeStore, err := openAccountStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var revoker session.Revoker
	if cfg.Redis.Addr != "" {
		client, store, err := redisstore.Open(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()
		revoker = store
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: store.Ping})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("session revocation enabled")
	}

	sessions, err := session.NewManager(session.Config{
		Secret:       cfg.Session.Secret,
		TTL:          cfg.Session.TTL,
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
	}, revoker, log)
	if err != nil {
		return err
	}

	provider := sms.NewTwilioProvider(sms.Config{
		AccountSID: cfg.Twilio.AccountSID,
		AuthToken:  cfg.Twilio.AuthToken,
		Timeout:    cfg.Twilio.Timeout,
	})

	e, err := api.NewRouter(api.Dependencies{
		Accounts:   service.NewAccountService(accounts, log),
		Alerts:     service.NewAlertService(provider, cfg.Twilio.FromNumber, cfg.Twilio.Timeout, log),
		Sessions:   sessions,
		Health:     checks,
		FlashStore: handler.NewFlashStore([]byte(cfg.Session.Secret), cfg.Session.CookieSecure),
		Templates:  web.Templates,
		Static:     echo.MustSubFS(web.Static, "static"),
		Logger:     log,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openAccountStore opens the backend selected by STORE_DRIVER and returns
// its readiness check and a close func.
func openAccountStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.AccountRepository, []handler.HealthCheck, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, repo, err := mongostore.Open(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return repo, []handler.HealthCheck{{Name: "mongodb", Check: repo.Ping}}, closeFn, nil
	default:
		db, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path, Logger: log})
		if err != nil {
			return nil, nil, nil, err
		}
		repo := sqlite.NewAccountRepository(db)
		closeFn := func() { _ = db.Close() }
		return repo, []handler.HealthCheck{{Name: "sqlite", Check: repo.Ping}}, closeFn, nil
	}
}
