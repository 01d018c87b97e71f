package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codegenhq/codegen/internal/completion"
	"github.com/codegenhq/codegen/internal/config"
	"github.com/codegenhq/codegen/internal/db"
	"github.com/codegenhq/codegen/internal/http/api"
	"github.com/codegenhq/codegen/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds graceful shutdown once the context is cancelled.
const shutdownTimeout = 10 * time.Second

// RunServer opens the database, prepares the schema, seeds the admin
// account, and serves the HTTP API until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.Config, port int) error {
	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	log.WithField("dialect", db.DialectName(conn)).Info("database ready")
	if db.IsSQLite(conn) {
		log.Warn("running on SQLite, intended for local development only")
	}

	st := store.New(conn)
	if errSeed := seedAdmin(ctx, st, cfg.AdminSeed); errSeed != nil {
		return errSeed
	}

	var generator completion.Generator
	if cfg.Completion.Enabled() {
		generator = completion.NewClient(cfg.Completion)
	} else {
		log.Warn("completion API key not set, /generate will answer 501")
	}
	if !cfg.JWT.Enabled() {
		log.Warn("JWT secret not set, auth endpoints will answer 501 and /generate is open")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(api.RequestLogger(), gin.Recovery())
	api.RegisterRoutes(r, api.Deps{
		DB:          conn,
		Store:       st,
		Generator:   generator,
		JWT:         cfg.JWT,
		AdminSeed:   cfg.AdminSeed,
		FrontendDir: cfg.FrontendDir,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", port).Info("server listening")
		if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}

// seedAdmin creates the environment-configured admin account when no user
// with that email exists yet.
func seedAdmin(ctx context.Context, st *store.Store, seed config.AdminSeed) error {
	if !seed.Enabled() {
		return nil
	}
	existing, errFind := st.FindUserByEmail(ctx, seed.Email)
	if errFind != nil {
		return errFind
	}
	if existing != nil {
		return nil
	}
	if _, errCreate := st.CreateUser(ctx, seed.Email, seed.Password, true); errCreate != nil {
		return fmt.Errorf("seed admin: %w", errCreate)
	}
	log.WithField("email", seed.Email).Info("seeded admin account")
	return nil
}
