// Command catalogd runs the library catalog API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	app "github.com/openshelf/catalog/internal/app"
	"github.com/openshelf/catalog/internal/app/auth"
	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/app/httpapi"
	"github.com/openshelf/catalog/internal/app/services/accounts"
	"github.com/openshelf/catalog/internal/app/storage/postgres"
	"github.com/openshelf/catalog/internal/config"
	"github.com/openshelf/catalog/internal/errors"
	"github.com/openshelf/catalog/internal/logging"
	"github.com/openshelf/catalog/internal/metrics"
	"github.com/openshelf/catalog/internal/middleware"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to YAML configuration")
		envFile    = flag.String("env", ".env", "path to optional .env file")
	)
	flag.Parse()

	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load(*envFile)

	log := logging.New("catalogd")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("load configuration")
		os.Exit(1)
	}

	stores := app.Stores{}
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Error("open database")
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.WithError(err).Error("ping database")
			os.Exit(1)
		}
		pg := postgres.New(db)
		stores = app.Stores{
			Authors:    pg,
			Books:      pg,
			Libraries:  pg,
			Librarians: pg,
			Accounts:   pg,
			Messages:   pg,
		}
		log.Info("using postgres storage")
	} else {
		log.Warn("DATABASE_URL not set; using in-memory storage")
	}

	application, err := app.New(stores, log)
	if err != nil {
		log.WithError(err).Error("initialise application")
		os.Exit(1)
	}

	if err := seedAdmin(context.Background(), application.Accounts, cfg.Admin); err != nil {
		log.WithError(err).Error("seed admin account")
		os.Exit(1)
	}

	signer := auth.NewSigner([]byte(cfg.JWTSecret), cfg.TokenTTL.Std())

	router, err := httpapi.NewHandler(application, httpapi.Config{
		Signer:       signer,
		AuditLogPath: cfg.AuditLogPath,
	}, log)
	if err != nil {
		log.WithError(err).Error("initialise http api")
		os.Exit(1)
	}

	m := metrics.New("catalogd")
	router.Handle("/metrics", m.Handler()).Methods("GET")
	router.Use(middleware.MetricsMiddleware(m))

	authMW := middleware.NewAuthMiddleware(signer, application.Accounts, log)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	limiter.StartCleanup(10 * time.Minute)
	cors := middleware.NewCORSMiddleware(cfg.AllowedOrigins)

	// The limiter keys on the account id the auth middleware resolves, so
	// auth must wrap it.
	var handler http.Handler = router
	handler = limiter.Handler(handler)
	handler = authMW.Handler(handler)
	handler = middleware.LoggingMiddleware(log)(handler)
	handler = cors.Handler(handler)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr).Info("listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}

	log.Info("stopped")
}

// seedAdmin creates the initial administrator account when configured and
// not already present.
func seedAdmin(ctx context.Context, svc *accounts.Service, admin config.AdminCfg) error {
	if admin.Username == "" || admin.Email == "" || admin.Password == "" {
		return nil
	}
	if _, err := svc.Authenticate(ctx, admin.Username, admin.Password); err == nil {
		return nil
	}

	seedCtx := auth.WithPrincipal(ctx, auth.Principal{
		Username:      "system",
		Role:          account.RoleAdmin,
		Authenticated: true,
	})
	_, err := svc.Create(seedCtx, accounts.CreateInput{
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
		Role:     account.RoleAdmin,
	})
	// An existing admin with a rotated password surfaces as a duplicate;
	// that is not a startup failure.
	if err != nil && !errors.Is(err, errors.CodeValidationFailed) {
		return err
	}
	return nil
}
