package main

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/userfolio/accounts-api/internal/config"
	"github.com/userfolio/accounts-api/internal/handler"
	"github.com/userfolio/accounts-api/internal/logging"
	"github.com/userfolio/accounts-api/internal/middleware"
	"github.com/userfolio/accounts-api/internal/service"
	"github.com/userfolio/accounts-api/internal/store"
	"github.com/userfolio/accounts-api/internal/upload"
)

//go:embed openapi.yaml
var openAPISpec []byte

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("accounts-api", cfg.LogLevel, cfg.AppEnv)

	userStore, readyCheck, cleanup, err := buildStore(cfg)
	if err != nil {
		slog.Error("failed to set up store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	uploader, err := upload.NewMinioUploader(upload.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		slog.Error("failed to set up image host client", "error", err)
		os.Exit(1)
	}
	if err := uploader.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure image bucket", "error", err)
		os.Exit(1)
	}

	users := service.NewUserService(userStore)

	authH := handler.NewAuthHandler(users, cfg.JWTSecret, cfg.JWTExpiry, cfg.AdminEmails)
	adminH := handler.NewAdminHandler(users)
	uploadH := handler.NewUploadHandler(uploader, cfg.UploadFolder, cfg.MaxUploadBytes)
	healthH := handler.NewHealthHandler(readyCheck)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthH.Liveness)
	mux.HandleFunc("GET /health/ready", healthH.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs())
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(openAPISpec))

	mux.HandleFunc("POST /api/upload", uploadH.Upload)
	mux.HandleFunc("POST /api/auth/register", authH.Register)
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.HandleFunc("GET /api/auth/profile", authH.GetProfile)
	mux.HandleFunc("PUT /api/auth/profile", authH.UpdateProfile)

	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.Auth(cfg.JWTSecret)(middleware.Admin(h))
	}
	mux.Handle("GET /api/admin/users", adminOnly(adminH.ListUsers))
	mux.Handle("PUT /api/admin/users/{id}/status", adminOnly(adminH.SetStatus))
	mux.Handle("DELETE /api/admin/users/{id}", adminOnly(adminH.DeleteUser))

	chain := middleware.Tracing(middleware.Logging(middleware.Recovery(middleware.CORS(mux))))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chain,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// buildStore picks the persistence backend: Postgres when DATABASE_URL is
// set, the JSON document store otherwise.
func buildStore(cfg *config.Config) (store.Store, func(ctx context.Context) error, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Info("using json file store", "path", cfg.DBPath)
		return store.NewFileStore(cfg.DBPath), nil, func() {}, nil
	}

	db, err := connectDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.Info("using postgres store")
	return store.NewPostgresStore(db), db.PingContext, func() { db.Close() }, nil
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
