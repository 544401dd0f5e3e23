package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/abdusco/linkbox/internal/auth"
	"github.com/abdusco/linkbox/internal/config"
	"github.com/abdusco/linkbox/internal/db"
	"github.com/abdusco/linkbox/internal/handler"
	"github.com/abdusco/linkbox/internal/logger"
	"github.com/abdusco/linkbox/internal/repo"
	"github.com/abdusco/linkbox/internal/service"
	"github.com/abdusco/linkbox/internal/supabase"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse configuration from environment")
	}

	if err := logger.Setup(cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("failed to set up logging")
	}

	log.Info().
		Str("backend", cfg.Backend).
		Str("addr", cfg.Addr()).
		Strs("cors_origins", cfg.CORSOrigins).
		Msg("current configuration")

	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log.Info().
		Str("version", version).
		Str("build_time", buildTime).
		Msg("starting application")

	b, err := newBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s backend: %w", cfg.Backend, err)
	}
	defer b.close()

	e := newServer(cfg, b)
	defer e.Close()

	log.Info().Str("address", cfg.Addr()).Msg("server starting")

	runServer(ctx, e, cfg.Addr())
	return nil
}

// backend bundles the identity provider and link store the API talks to.
type backend struct {
	identity service.IdentityProvider
	links    service.LinkStore
	close    func()
}

func newBackend(ctx context.Context, cfg config.Config) (backend, error) {
	switch cfg.Backend {
	case config.BackendSupabase:
		client, err := supabase.Init(supabase.Config{
			URL:     cfg.SupabaseURL,
			APIKey:  cfg.SupabaseKey,
			Timeout: cfg.SupabaseTimeout,
		})
		if err != nil {
			return backend{}, err
		}
		return backend{identity: client.Auth(), links: client.Links(), close: func() {}}, nil

	case config.BackendLocal:
		dbInstance, err := db.Init(ctx, cfg.DBPath)
		if err != nil {
			return backend{}, err
		}
		identity := auth.NewLocalIdentity(repo.NewUsersRepo(dbInstance), cfg.JWTSecret, cfg.TokenTTL)
		return backend{
			identity: identity,
			links:    repo.NewLinksRepo(dbInstance),
			close:    func() { dbInstance.Close() },
		}, nil
	}

	return backend{}, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func newServer(cfg config.Config, b backend) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler
	e.Validator = handler.NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(corsConfig(cfg.CORSOrigins)))

	authMiddleware := auth.NewAuthMiddleware(b.identity)

	authHandler := handler.NewAuthHandler(service.NewAuthService(b.identity))
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/me", authHandler.Me, authMiddleware)

	api := e.Group("/api", authMiddleware)

	linkHandler := handler.NewLinkHandler(service.NewLinkService(b.links))
	api.POST("/links", linkHandler.CreateLink)
	api.GET("/links", linkHandler.ListLinks)

	metaHandler := handler.NewMetaHandler(cfg.AppTitle, cfg.AppDescription, cfg.AppVersion)
	e.GET("/healthz", metaHandler.Health)
	e.GET("/version", metaHandler.Version)

	return e
}

func corsConfig(origins []string) middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: true,
		// With "*" the request origin is echoed back.
		UnsafeWildcardOriginWithAllowCredentials: slices.Contains(origins, "*"),
	}
}

func runServer(ctx context.Context, e *echo.Echo, addr string) {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(addr)
	}()

	// Wait for context cancellation (Ctrl+C or SIGTERM)
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during graceful shutdown")
	}

	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
	}

	log.Info().Msg("server stopped")
}

type errorResponse struct {
	Detail any `json:"detail"`
}

func customErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var detail any = "Internal server error"

	var validationErr *handler.ValidationError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &validationErr):
		code = http.StatusUnprocessableEntity
		detail = validationErr.Fields
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			detail = msg
		} else {
			detail = http.StatusText(code)
		}
	}

	event := log.Warn()
	if code >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Int("code", code).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Err(err).
		Msg("http error")

	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}
	c.JSON(code, errorResponse{Detail: detail})
}
