package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"fishintel/internal/config"
	apierrors "fishintel/internal/errors"
	"fishintel/internal/infrastructure"
	customMiddleware "fishintel/internal/middleware"
	"fishintel/internal/services"
	handlers "fishintel/internal/transport/http"
	"fishintel/pkg/contracts"
)

// Application is the read-only dataset server. It never writes to the
// output directory; it only serves what the last successful run published.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset *services.DatasetService
	Health  *services.HealthService
}

// NewApplication wires services, router and server. providers may be nil,
// in which case telemetry is disabled.
func NewApplication(cfg *config.Config, paths *config.Paths, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if cfg == nil || paths == nil {
		return nil, fmt.Errorf("config and paths are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if providers == nil {
		providers = infrastructure.NoopProviders(logger)
	}

	dataset := services.NewDatasetService(paths, logger)
	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Services: &ServiceContainer{
			Dataset: dataset,
			Health:  services.NewHealthService(dataset, logger),
		},
	}

	if err := app.setupRouter(); err != nil {
		return nil, err
	}
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}
	r.Use(otelMiddleware.Handler)

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if rl := a.Config.Server.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r, errorHandler)

	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, errorHandler))

	a.setupDashboard(r)

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(apierrors.RecoveryMiddleware(errorHandler))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		dataHandler := handlers.NewDataHandler(a.Services.Dataset, a.Logger, errorHandler)
		r.Get("/manifest", dataHandler.GetManifest)
		r.With(customMiddleware.Compress(5)).Mount("/data", dataHandler.Routes())
	})
}

// setupDashboard serves the static dashboard when the web directory exists
func (a *Application) setupDashboard(r chi.Router) {
	webDir := a.Paths.WebDir
	if webDir == "" {
		return
	}
	if info, err := os.Stat(webDir); err != nil || !info.IsDir() {
		a.Logger.Info("Dashboard directory not found, serving API only",
			slog.String("web_dir", webDir))
		return
	}

	dashboard := handlers.ServeDashboard(webDir)
	r.With(customMiddleware.Compress(5)).Get("/*", dashboard)
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving on ln in the background. Serve errors other than
// a normal close cancel the application context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc, ln net.Listener) {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("pro_dir", a.Paths.ProDir))

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if _, err := a.Services.Dataset.Manifest(ctx); err != nil {
		a.Logger.WarnContext(ctx, "No dataset available yet", slog.String("error", err.Error()))
	}
}

// Stop shuts the server down gracefully and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Server shutdown complete")
	return nil
}

// Run listens on the configured port and blocks until SIGINT/SIGTERM or a
// serve failure, then shuts down.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.Start(runCtx, cancel, ln)

	<-runCtx.Done()
	return a.Stop(runCtx)
}
