package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"btcoracle/internal/config"
	"btcoracle/internal/dataprocessing"
	apierrors "btcoracle/internal/errors"
	"btcoracle/internal/infrastructure"
	custommw "btcoracle/internal/middleware"
	"btcoracle/internal/predictions"
	"btcoracle/internal/services"
	httptransport "btcoracle/internal/transport/http"
)

// Application holds all application dependencies and manages their lifecycle.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Router  chi.Router
	Server  *http.Server
	Metrics *infrastructure.Metrics

	Store             predictions.Store
	PredictionService *services.PredictionService

	errorHandler *apierrors.ErrorHandler
}

// New creates an application with config loaded from the environment.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates an application from the given config.
func NewWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	logger.Info("application initialized",
		slog.Int("port", cfg.Server.Port),
		slog.String("database", cfg.Paths.DatabaseFile))

	return app, nil
}

// initializeServices wires the store, pipeline and prediction service.
// A store that fails to open degrades to no-op persistence rather than
// blocking startup: the pipeline itself has no storage dependency.
func (app *Application) initializeServices() error {
	store, err := predictions.NewSQLiteStore(app.Config.Paths.DatabaseFile, app.Logger)
	if err != nil {
		app.Logger.Error("failed to open prediction store, persistence disabled",
			slog.String("path", app.Config.Paths.DatabaseFile),
			slog.String("error", err.Error()))
		app.Store = predictions.NoopStore{}
	} else {
		app.Store = store
	}

	pipeline := dataprocessing.NewPipeline(dataprocessing.NewDeriver(nil), app.Logger)
	app.PredictionService = services.NewPredictionService(pipeline, app.Store, app.Metrics, app.Logger)
	app.errorHandler = apierrors.NewErrorHandler(app.Logger, false)

	return nil
}

// setupRouter configures the chi router with middleware and routes.
func (app *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(app.Logger))
	r.Use(custommw.Recoverer(app.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	r.Use(app.Metrics.Handler)

	if app.Config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins:   app.Config.Security.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
			Logger:           app.Logger,
		}))
	}

	var rateLimiter *custommw.RateLimiter
	if app.Config.Security.RateLimit.Enabled {
		rateLimiter = custommw.NewRateLimiter(
			app.Config.Security.RateLimit.RPS,
			app.Config.Security.RateLimit.Burst,
			app.Logger,
		)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(60*time.Second, app.Logger))
		if rateLimiter != nil {
			r.Use(rateLimiter.Handler)
		}

		healthHandler := httptransport.NewHealthHandler(app.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.VersionInfo)

		predictionHandler := httptransport.NewPredictionHandler(
			app.PredictionService,
			app.Logger,
			app.errorHandler,
			app.Config.Upload.MaxBytes,
		)
		r.Mount("/predictions", predictionHandler.Routes())
	})

	// Prometheus endpoint stays outside the API middleware group so
	// scrapes are never rate limited or counted against themselves.
	r.Handle("/metrics", infrastructure.MetricsHTTPHandler())

	app.mountStatic(r)

	r.NotFound(app.errorHandler.NotFound)
	r.MethodNotAllowed(app.errorHandler.MethodNotAllowed)

	app.Router = r
}

// mountStatic serves the dashboard frontend when a built web directory
// is present. API-only deployments simply skip this.
func (app *Application) mountStatic(r chi.Router) {
	webDir := app.Config.Paths.WebDir
	info, err := os.Stat(webDir)
	if err != nil || !info.IsDir() {
		app.Logger.Info("no web directory found, serving API only",
			slog.String("web_dir", webDir))
		return
	}

	fs := http.FileServer(http.Dir(webDir))
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		path := filepath.Join(webDir, filepath.Clean(req.URL.Path))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			// SPA fallback: unknown paths get the index page.
			http.ServeFile(w, req, filepath.Join(webDir, "index.html"))
			return
		}
		fs.ServeHTTP(w, req)
	})
}

// createServer creates the HTTP server with the configured timeouts.
func (app *Application) createServer() {
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", app.Config.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}
}

// Run starts the server and blocks until shutdown completes.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("starting HTTP server", slog.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		app.Logger.Info("shutdown signal received")
	}

	return app.Shutdown()
}

// Shutdown gracefully stops the server and closes resources.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		return err
	}

	if err := app.Store.Close(); err != nil {
		app.Logger.Error("failed to close prediction store", slog.String("error", err.Error()))
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}

	app.Logger.Info("application stopped")
	return nil
}
