package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"retailsmart/internal/charts"
	"retailsmart/internal/config"
	"retailsmart/internal/dataset"
	apierrors "retailsmart/internal/errors"
	"retailsmart/internal/infrastructure"
	customMiddleware "retailsmart/internal/middleware"
	"retailsmart/internal/services"
	handlers "retailsmart/internal/transport/http"
	"retailsmart/internal/validation"
	"retailsmart/pkg/contracts"
)

const (
	REPO_URL = "https://github.com/retailsmart/retailsmart"
	AppName  = "RetailSmart Analytics Dashboard"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(contracts.Version))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler

	// OpenBrowser opens the dashboard once the server answers health checks
	OpenBrowser bool
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Cache      *dataset.Cache
	Loader     *dataset.Loader
	Dashboard  *services.DashboardService
	Prediction *services.PredictionService
	Reports    *services.ReportService
	Health     *services.HealthService
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newApplication(cfg, logger, infrastructure.DefaultOTelConfig())
}

func newApplication(cfg *config.Config, logger *slog.Logger, otelCfg *infrastructure.OTelConfig) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	layout := cfg.Layout()
	layout.LogPathResolution(logger)

	if err := config.EnsureDir(cfg.Paths.ExportDir); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the data access layer into the services.
// One cache backs every table and artifact so invalidation is global.
func (a *Application) initializeServices() {
	layout := a.Config.Layout()
	cache := dataset.NewCache(a.Metrics)
	loader := dataset.NewLoader(layout, cache, a.Logger)

	prediction := services.NewPredictionService(layout, cache, a.Config.Inference, a.Metrics, a.Logger)
	renderer := charts.NewRenderer(charts.DefaultWidth, charts.DefaultHeight)
	dashboard := services.NewDashboardService(loader, renderer, a.Metrics, prediction, a.Config.Dashboard, a.Logger)
	reports := services.NewReportService(dashboard, a.Config.Paths.ExportDir, a.Metrics, a.Logger)
	health := services.NewHealthService(
		contracts.Version,
		REPO_URL,
		BuildTime,
		BuildID,
		services.HealthDeps{
			Loader:    loader,
			Model:     prediction,
			ExportDir: a.Config.Paths.ExportDir,
		},
		a.Logger,
	)

	a.Services = &ServiceContainer{
		Cache:      cache,
		Loader:     loader,
		Dashboard:  dashboard,
		Prediction: prediction,
		Reports:    reports,
		Health:     health,
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)
	a.setupHTMLRoutes(r)

	// Prometheus scrape endpoint, outside /api so it skips the request timeout
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(a.Services.Dashboard, a.Config.Dashboard, a.Logger, a.ErrorHandler)
		r.Mount("/dashboard", dashboardHandler.Routes())
		r.Get("/charts/{chart}", dashboardHandler.GetChart)
		r.Get("/export/kpis", dashboardHandler.Export)
		r.Get("/export/kpis.csv", dashboardHandler.ExportCSV)
		r.Get("/export/kpis.xlsx", dashboardHandler.ExportXLSX)
		r.Get("/cache/stats", dashboardHandler.GetCacheStats)

		predictionHandler := handlers.NewPredictionHandler(a.Services.Prediction, a.Logger, a.ErrorHandler)
		r.Get("/model", predictionHandler.GetModelInfo)

		reportHandler := handlers.NewReportHandler(a.Services.Reports, a.Logger, a.ErrorHandler)
		r.Get("/reports", reportHandler.ListReports)
		r.Get("/reports/{name}", reportHandler.DownloadReport)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.ContentTypeValidator(a.ErrorHandler, "application/json"))
			r.Use(customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler).ValidateRequest)
			r.Post("/predict", predictionHandler.Predict)
			r.Post("/reports", reportHandler.SaveReport)
			r.Post("/cache/invalidate", dashboardHandler.InvalidateCache)
		})
	})
}

// setupHTMLRoutes configures the server-rendered dashboard page
func (a *Application) setupHTMLRoutes(r chi.Router) {
	page, err := handlers.NewPageHandler(a.Services.Dashboard, charts.Names, a.Logger, a.ErrorHandler)
	if err != nil {
		// The template is embedded, so this only fails on a broken build
		panic(fmt.Sprintf("dashboard template: %v", err))
	}
	r.Get("/", page.ServeDashboard())
}

// getCORSConfig returns CORS configuration for the configured origins
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	if a.isDevelopmentMode() {
		dev := fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port)
		cfg.AllowedOrigins = append(append([]string{}, cfg.AllowedOrigins...), dev)
	}

	a.Logger.Debug("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// isDevelopmentMode detects if we're running in development mode
func (a *Application) isDevelopmentMode() bool {
	return os.Getenv("ENVIRONMENT") == "development" || os.Getenv("GO_ENV") == "development"
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server in the background
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("data_root", a.Config.Paths.DataRoot),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		infrastructure.WithError(a.Logger, err).WarnContext(ctx, "Startup health check warnings")
	}

	url := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	a.Logger.InfoContext(ctx, "Application started successfully", slog.String("address", url))

	if a.OpenBrowser {
		go a.openWhenReady(ctx, url)
	}
	return nil
}

// openWhenReady polls the health endpoint, then opens the browser
func (a *Application) openWhenReady(ctx context.Context, url string) {
	healthURL := url + "/api/health/live"
	const maxRetries = 10

	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resp, err := http.Get(healthURL)
		if resp != nil {
			resp.Body.Close()
		}
		if err == nil && resp.StatusCode == http.StatusOK {
			if err := openBrowser(url); err != nil {
				a.Logger.WarnContext(ctx, "Failed to open browser",
					slog.String("error", err.Error()),
					slog.String("url", url))
				fmt.Printf("\nRetailSmart is running. Open %s in your browser.\n\n", url)
			}
			return
		}
		time.Sleep(500 * time.Millisecond)
	}

	a.Logger.WarnContext(ctx, "Server did not become ready for browser opening",
		slog.String("url", url),
		slog.Int("max_retries", maxRetries))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return infrastructure.CloseLogFile()
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}

// performStartupHealthCheck reports a missing dataset or unwritable export
// directory. Neither stops the server.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string
	validator := validation.NewFileValidator(a.Logger)
	layout := a.Config.Layout()

	if _, err := a.Services.Loader.Bundle(ctx); err != nil {
		warnings = append(warnings, "primary dataset not loadable: "+err.Error())
	}

	if n, err := validator.ValidateInputDirectory(layout.RawDir, "*.csv"); err == nil {
		a.Logger.DebugContext(ctx, "Raw dataset directory found", slog.Int("csv_files", n))
	}

	if err := validator.ValidateOutputDirectory(a.Config.Paths.ExportDir); err != nil {
		warnings = append(warnings, fmt.Sprintf("export directory not writable: %s", a.Config.Paths.ExportDir))
	}

	if !a.Services.Prediction.Available(ctx) {
		a.Logger.InfoContext(ctx, "Churn model not found, prediction form disabled",
			slog.String("path", layout.ModelArtifact))
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}

// openBrowser opens the default browser to the specified URL
func openBrowser(url string) error {
	var lastErr error
	for _, method := range getBrowserOpenMethods(url) {
		cmd := exec.Command(method.cmd, method.args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			slog.Debug("Browser open method failed",
				slog.String("method", method.name),
				slog.String("error", err.Error()))
			continue
		}
		slog.Info("Browser opened", slog.String("method", method.name), slog.String("url", url))
		return nil
	}
	return fmt.Errorf("failed to open browser: %w", lastErr)
}

// browserMethod represents a method to open the browser
type browserMethod struct {
	name string
	cmd  string
	args []string
}

// getBrowserOpenMethods returns platform-specific browser opening methods
func getBrowserOpenMethods(url string) []browserMethod {
	switch runtime.GOOS {
	case "windows":
		return []browserMethod{
			{name: "rundll32", cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
			{name: "start_command", cmd: "cmd", args: []string{"/c", "start", "", url}},
		}
	case "darwin":
		return []browserMethod{
			{name: "open", cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{name: "xdg-open", cmd: "xdg-open", args: []string{url}},
			{name: "sensible-browser", cmd: "sensible-browser", args: []string{url}},
		}
	}
}
