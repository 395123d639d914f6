package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/checkmarble/datalab/api"
	"github.com/checkmarble/datalab/infra"
	"github.com/checkmarble/datalab/repositories"
	"github.com/checkmarble/datalab/usecases"
	"github.com/checkmarble/datalab/utils"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
)

func RunServer(config CompiledConfig) error {
	// This is where we read the environment variables and set up the configuration for the application.
	apiConfig := api.Configuration{
		Env:                 utils.GetEnv("ENV", "development"),
		AppName:             "datalab",
		AppVersion:          config.Version,
		Host:                utils.GetEnv("HOST", ""),
		Port:                utils.GetRequiredEnv[string]("PORT"),
		RequestLoggingLevel: utils.GetEnv("REQUEST_LOGGING_LEVEL", "info"),
		AllowedOrigins:      splitList(utils.GetEnv("ALLOWED_ORIGINS", "")),
		DefaultTimeout:      time.Duration(utils.GetEnv("DEFAULT_TIMEOUT_SECOND", 30)) * time.Second,
		ProjectionTimeout:   time.Duration(utils.GetEnv("PROJECTION_TIMEOUT_SECOND", 120)) * time.Second,
		MaxUploadBytes:      int64(utils.GetEnv("MAX_UPLOAD_MB", 32)) * 1024 * 1024,
	}
	pgConfig := pgConfigFromEnv()
	uploadsConfig := infra.UploadsConfiguration{
		BucketUrl:      utils.GetEnv("UPLOADS_BUCKET_URL", "file://./uploads?create_dir=true"),
		CsvReader:      utils.GetEnv("CSV_READER", usecases.CsvReaderBlob),
		LocalDirectory: utils.GetEnv("CSV_LOCAL_DIRECTORY", "./uploads"),
		MaxUploadBytes: apiConfig.MaxUploadBytes,
		CacheSize:      utils.GetEnv("CSV_CACHE_SIZE", 16),
		CacheTtl:       utils.GetEnv("CSV_CACHE_TTL", 5*time.Minute),
	}
	serverConfig := ServerConfig{
		loggingFormat:     utils.GetEnv("LOGGING_FORMAT", "text"),
		sentryDsn:         utils.GetEnv("SENTRY_DSN", ""),
		enableTracing:     utils.GetEnv("ENABLE_TRACING", false),
		telemetryExporter: utils.GetEnv("TRACING_EXPORTER", "otlp"),
		gcpProjectId:      utils.GetEnv("GOOGLE_CLOUD_PROJECT", ""),
		otelSamplingRates: utils.GetEnv("TRACING_SAMPLING_RATES", ""),
		maxParallelFits:   utils.GetEnv("PROJECTION_MAX_PARALLEL_FITS", 8),
	}

	logger := utils.NewLogger(serverConfig.loggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	if err := serverConfig.Validate(); err != nil {
		logger.ErrorContext(ctx, "invalid server configuration", "error", err.Error())
		return err
	}

	infra.SetupSentry(serverConfig.sentryDsn, apiConfig.Env, config.Version)
	defer sentry.Flush(3 * time.Second)

	samplingMap, err := infra.ParseSamplingMap(serverConfig.otelSamplingRates)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	tracingConfig := infra.TelemetryConfiguration{
		ApplicationName: apiConfig.AppName,
		Enabled:         serverConfig.enableTracing,
		ProjectID:       serverConfig.gcpProjectId,
		Exporter:        serverConfig.telemetryExporter,
		SamplingMap:     samplingMap,
	}
	telemetryRessources, err := infra.InitTelemetry(tracingConfig, config.Version)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
	}

	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		telemetryRessources.TracerProvider, pgConfig.MaxPoolConnections)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	defer pool.Close()
	if err := infra.WaitForDatabase(ctx, pool, uint(utils.GetEnv("PG_CONNECT_ATTEMPTS", 10))); err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	repositories := repositories.NewRepositories(pool)

	uc := usecases.NewUsecases(repositories,
		usecases.WithAppName(apiConfig.AppName),
		usecases.WithApiVersion(config.Version),
		usecases.WithUploads(uploadsConfig),
		usecases.WithMaxParallelFits(serverConfig.maxParallelFits),
	)

	router := api.InitRouterMiddlewares(ctx, apiConfig, telemetryRessources)
	utils.SetupProfilerEndpoints(ctx, router, utils.ProfilingConfig{
		Mode:         utils.GetEnv("DEBUG_PROFILING_MODE", ""),
		Token:        utils.GetEnv("DEBUG_PROFILING_TOKEN", ""),
		ServiceName:  apiConfig.AppName,
		Version:      config.Version,
		GcpProjectId: serverConfig.gcpProjectId,
	})
	server := api.NewServer(router, apiConfig, uc)

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.InfoContext(ctx, "starting server", slog.String("port", apiConfig.Port))
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			utils.LogAndReportSentryError(ctx, errors.Wrap(err, "Error while serving the app"))
		}
		logger.InfoContext(ctx, "server returned")
	}()

	<-notify.Done()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogAndReportSentryError(
			ctx,
			errors.Wrap(err, "Error while shutting down the server"),
		)
		return err
	}

	return nil
}

func splitList(s string) []string {
	items := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
