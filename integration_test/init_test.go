package integration

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/checkmarble/datalab/api"
	"github.com/checkmarble/datalab/infra"
	"github.com/checkmarble/datalab/repositories"
	"github.com/checkmarble/datalab/usecases"
	"github.com/checkmarble/datalab/utils"
)

const (
	testDbLifetime = 120 // seconds
	testUser       = "postgres"
	testPassword   = "pwd"
	testDbName     = "datalab"
	testOwnerId    = "analyst-1"
)

var testServer *httptest.Server

func TestMain(m *testing.M) {
	ctx := context.Background()
	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			fmt.Sprintf("POSTGRES_PASSWORD=%s", testPassword),
			fmt.Sprintf("POSTGRES_USER=%s", testUser),
			fmt.Sprintf("POSTGRES_DB=%s", testDbName),
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	err = resource.Expire(testDbLifetime) // Tell docker to hard kill the container in testDbLifetime seconds
	if err != nil {
		log.Fatalf("Could not set container lifetime: %s", err)
	}

	pool.MaxWait = testDbLifetime * time.Second

	hostAndPort := resource.GetHostPort("5432/tcp") // docker container will bind to another port than 5432 if already taken
	connectionString := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", testUser, testPassword, hostAndPort, testDbName)
	testDbPool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}
	log.Printf("DB connection pool created.")

	if err = pool.Retry(func() error {
		err = testDbPool.Ping(ctx)
		if err != nil {
			log.Printf("Could not ping database: %s", err)
			return err
		}
		return nil
	}); err != nil {
		log.Fatalf("Could not connect to db: %s", err)
	}
	testDbPool.Close()

	pgConfig := infra.PgConfig{ConnectionString: connectionString}
	migrater := repositories.NewMigrater(pgConfig)
	logger := utils.NewLogger("text")
	ctx = utils.StoreLoggerInContext(ctx, logger)

	if err := migrater.Run(ctx); err != nil {
		log.Fatalf("Could not run migrations: %s", err)
	}

	dbPool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(), nil, pgConfig.MaxPoolConnections)
	if err != nil {
		log.Fatalf("Could not create connection pool: %s", err)
	}

	testUsecases := usecases.NewUsecases(repositories.NewRepositories(dbPool),
		usecases.WithAppName("datalab"),
		usecases.WithApiVersion("test"),
		usecases.WithUploads(infra.UploadsConfiguration{BucketUrl: "mem://"}),
		usecases.WithMaxParallelFits(4),
	)

	apiConfig := api.Configuration{
		Env:                 "development",
		Host:                "localhost",
		AppName:             "datalab",
		RequestLoggingLevel: "info",
		DefaultTimeout:      10 * time.Second,
		ProjectionTimeout:   30 * time.Second,
	}
	telemetryRessources, _ := infra.InitTelemetry(infra.TelemetryConfiguration{Enabled: false}, "")
	router := api.InitRouterMiddlewares(ctx, apiConfig, telemetryRessources)
	server := api.NewServer(router, apiConfig, testUsecases)

	testServer = httptest.NewServer(server.Handler)

	logger.InfoContext(ctx, "started server", slog.String("url", testServer.URL))

	// Run tests
	code := m.Run()

	testServer.Close()
	dbPool.Close()

	// You can't defer this because os.Exit doesn't care for defer
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge resource: %s", err)
	}

	os.Exit(code)
}
