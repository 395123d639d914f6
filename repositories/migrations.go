package repositories

import (
	"context"
	"database/sql"
	"embed"

	"github.com/checkmarble/datalab/infra"
	"github.com/checkmarble/datalab/utils"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// embed migrations sql folder
//
//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsFolder = "migrations"

type Migrater struct {
	pgConfig infra.PgConfig
}

func NewMigrater(pgConfig infra.PgConfig) *Migrater {
	return &Migrater{pgConfig: pgConfig}
}

func (m *Migrater) Run(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	db, err := m.openDb(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.InfoContext(ctx, "Migrations starting to setup DB: "+migrationsFolder)
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "unable to set goose dialect")
	}

	if err := goose.UpContext(ctx, db, migrationsFolder); err != nil {
		return errors.Wrap(err, "unable to run migrations")
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return errors.Wrap(err, "unable to read migrated database version")
	}
	logger.InfoContext(ctx, "Migrations done", "version", version)
	return nil
}

func (m *Migrater) openDb(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", m.pgConfig.GetConnectionString())
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "unable to ping database")
	}
	return db, nil
}
