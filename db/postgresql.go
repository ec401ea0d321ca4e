package db

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Supported database/sql driver names.
const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// Open opens a connection pool with the given driver and checks it is reachable.
func Open(ctx context.Context, driver, dataSourceName string, log logrus.FieldLogger) (*sql.DB, error) {
	if driver != DriverPQ && driver != DriverPGX {
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	// Configure database connection pool settings
	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(10)

	log.WithField("driver", driver).Info("database connection initialized")
	return conn, nil
}
