package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"time"

	"bozoruz/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured database and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	driverName, dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// sqlite allows one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func dataSource(cfg config.DatabaseConfig) (driverName, dsn string, err error) {
	switch cfg.Driver {
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   net.JoinHostPort(cfg.Host, cfg.Port),
			Path:   "/" + cfg.Database,
		}
		q := u.Query()
		q.Set("sslmode", cfg.SSLMode)
		if cfg.Schema != "" {
			q.Set("search_path", cfg.Schema)
		}
		u.RawQuery = q.Encode()
		return "pgx", u.String(), nil
	case DriverSQLite:
		return "sqlite", cfg.SQLitePath, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Health reports connection pool statistics, or the ping error
func Health(ctx context.Context, db *sql.DB) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	s := db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprintf("%d", s.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", s.InUse)
	stats["idle"] = fmt.Sprintf("%d", s.Idle)
	return stats
}
