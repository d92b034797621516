package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bozoruz/internal/domain"
)

// Dialect selects the SQL flavour of a session table
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type sqlSessionRepository struct {
	db        *sql.DB
	loadQuery string
	saveQuery string
	nowFunc   func() time.Time
}

// NewSQLSessionRepository creates a session store on the sessions table
// created by the migrations
func NewSQLSessionRepository(db *sql.DB, dialect Dialect) (SessionRepository, error) {
	r := &sqlSessionRepository{db: db, nowFunc: time.Now}

	switch dialect {
	case DialectPostgres:
		r.loadQuery = `SELECT payload FROM sessions WHERE session_key = $1`
		r.saveQuery = `
			INSERT INTO sessions (session_key, payload, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (session_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
		`
	case DialectSQLite:
		r.loadQuery = `SELECT payload FROM sessions WHERE session_key = ?`
		r.saveQuery = `
			INSERT INTO sessions (session_key, payload, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT (session_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
		`
	default:
		return nil, fmt.Errorf("unsupported session dialect %q", dialect)
	}

	return r, nil
}

// Load retrieves the session stored under key using parameterized queries
func (r *sqlSessionRepository) Load(ctx context.Context, key string) (*domain.Session, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, r.loadQuery, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeSession([]byte(payload))
}

// Save upserts the session stored under key
func (r *sqlSessionRepository) Save(ctx context.Context, key string, session *domain.Session) error {
	data, err := encodeSession(session)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, r.saveQuery, key, string(data), r.nowFunc().UTC()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
