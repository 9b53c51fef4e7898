package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Postgres stores JSON encoded values in a JSONB column of one table.
type Postgres[T any] struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
	now    func() time.Time
}

// OpenPostgres opens and pings a database through lib/pq.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgres binds a store to table. A nil logger falls back to
// slog.Default.
func NewPostgres[T any](db *sql.DB, table string, logger *slog.Logger) *Postgres[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres[T]{db: db, table: pq.QuoteIdentifier(table), logger: logger, now: time.Now}
}

// WithClock replaces the clock used for timestamps.
func (p *Postgres[T]) WithClock(now func() time.Time) *Postgres[T] {
	p.now = now
	return p
}

// Migrate creates the table when it does not exist.
func (p *Postgres[T]) Migrate(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`, p.table)
	if _, err := p.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("migrate %s: %w", p.table, err)
	}
	return nil
}

func (p *Postgres[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	var payload []byte
	err := p.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT payload FROM %s WHERE id = $1`, p.table), id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("get %s: %w", id, err)
	}
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return zero, fmt.Errorf("decode %s: %w", id, err)
	}
	return v, nil
}

func (p *Postgres[T]) Set(ctx context.Context, id string, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	now := p.now().UTC()
	q := fmt.Sprintf(`INSERT INTO %s (id, payload, created_at, updated_at) VALUES ($1, $2, $3, $3)
ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`, p.table)
	if _, err := p.db.ExecContext(ctx, q, id, payload, now); err != nil {
		return fmt.Errorf("set %s: %w", id, err)
	}
	return nil
}

func (p *Postgres[T]) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, p.table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres[T]) List(ctx context.Context) ([]Entry[T], error) {
	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, payload, created_at, updated_at FROM %s ORDER BY created_at, id`, p.table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p.table, err)
	}
	defer rows.Close()

	var out []Entry[T]
	for rows.Next() {
		var (
			e       Entry[T]
			payload []byte
		)
		if err := rows.Scan(&e.ID, &payload, &e.Created, &e.Updated); err != nil {
			return nil, fmt.Errorf("scan %s: %w", p.table, err)
		}
		if err := json.Unmarshal(payload, &e.Value); err != nil {
			p.logger.Warn("skipping undecodable row", "table", p.table, "id", e.ID, "error", err)
			continue
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", p.table, err)
	}
	return out, nil
}

func (p *Postgres[T]) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := p.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, p.table), cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep %s: %w", p.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep %s: %w", p.table, err)
	}
	return int(n), nil
}
